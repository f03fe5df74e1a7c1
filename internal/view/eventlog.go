package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Tilefire/internal/sim"
)

const (
	logPanelWidth = 300
	logMaxEntries = 60
	logLineHeight = 11
)

// LogEntry is a single line in the event log.
type LogEntry struct {
	Tick    int
	Label   string // "P", "E3"
	Actor   sim.ActorKind
	Message string
}

// EventLog is a ring buffer of recent events rendered beside the arena.
type EventLog struct {
	entries []LogEntry
	head    int
	count   int
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{entries: make([]LogEntry, logMaxEntries)}
}

// Add appends an entry, overwriting the oldest when full.
func (el *EventLog) Add(tick int, label string, actor sim.ActorKind, msg string) {
	el.entries[el.head] = LogEntry{Tick: tick, Label: label, Actor: actor, Message: msg}
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// Record adds the events worth showing. Gunfire and bounces are left out.
func (el *EventLog) Record(tick int, events []sim.Event, reg *sim.Registry) {
	for _, ev := range events {
		msg := ev.Kind.String()
		switch ev.Kind {
		case sim.EventShot, sim.EventClick, sim.EventWallImpact, sim.EventGrenadeBounce:
			continue
		case sim.EventReload, sim.EventPickup, sim.EventDrop, sim.EventHit:
			if ev.Weapon != sim.NoWeapon && int(ev.Weapon) < reg.Len() {
				msg += " " + reg.Get(ev.Weapon).Name
			}
		}
		el.Add(tick, ev.Actor.Label(), ev.Actor.Kind, msg)
	}
}

// Recent returns entries oldest first.
func (el *EventLog) Recent() []LogEntry {
	out := make([]LogEntry, el.count)
	for i := 0; i < el.count; i++ {
		out[i] = el.entries[(el.head-el.count+i+logMaxEntries)%logMaxEntries]
	}
	return out
}

// Clear drops every entry.
func (el *EventLog) Clear() {
	el.head, el.count = 0, 0
}

// Draw renders the panel with its left edge at panelX.
func (el *EventLog) Draw(screen *ebiten.Image, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, logPanelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, px, 0, logPanelWidth, 16, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 2)
	vector.StrokeLine(screen, px, 16, px+logPanelWidth, 16, 1, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := el.Recent()
	maxVisible := (panelH - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	const highlight = 3
	y := 20
	for i, e := range entries {
		if i >= len(entries)-highlight {
			vector.FillRect(screen, px+2, float32(y), logPanelWidth-4, logLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, px+5, float32(y+3), 3, 5, actorColor(e.Actor), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d [%s] %s", e.Tick, e.Label, e.Message), panelX+12, y)
		y += logLineHeight
	}
}

func actorColor(k sim.ActorKind) color.RGBA {
	switch k {
	case sim.ActorPlayer:
		return color.RGBA{R: 70, G: 170, B: 230, A: 255}
	case sim.ActorEnemy:
		return color.RGBA{R: 210, G: 70, B: 70, A: 255}
	default:
		return color.RGBA{R: 150, G: 150, B: 150, A: 255}
	}
}
