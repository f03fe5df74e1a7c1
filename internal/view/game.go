// Package view is the windowed driver: it feeds keyboard and mouse input
// into the simulation at a fixed rate and renders the result with ebiten.
package view

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Tilefire/internal/audio"
	"github.com/Garsondee/Tilefire/internal/logging"
	"github.com/Garsondee/Tilefire/internal/sim"
)

// statusFrames is how long a status line stays on screen.
const statusFrames = 180

// simSpeeds are the selectable simulation speed multipliers.
var simSpeeds = []float64{0, 0.25, 0.5, 1, 2}

// Options configures a Game.
type Options struct {
	Width, Height int // arena viewport in pixels
	TickRate      int // simulation ticks per second
	Registry      *sim.Registry
	// Build starts a fresh session; it is called at start and on restart.
	Build func() (*sim.Sim, error)
	Log   zerolog.Logger
	Audio *audio.Manager // nil plays nothing
}

// Game implements ebiten.Game around one simulation session.
type Game struct {
	opts Options
	s    *sim.Sim
	dt   float64

	controls *Controls
	cam      Camera
	fx       Effects
	eventLog *EventLog
	simLog   *sim.SimLog
	events   *logging.EventLogger

	worldBuf *ebiten.Image
	hudFace  text.Face

	showHUD  bool
	prevKeys map[ebiten.Key]bool

	simSpeed  float64
	tickAccum float64

	status    string
	statusAge int
}

// New builds the first session and the renderer around it.
func New(opts Options) (*Game, error) {
	if opts.Build == nil {
		return nil, errors.New("view: no session builder")
	}
	if opts.TickRate <= 0 {
		return nil, fmt.Errorf("view: tick rate %d must be positive", opts.TickRate)
	}
	g := &Game{
		opts:     opts,
		dt:       1 / float64(opts.TickRate),
		controls: NewControls(),
		cam:      Camera{Zoom: 1, W: float64(opts.Width), H: float64(opts.Height)},
		eventLog: NewEventLog(),
		events:   logging.NewEventLogger(opts.Log, opts.Registry),
		hudFace:  text.NewGoXFace(basicfont.Face7x13),
		showHUD:  true,
		prevKeys: make(map[ebiten.Key]bool),
		simSpeed: 1,
	}
	if err := g.restart(); err != nil {
		return nil, err
	}
	return g, nil
}

// restart replaces the session with a fresh one from Build.
func (g *Game) restart() error {
	s, err := g.opts.Build()
	if err != nil {
		return fmt.Errorf("building session: %w", err)
	}
	g.s = s
	g.simLog = sim.NewSimLog(false)
	g.fx.Reset()
	g.eventLog.Clear()
	g.tickAccum = 0

	b := s.Grid.Bounds()
	if g.worldBuf == nil || g.worldBuf.Bounds().Dx() != int(b.X) || g.worldBuf.Bounds().Dy() != int(b.Y) {
		g.worldBuf = ebiten.NewImage(int(b.X), int(b.Y))
	}
	g.cam.Follow(s.Player.Pos, b)
	g.opts.Log.Info().
		Int("enemies", len(s.Enemies)).
		Int("intel", s.IntelRemaining()).
		Msg("session started")
	return nil
}

func (g *Game) Update() error {
	g.handleViewKeys()

	in := g.playerInput()

	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1 {
		g.tickAccum--
		g.step(in)
		// Edge-triggered actions apply once even when several ticks run.
		in.Reload, in.QuickSwitch, in.Throw, in.Drop, in.Interact = false, false, false, false, false
		in.Switch = sim.SlotNone
	}

	g.fx.Update()
	g.cam.Follow(g.s.Player.Pos, g.s.Grid.Bounds())
	if g.statusAge > 0 {
		g.statusAge--
	}
	return nil
}

// step runs one simulation tick and routes its events.
func (g *Game) step(in sim.Input) {
	g.s.Tick(g.dt, in)
	tick := g.s.TickCount()
	events := g.s.DrainEvents()
	if len(events) == 0 {
		return
	}
	g.simLog.Record(tick, events, g.s.Weapons)
	g.eventLog.Record(tick, events, g.s.Weapons)
	g.events.Log(tick, events)
	g.fx.Spawn(events, g.facing)
	if g.opts.Audio != nil {
		g.opts.Audio.Handle(events, g.s.Player.Pos)
	}
}

// facing returns the aim of the referenced actor, or 0 when it is gone.
func (g *Game) facing(ref sim.ActorRef) float64 {
	switch ref.Kind {
	case sim.ActorPlayer:
		return g.s.Player.Rot
	case sim.ActorEnemy:
		if ref.Index >= 0 && ref.Index < len(g.s.Enemies) {
			return g.s.Enemies[ref.Index].Rot
		}
	}
	return 0
}

// playerInput reads the frame's input. A dead player only keeps aiming.
func (g *Game) playerInput() sim.Input {
	mx, my := ebiten.CursorPosition()
	aim := g.cam.ToWorld(float64(mx), float64(my)).Sub(g.s.Player.Pos).Angle()
	in := g.controls.Read(ebiten.IsKeyPressed, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), aim)
	if g.s.Player.Health.IsDead() {
		return sim.Input{Aim: aim}
	}
	return in
}

// handleViewKeys processes keys that drive the window rather than the
// player (edge-triggered).
func (g *Game) handleViewKeys() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	if pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if pressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if pressed(ebiten.KeyComma) {
		for i := len(simSpeeds) - 1; i >= 0; i-- {
			if simSpeeds[i] < g.simSpeed {
				g.simSpeed = simSpeeds[i]
				break
			}
		}
	}
	if pressed(ebiten.KeyPeriod) {
		for _, sp := range simSpeeds {
			if sp > g.simSpeed {
				g.simSpeed = sp
				break
			}
		}
	}
	if pressed(ebiten.KeyC) {
		g.copyState()
	}
	if pressed(ebiten.KeyF5) {
		if err := g.restart(); err != nil {
			g.opts.Log.Error().Err(err).Msg("restart failed")
			g.setStatus("restart failed")
		}
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.Zoom *= 1 + 0.12*wy
	}
	if pressed(ebiten.KeyEqual) {
		g.cam.Zoom *= 1.25
	}
	if pressed(ebiten.KeyMinus) {
		g.cam.Zoom /= 1.25
	}

	g.prevKeys = currentKeys
}

// copyState puts a text summary of the session on the clipboard.
func (g *Game) copyState() {
	summary := g.simLog.Summary(g.s)
	if err := clipboard.WriteAll(summary); err != nil {
		g.opts.Log.Warn().Err(err).Msg("clipboard unavailable")
		g.setStatus("clipboard unavailable")
		return
	}
	g.opts.Log.Debug().Str("summary", summary).Msg("state copied")
	g.setStatus("state copied to clipboard")
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusAge = statusFrames
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.opts.Width + logPanelWidth, g.opts.Height
}
