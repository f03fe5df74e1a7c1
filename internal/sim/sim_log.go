package sim

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded occurrence during a headless run.
type SimLogEntry struct {
	Tick     int
	Actor    string  // label e.g. "P", "E3", or "--" for world events
	Category string  // weapon, combat, ai, world
	Key      string  // event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] E0   ai        behavior         wander → last_known(160,160)
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Actor, e.Category, e.Key, e.Value)
}

// SimLog collects structured entries from a headless run. It is unbounded
// and machine-readable; the event queue it is fed from is not.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position entries
// are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, actor, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Actor:    actor,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, actor, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, actor, category, key, value, numVal)
}

// EventCategory groups event kinds for filtering.
func EventCategory(k EventKind) string {
	switch k {
	case EventShot, EventClick, EventReload, EventWeaponReady, EventSwitch, EventThrow:
		return "weapon"
	case EventHit, EventDeath, EventExplosion, EventWallImpact, EventGrenadeBounce:
		return "combat"
	default:
		return "world"
	}
}

// Record appends one entry per event raised during tick.
func (sl *SimLog) Record(tick int, events []Event, reg *Registry) {
	for _, ev := range events {
		weapon := "knife"
		if ev.Weapon != NoWeapon && reg != nil && int(ev.Weapon) < reg.Len() {
			weapon = reg.Get(ev.Weapon).Name
		}
		value := fmt.Sprintf("%s at (%.0f,%.0f)", weapon, ev.Pos.X, ev.Pos.Y)
		switch ev.Kind {
		case EventWallImpact:
			value = fmt.Sprintf("%s at (%.0f,%.0f) normal %v", weapon, ev.Pos.X, ev.Pos.Y, ev.Normal)
		case EventSwitch, EventThrow, EventExplosion, EventGrenadeBounce, EventDeath, EventIntel, EventLevelComplete:
			value = fmt.Sprintf("(%.0f,%.0f)", ev.Pos.X, ev.Pos.Y)
		}
		sl.Add(tick, ev.Actor.Label(), EventCategory(ev.Kind), ev.Kind.String(), value, float64(ev.Weapon))
	}
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Match selects log entries. Zero fields match anything; To == 0 leaves
// the tick range open-ended.
type Match struct {
	Category string
	Key      string
	Actor    string
	Contains string // substring of Value
	From, To int    // inclusive tick range
}

// On matches every entry recorded for an event kind.
func On(k EventKind) Match {
	return Match{Category: EventCategory(k), Key: k.String()}
}

func (m Match) matches(e SimLogEntry) bool {
	switch {
	case m.Category != "" && e.Category != m.Category,
		m.Key != "" && e.Key != m.Key,
		m.Actor != "" && e.Actor != m.Actor,
		e.Tick < m.From,
		m.To > 0 && e.Tick > m.To:
		return false
	}
	return m.Contains == "" || strings.Contains(e.Value, m.Contains)
}

// Select returns the entries m accepts, oldest first.
func (sl *SimLog) Select(m Match) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if m.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Count is the number of entries recorded for event kind k.
func (sl *SimLog) Count(k EventKind) int {
	m := On(k)
	n := 0
	for _, e := range sl.entries {
		if m.matches(e) {
			n++
		}
	}
	return n
}

// Has reports whether any entry matches.
func (sl *SimLog) Has(m Match) bool {
	_, ok := sl.First(m)
	return ok
}

// First returns the earliest matching entry.
func (sl *SimLog) First(m Match) (SimLogEntry, bool) {
	for _, e := range sl.entries {
		if m.matches(e) {
			return e, true
		}
	}
	return SimLogEntry{}, false
}

// Last returns the latest matching entry.
func (sl *SimLog) Last(m Match) (SimLogEntry, bool) {
	for i := len(sl.entries) - 1; i >= 0; i-- {
		if m.matches(sl.entries[i]) {
			return sl.entries[i], true
		}
	}
	return SimLogEntry{}, false
}

// Format renders the matching entries one per line, for t.Log and the
// headless report. An empty Match renders everything.
func (sl *SimLog) Format(m Match) string {
	var sb strings.Builder
	for _, e := range sl.Select(m) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the session state.
func (sl *SimLog) Summary(s *Sim) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", s.TickCount())

	state := "alive"
	if s.Player.Health.IsDead() {
		state = "dead"
	}
	fmt.Fprintf(&sb, "Player: %s hp=%.1f armour=%.1f at (%.0f,%.0f) wielding %s\n",
		state, s.Player.Health.HP, s.Player.Health.Armour, s.Player.Pos.X, s.Player.Pos.Y,
		wielding(&s.Player.Actor, s.Weapons))

	fmt.Fprintf(&sb, "Enemies: %d alive", len(s.Enemies))
	for i := range s.Enemies {
		e := &s.Enemies[i]
		fmt.Fprintf(&sb, "\n  E%d %s hp=%.1f %s", i, e.Behavior, e.Health.HP, wielding(&e.Actor, s.Weapons))
	}
	sb.WriteByte('\n')

	fmt.Fprintf(&sb, "Projectiles: bullets=%d grenades=%d  Pickups: %d  Intel: %d left, %d taken\n",
		len(s.Bullets), len(s.Grenades), len(s.Pickups), s.IntelRemaining(), s.IntelTaken())
	fmt.Fprintf(&sb, "Events: shots=%d hits=%d deaths=%d explosions=%d\n",
		sl.Count(EventShot), sl.Count(EventHit), sl.Count(EventDeath), sl.Count(EventExplosion))
	return sb.String()
}

// wielding describes the drawn weapon and its ammunition.
func wielding(a *Actor, reg *Registry) string {
	wi := a.Slots.ActiveWeapon()
	if wi == nil {
		return "knife"
	}
	return fmt.Sprintf("%s %d/%d", reg.Get(wi.Weapon).Name, wi.CurClip, wi.Ammo)
}
