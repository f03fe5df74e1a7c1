package sim

import "fmt"

// TestSim is a headless harness used by tests and the headless report. It
// drives a Sim with scripted input and records everything into a SimLog.
type TestSim struct {
	*Sim
	SimLog *SimLog

	width, height int
	solids        [][2]int
	seed          int64
	weapons       []Weapon
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // grid size, walls, seed, weapons, verbose
	simOptActor                      // player, enemies, intel: applied once the Sim exists
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithGridSize sets the open grid's dimensions in tiles.
func WithGridSize(w, h int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.width, ts.height = w, h
	}}
}

// WithWall makes tile (tx, ty) a wall.
func WithWall(tx, ty int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.solids = append(ts.solids, [2]int{tx, ty})
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithWeapons replaces the built-in arsenal.
func WithWeapons(ws ...Weapon) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.weapons = ws
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithPlayer moves the player to (x, y) and gives it the named weapons.
func WithPlayer(x, y float64, weapons ...string) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		ts.Player.Pos = V(x, y)
		for _, name := range weapons {
			ts.Player.Give(ts.Weapons, ts.Weapons.MustLookup(name))
		}
	}}
}

// WithEnemy adds an idle enemy at (x, y) facing rot, carrying the named weapons.
func WithEnemy(x, y, rot float64, weapons ...string) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		ids := make([]WeaponID, 0, len(weapons))
		for _, name := range weapons {
			ids = append(ids, ts.Weapons.MustLookup(name))
		}
		ts.AddEnemy(V(x, y), rot, ids...)
	}}
}

// WithIntel places a collectible at (x, y).
func WithIntel(x, y float64) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		ts.AddIntel(V(x, y))
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (grid, walls, seed, weapons, verbose)
//  2. Build the Sim
//  3. Actors and intel
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		SimLog: NewSimLog(false),
		width:  10,
		height: 10,
		seed:   1,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	grid := NewGrid(ts.width, ts.height, MaterialFloor)
	for _, t := range ts.solids {
		grid.Set(t[0], t[1], MaterialWall)
	}
	reg := DefaultRegistry()
	if ts.weapons != nil {
		var err error
		if reg, err = NewRegistry(ts.weapons...); err != nil {
			panic(fmt.Sprintf("test harness: %v", err))
		}
	}
	ts.Sim = New(grid, reg, ts.seed, V(TileSize/2, TileSize/2))

	for _, o := range opts {
		if o.kind == simOptActor {
			o.fn(ts)
		}
	}
	return ts
}

// WrapSim attaches a fresh SimLog to an already-built session, such as one
// produced from a level file.
func WrapSim(s *Sim, verbose bool) *TestSim {
	return &TestSim{
		Sim:    s,
		SimLog: NewSimLog(verbose),
	}
}

// RunTicks advances the session n ticks with the same input, logging events.
func (ts *TestSim) RunTicks(n int, in Input) {
	for i := 0; i < n; i++ {
		ts.Step(in)
	}
}

// RunUntil advances up to maxTicks, stopping early if predicate returns true.
// Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, in Input, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.Step(in)
		if predicate(ts) {
			return ts.TickCount()
		}
	}
	return -1
}

// Step runs one DefaultDt tick and records what changed.
func (ts *TestSim) Step(in Input) {
	prev := make([]string, len(ts.Enemies))
	for i := range ts.Enemies {
		prev[i] = ts.Enemies[i].Behavior.String()
	}

	ts.Tick(DefaultDt, in)
	tick := ts.TickCount()
	ts.SimLog.Record(tick, ts.DrainEvents(), ts.Weapons)

	// Indices shift after deaths; only compare when nobody was removed.
	if len(prev) == len(ts.Enemies) {
		for i := range ts.Enemies {
			if now := ts.Enemies[i].Behavior.String(); now != prev[i] {
				ts.SimLog.Add(tick, fmt.Sprintf("E%d", i), "ai", "behavior",
					fmt.Sprintf("%s → %s", prev[i], now), 0)
			}
		}
	}

	ts.SimLog.AddVerbose(tick, "P", "move", "position",
		fmt.Sprintf("(%.1f,%.1f)", ts.Player.Pos.X, ts.Player.Pos.Y), ts.Player.Health.HP)
	for i := range ts.Enemies {
		e := &ts.Enemies[i]
		ts.SimLog.AddVerbose(tick, fmt.Sprintf("E%d", i), "move", "position",
			fmt.Sprintf("(%.1f,%.1f)", e.Pos.X, e.Pos.Y), e.Health.HP)
	}
}

// Snapshot is a lightweight copy of the session at a tick.
type Snapshot struct {
	Tick     int
	PlayerHP float64
	Player   Vec2
	Enemies  []EnemySnapshot
	Bullets  int
	Grenades int
}

// EnemySnapshot is one enemy's state at a tick.
type EnemySnapshot struct {
	Pos      Vec2
	HP       float64
	Behavior string
}

// Snapshot returns the current state of every actor.
func (ts *TestSim) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:     ts.TickCount(),
		PlayerHP: ts.Player.Health.HP,
		Player:   ts.Player.Pos,
		Bullets:  len(ts.Bullets),
		Grenades: len(ts.Grenades),
	}
	for i := range ts.Enemies {
		e := &ts.Enemies[i]
		snap.Enemies = append(snap.Enemies, EnemySnapshot{
			Pos:      e.Pos,
			HP:       e.Health.HP,
			Behavior: e.Behavior.String(),
		})
	}
	return snap
}
