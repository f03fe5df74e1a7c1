package sim

import (
	"math"
	"strings"
	"testing"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, ts *TestSim) {
	t.Helper()
	entries := ts.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

// --- Scenario: sniper spots the player ---

func TestScenario_SniperSpotsPlayer(t *testing.T) {
	// The enemy stands 20 tiles below the player, so the grid is taller
	// than it is wide.
	ts := NewTestSim(
		WithGridSize(10, 30),
		WithPlayer(160, 160),
		WithEnemy(160, 800, -math.Pi/2, "bolt_rifle"),
	)
	ts.Player.Health.HP = 1e6 // survive every hit so the enemy keeps shooting

	ts.Step(Input{})
	lk, ok := ts.Enemies[0].Behavior.(LastKnown)
	if !ok {
		dumpLog(t, ts)
		t.Fatalf("behavior=%s after first sighting, want last_known", ts.Enemies[0].Behavior)
	}
	if lk.Pos != V(160, 160) {
		t.Fatalf("last known=%v, want (160,160)", lk.Pos)
	}
	if !ts.SimLog.Has(Match{Category: "ai", Key: "behavior", Contains: "wander → last_known(160,160)"}) {
		dumpLog(t, ts)
		t.Fatal("sighting transition not logged")
	}

	ts.RunTicks(299, Input{})

	var shotTicks []int
	for _, e := range ts.SimLog.Select(Match{Actor: "E0"}) {
		if e.Key == EventShot.String() {
			shotTicks = append(shotTicks, e.Tick)
		}
	}
	if len(shotTicks) != 4 {
		dumpLog(t, ts)
		t.Fatalf("shots at ticks %v, want 4 in 300 ticks", shotTicks)
	}
	if shotTicks[0] != 1 {
		t.Fatalf("first shot at tick %d, want 1", shotTicks[0])
	}
	rate := ts.Weapons.Get(ts.Weapons.MustLookup("bolt_rifle")).FireRate
	minGap := int(math.Floor(rate/DefaultDt + 1e-6))
	for i := 1; i < len(shotTicks); i++ {
		gap := shotTicks[i] - shotTicks[i-1]
		if gap < minGap || gap > minGap+2 {
			t.Fatalf("shots %v: gap %d outside one fire-rate interval (%d ticks)", shotTicks, gap, minGap)
		}
	}
	if ts.SimLog.Count(EventHit) == 0 {
		dumpLog(t, ts)
		t.Fatal("no shot ever landed on the stationary player")
	}
	if _, ok := ts.Enemies[0].Behavior.(LastKnown); !ok {
		t.Fatalf("enemy lost the chase: %s", ts.Enemies[0].Behavior)
	}
}

func TestScenario_WallBlocksSighting(t *testing.T) {
	ts := NewTestSim(
		WithGridSize(10, 30),
		WithWall(4, 12), WithWall(5, 12), WithWall(6, 12),
		WithPlayer(160, 160),
		WithEnemy(160, 800, -math.Pi/2, "bolt_rifle"),
	)
	ts.Step(Input{})
	if _, ok := ts.Enemies[0].Behavior.(LastKnown); ok {
		t.Fatal("enemy saw through the wall")
	}
	if n := ts.SimLog.Count(EventShot); n != 0 {
		t.Fatalf("%d shots fired without sight", n)
	}
}

func TestTick_SemiAutoFiresOnPressOnly(t *testing.T) {
	ts := NewTestSim(WithGridSize(20, 10), WithPlayer(48, 160, "pistol"))
	hold := Input{Fire: true}
	ts.RunTicks(60, hold)
	if n := ts.SimLog.Count(EventShot); n != 1 {
		t.Fatalf("holding a semi-auto trigger fired %d shots, want 1", n)
	}
	ts.Step(Input{})
	ts.Step(hold)
	if n := ts.SimLog.Count(EventShot); n != 2 {
		t.Fatalf("second press: %d shots, want 2", n)
	}
}

func TestTick_AutomaticFiresWhileHeld(t *testing.T) {
	ts := NewTestSim(WithGridSize(40, 10), WithPlayer(48, 160, "smg"))
	ts.RunTicks(60, Input{Fire: true})
	rate := ts.Weapons.Get(ts.Weapons.MustLookup("smg")).FireRate
	n := ts.SimLog.Count(EventShot)
	per := int(math.Ceil(rate / DefaultDt)) // ticks between shots
	if n < 60/(per+1) || n > 60/per+1 {
		t.Fatalf("one second of auto fire gave %d shots, want about %d", n, 60/per)
	}
}

func TestTick_ClickThenReload(t *testing.T) {
	ts := NewTestSim(WithGridSize(40, 10), WithPlayer(48, 160, "pistol"))
	wi := ts.Player.Slots.ActiveWeapon()
	wi.CurClip = 0

	ts.Step(Input{Fire: true})
	if ts.SimLog.Count(EventClick) != 1 {
		t.Fatal("empty clip should click")
	}
	ts.Step(Input{Reload: true})
	if wi.CurClip != 12 || ts.SimLog.Count(EventReload) != 1 {
		t.Fatalf("reload: clip=%d", wi.CurClip)
	}
	ts.RunTicks(int(1.2/DefaultDt)+2, Input{})
	if ts.SimLog.Count(EventWeaponReady) != 1 {
		dumpLog(t, ts)
		t.Fatal("reload completion not reported")
	}
}

func TestTick_KnifeStab(t *testing.T) {
	ts := NewTestSim(WithPlayer(160, 160), WithEnemy(190, 160, math.Pi))
	ts.Step(Input{Fire: true, Aim: 0})
	if !near(ts.Enemies[0].Health.HP, DefaultHP-KnifeDamage) {
		t.Fatalf("enemy hp=%v, want %v", ts.Enemies[0].Health.HP, DefaultHP-KnifeDamage)
	}
	// Holding the button does not swing again.
	ts.RunTicks(60, Input{Fire: true, Aim: 0})
	if !near(ts.Enemies[0].Health.HP, DefaultHP-KnifeDamage) {
		t.Fatalf("held knife swung again, hp=%v", ts.Enemies[0].Health.HP)
	}
}

func TestTick_KnifeMissesBehind(t *testing.T) {
	ts := NewTestSim(WithPlayer(160, 160), WithEnemy(190, 160, math.Pi))
	ts.Enemies[0].Health.HP = 1e6
	ts.Step(Input{Fire: true, Aim: math.Pi})
	if ts.Enemies[0].Health.HP != 1e6 {
		t.Fatal("stab facing away should miss")
	}
}

func TestTick_GrenadeKillsAndDropsWeapon(t *testing.T) {
	ts := NewTestSim(WithGridSize(20, 20), WithEnemy(400, 400, 0, "pistol"))
	ts.Player.Health.HP = 1e6
	ts.Player.Pos = V(48, 48)
	ts.Grenades = append(ts.Grenades, Grenade{Object: Object{Pos: V(420, 400)}, Vel: V(1, 0)})

	ts.Step(Input{})
	if len(ts.Enemies) != 0 {
		t.Fatalf("enemy survived the blast: %+v", ts.Enemies)
	}
	if len(ts.Grenades) != 0 {
		t.Fatal("exploded grenade not removed")
	}
	if ts.SimLog.Count(EventExplosion) != 1 ||
		ts.SimLog.Count(EventDeath) != 1 {
		dumpLog(t, ts)
		t.Fatal("missing explosion or death event")
	}
	if len(ts.Pickups) != 1 || ts.Pickups[0].Weapon.Weapon != ts.Weapons.MustLookup("pistol") {
		t.Fatalf("pickups=%+v, want the dropped pistol", ts.Pickups)
	}
	if ts.Player.Health.HP != 1e6 {
		t.Fatal("player outside the radius took blast damage")
	}
}

// wallColumn walls off tile column tx from top to bottom.
func wallColumn(tx, h int) []SimOption {
	opts := make([]SimOption, 0, h)
	for ty := 0; ty < h; ty++ {
		opts = append(opts, WithWall(tx, ty))
	}
	return opts
}

func TestTick_MuzzleAgainstWallStopsBullet(t *testing.T) {
	opts := append(wallColumn(5, 10),
		WithGridSize(12, 10),
		WithPlayer(144, 176, "pistol"),
		WithEnemy(240, 176, math.Pi))
	ts := NewTestSim(opts...)
	hp := ts.Enemies[0].Health.HP

	ts.RunTicks(3, Input{Fire: true, Aim: 0})
	if ts.SimLog.Count(EventShot) != 1 {
		dumpLog(t, ts)
		t.Fatalf("expected one shot, got %d", ts.SimLog.Count(EventShot))
	}
	if ts.Enemies[0].Health.HP != hp || ts.SimLog.Count(EventHit) != 0 {
		dumpLog(t, ts)
		t.Fatalf("bullet passed through the wall: hp %v -> %v", hp, ts.Enemies[0].Health.HP)
	}
	if ts.SimLog.Count(EventWallImpact) != 1 {
		dumpLog(t, ts)
		t.Fatal("expected the round to strike the wall")
	}
	if len(ts.Bullets) != 0 {
		t.Fatalf("%d bullets still in flight", len(ts.Bullets))
	}
}

func TestTick_MuzzleAgainstWallBouncesGrenade(t *testing.T) {
	opts := append(wallColumn(5, 10),
		WithGridSize(12, 10),
		WithPlayer(144, 176))
	ts := NewTestSim(opts...)
	ts.Player.Health.HP = 1e6

	ts.Step(Input{Throw: true, Aim: 0})
	if ts.SimLog.Count(EventGrenadeBounce) == 0 {
		dumpLog(t, ts)
		t.Fatal("grenade released into the wall should bounce")
	}
	for i := 0; i < 600 && len(ts.Grenades) > 0; i++ {
		if g := ts.Grenades[0]; ts.Grid.SolidAt(g.Pos) || g.Pos.X > 160 {
			t.Fatalf("tick %d: grenade at %v crossed into the wall", ts.TickCount(), g.Pos)
		}
		ts.Step(Input{})
	}
	if len(ts.Grenades) != 0 {
		t.Fatal("grenade never came to rest")
	}
	if ts.SimLog.Count(EventExplosion) != 1 {
		t.Fatal("expected the grenade to explode on the thrower's side")
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{5 * math.Pi / 2, math.Pi / 2},
		{-5 * math.Pi / 2, -math.Pi / 2},
		{1e9, math.Remainder(1e9, 2*math.Pi)},
	}
	for _, c := range cases {
		if got := normalizeAngle(c.in); !near(got, c.want) {
			t.Fatalf("normalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	if got := math.Abs(normalizeAngle(3 * math.Pi)); !near(got, math.Pi) {
		t.Fatalf("normalizeAngle(3pi) magnitude = %v, want pi", got)
	}
	for _, a := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if got := normalizeAngle(a); got != 0 {
			t.Fatalf("normalizeAngle(%v) = %v, want 0", a, got)
		}
	}
}

func TestTick_ThrowUsesGrenades(t *testing.T) {
	ts := NewTestSim(WithGridSize(20, 10), WithPlayer(48, 160))
	ts.Step(Input{Throw: true})
	if len(ts.Grenades) != 1 || ts.Player.Slots.Grenades != DefaultGrenades-1 {
		t.Fatalf("grenades in flight=%d carried=%d", len(ts.Grenades), ts.Player.Slots.Grenades)
	}
	ts.Step(Input{Throw: true})
	ts.Step(Input{Throw: true})
	if ts.Player.Slots.Grenades != 0 || ts.SimLog.Count(EventThrow) != DefaultGrenades {
		t.Fatal("threw more grenades than carried")
	}
}

func TestTick_PickupAndDrop(t *testing.T) {
	ts := NewTestSim(WithPlayer(160, 160))
	rifle := ts.Weapons.MustLookup("rifle")
	ts.AddPickup(V(170, 160), NewWeaponInstance(rifle, ts.Weapons.Get(rifle)))

	ts.Step(Input{Interact: true})
	if len(ts.Pickups) != 0 {
		t.Fatal("pickup not taken")
	}
	if wi := ts.Player.Slots.ActiveWeapon(); wi == nil || wi.Weapon != rifle {
		t.Fatal("rifle should be drawn after pickup")
	}

	ts.Step(Input{Drop: true})
	if len(ts.Pickups) != 1 || ts.Player.Slots.ActiveWeapon() != nil {
		t.Fatalf("drop: pickups=%d active=%s", len(ts.Pickups), ts.Player.Slots.Active)
	}
}

func TestTick_IntelCollectedTogether(t *testing.T) {
	ts := NewTestSim(
		WithPlayer(160, 160),
		WithIntel(170, 160),
		WithIntel(150, 165),
		WithIntel(280, 280),
	)
	ts.Step(Input{})
	if ts.IntelRemaining() != 1 || ts.IntelTaken() != 2 {
		t.Fatalf("remaining=%d taken=%d, want 1/2", ts.IntelRemaining(), ts.IntelTaken())
	}
	if ts.SimLog.Count(EventLevelComplete) != 0 {
		t.Fatal("level complete too early")
	}

	ts.RunUntil(func(ts *TestSim) bool { return ts.IntelRemaining() == 0 },
		Input{Move: V(1, 1)}, 120)
	if ts.SimLog.Count(EventLevelComplete) != 1 {
		dumpLog(t, ts)
		t.Fatal("level complete not reported once")
	}
}

func TestTick_WallsStopMovement(t *testing.T) {
	ts := NewTestSim(WithWall(2, 1), WithWall(2, 2), WithPlayer(48, 64))
	ts.RunTicks(60, Input{Move: V(1, 0)})
	if ts.Player.Pos.X > 2*TileSize-ActorRadius+1e-6 {
		t.Fatalf("player pushed into the wall: %v", ts.Player.Pos)
	}
	if !near(ts.Player.Pos.Y, 64) {
		t.Fatalf("player drifted to y=%v", ts.Player.Pos.Y)
	}
	if ts.Player.Vel.Len() > 1e-3 {
		t.Fatalf("blocked player still reports velocity %v", ts.Player.Vel)
	}
}

func TestTick_PlayerDeathReportedOnce(t *testing.T) {
	ts := NewTestSim(WithPlayer(160, 160))
	ts.Player.Health.HP = 0
	ts.RunTicks(10, Input{})
	if n := ts.SimLog.Count(EventDeath); n != 1 {
		t.Fatalf("player death reported %d times", n)
	}
}

func TestTick_DrainClearsQueue(t *testing.T) {
	s := New(NewGrid(10, 10, MaterialFloor), DefaultRegistry(), 1, V(160, 160))
	s.Tick(DefaultDt, Input{Throw: true})
	if len(s.Events()) == 0 {
		t.Fatal("expected a throw event")
	}
	drained := s.DrainEvents()
	if len(drained) == 0 || len(s.Events()) != 0 {
		t.Fatalf("drain returned %d, left %d", len(drained), len(s.Events()))
	}
}

func TestSweep(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	got := sweep(items, []int{1, 3})
	want := []string{"a", "c", "e"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if items[3] != "" || items[4] != "" {
		t.Fatal("tail not cleared")
	}
	if out := sweep(want, nil); len(out) != 3 {
		t.Fatal("nothing marked should keep everything")
	}
}

func TestSimLog_Summary(t *testing.T) {
	ts := NewTestSim(WithPlayer(160, 160, "pistol"), WithEnemy(250, 250, 0))
	ts.RunTicks(5, Input{})
	sum := ts.SimLog.Summary(ts.Sim)
	for _, want := range []string{"Summary at T=005", "pistol 12/48", "Enemies: 1 alive"} {
		if !strings.Contains(sum, want) {
			t.Fatalf("summary missing %q:\n%s", want, sum)
		}
	}
}

func TestWrapSim_RecordsBuiltSession(t *testing.T) {
	s := New(NewGrid(4, 3, MaterialFloor), DefaultRegistry(), 3, V(48, 48))
	ts := WrapSim(s, true)
	ts.Step(Input{})
	if ts.TickCount() != 1 {
		t.Fatalf("tick = %d, want 1", ts.TickCount())
	}
	if !ts.SimLog.Has(Match{Category: "move", Key: "position", Contains: "(48.0,48.0)"}) {
		dumpLog(t, ts)
		t.Fatal("expected a verbose position entry for the idle player")
	}
}

func TestSimLog_Match(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "P", "weapon", "shot", "pistol at (1,1)", 0)
	sl.Add(2, "E0", "weapon", "shot", "rifle at (5,5)", 2)
	sl.Add(4, "E0", "combat", "hit", "pistol at (5,5)", 0)
	sl.Add(9, "P", "weapon", "shot", "pistol at (2,2)", 0)

	if n := sl.Count(EventShot); n != 3 {
		t.Fatalf("expected 3 shots, got %d", n)
	}
	if got := sl.Select(Match{Actor: "E0"}); len(got) != 2 {
		t.Fatalf("expected 2 E0 entries, got %d", len(got))
	}
	if got := sl.Select(Match{From: 2, To: 4}); len(got) != 2 {
		t.Fatalf("expected 2 entries in ticks 2..4, got %d", len(got))
	}
	last, ok := sl.Last(Match{Actor: "P", Key: "shot"})
	if !ok || last.Tick != 9 {
		t.Fatalf("expected the last player shot at T=9, got %+v", last)
	}
	if first, ok := sl.First(Match{Contains: "rifle"}); !ok || first.Tick != 2 {
		t.Fatalf("expected the rifle shot at T=2, got %+v", first)
	}
	if sl.Has(Match{Category: "world"}) {
		t.Fatal("no world entries were added")
	}
	if out := sl.Format(On(EventHit)); !strings.Contains(out, "[T=004] E0") {
		t.Fatalf("unexpected format:\n%s", out)
	}
}
