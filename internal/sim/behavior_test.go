package sim

import (
	"math"
	"testing"
)

func TestAlert_PassiveEnemyLooksAround(t *testing.T) {
	g := NewGrid(10, 10, MaterialFloor)
	e := NewEnemy(V(160, 160), 0)
	alert(&e, HitSource{Kind: SourceBullet, Origin: V(160, 60)}, g, nil)
	la, ok := e.Behavior.(LookAround)
	if !ok {
		t.Fatalf("behavior=%s, want look_around", e.Behavior)
	}
	if !near(la.Dir, -math.Pi/2) {
		t.Fatalf("dir=%v, want -pi/2 toward the shooter", la.Dir)
	}
}

func TestAlert_ChaseIsNotOverridden(t *testing.T) {
	g := NewGrid(10, 10, MaterialFloor)
	e := NewEnemy(V(160, 160), 0)
	chase := LastKnown{Pos: V(20, 20)}
	e.Behavior = chase
	alert(&e, HitSource{Kind: SourceGrenade, Origin: V(150, 160)}, g, nil)
	if e.Behavior != Behavior(chase) {
		t.Fatalf("behavior=%s, want the chase kept", e.Behavior)
	}
}

func TestAlert_GrenadeRoutesAway(t *testing.T) {
	g := NewGrid(20, 20, MaterialFloor)
	e := NewEnemy(V(320, 320), 0)
	alert(&e, HitSource{Kind: SourceGrenade, Origin: V(290, 320)}, g, nil)
	route, ok := e.Behavior.(PathThenWander)
	if !ok || len(route.Path) != 1 {
		t.Fatalf("behavior=%s, want a one-point route", e.Behavior)
	}
	if route.Path[0].X <= e.Pos.X {
		t.Fatalf("route %v should lead away from the grenade", route.Path[0])
	}
}

func TestAlert_CustomPolicy(t *testing.T) {
	g := NewGrid(10, 10, MaterialFloor)
	e := NewEnemy(V(160, 160), 0)
	calls := 0
	policy := func(e *Enemy, src HitSource, grid *Grid) Behavior {
		calls++
		return nil
	}
	alert(&e, HitSource{Kind: SourceKnife, Origin: V(170, 160)}, g, policy)
	if calls != 1 {
		t.Fatalf("policy called %d times", calls)
	}
	if _, ok := e.Behavior.(Wander); !ok {
		t.Fatalf("nil from the policy should keep wander, got %s", e.Behavior)
	}
}

func TestReachable_StopsShortOfWall(t *testing.T) {
	g := NewGrid(10, 10, MaterialFloor)
	g.Set(6, 2, MaterialWall)
	from := TileCenter(2, 2)
	p := reachable(g, from, V(300, 0))
	if !near(p.X, 6*TileSize-ActorRadius) {
		t.Fatalf("x=%v, want %v", p.X, 6*TileSize-ActorRadius)
	}
	if q := reachable(g, from, V(40, 0)); !nearVec(q, from.Add(V(40, 0))) {
		t.Fatalf("open leg should be reached in full, got %v", q)
	}
}

func TestLookAround_TimesOutToWander(t *testing.T) {
	ts := NewTestSim(WithEnemy(160, 160, 0))
	ts.Player.Health.HP = 0 // nobody to see
	ts.Enemies[0].setBehavior(LookAround{Dir: math.Pi})

	ts.RunTicks(int(LookAroundTime/DefaultDt)+2, Input{})
	if _, ok := ts.Enemies[0].Behavior.(Wander); !ok {
		t.Fatalf("behavior=%s, want wander", ts.Enemies[0].Behavior)
	}
	if !ts.SimLog.Has(Match{Category: "ai", Key: "behavior", Contains: "look_around(3.14) → wander"}) {
		t.Log(ts.SimLog.Format(Match{}))
		t.Fatal("transition not logged")
	}
}

func TestPathThenWander_WalksWaypoints(t *testing.T) {
	ts := NewTestSim(WithGridSize(20, 20), WithEnemy(160, 160, 0))
	ts.Player.Health.HP = 0
	goal := V(320, 160)
	ts.Enemies[0].setBehavior(PathThenWander{Path: []Vec2{V(240, 160), goal}})

	reached := ts.RunUntil(func(ts *TestSim) bool {
		_, wandering := ts.Enemies[0].Behavior.(Wander)
		return wandering
	}, Input{}, 600)
	if reached < 0 {
		t.Fatalf("route never finished, behavior=%s", ts.Enemies[0].Behavior)
	}
	if d := ts.Enemies[0].Pos.Dist(goal); d > ArriveRadius {
		t.Fatalf("ended %v from the last waypoint", d)
	}
}

func TestWander_StaysOnReachableGround(t *testing.T) {
	ts := NewTestSim(WithGridSize(12, 12), WithSeed(7),
		WithWall(6, 4), WithWall(6, 5), WithWall(6, 6), WithWall(6, 7),
		WithEnemy(5*TileSize, 6*TileSize, 0))
	ts.Player.Health.HP = 0
	start := ts.Enemies[0].Pos

	moved := false
	for i := 0; i < 1200; i++ {
		ts.Step(Input{})
		e := ts.Enemies[0]
		if ts.Grid.SolidAt(e.Pos) {
			t.Fatalf("tick %d: enemy inside a solid tile at %v", i, e.Pos)
		}
		if e.Pos.Dist(start) > TileSize {
			moved = true
		}
	}
	if !moved {
		t.Fatal("enemy never wandered")
	}
}

func TestBehaviorStrings(t *testing.T) {
	cases := []struct {
		b    Behavior
		want string
	}{
		{Wander{}, "wander"},
		{LastKnown{Pos: V(1, 2)}, "last_known(1,2)"},
		{LookAround{Dir: 0.5}, "look_around(0.50)"},
		{PathThenWander{Path: make([]Vec2, 3)}, "path_then_wander(3)"},
	}
	for _, c := range cases {
		if got := c.b.String(); got != c.want {
			t.Fatalf("%T String()=%q, want %q", c.b, got, c.want)
		}
	}
}
