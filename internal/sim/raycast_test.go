package sim

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func nearVec(a, b Vec2) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func TestRayCast_EmptyGridIsFull(t *testing.T) {
	g := NewGrid(10, 10, MaterialFloor)
	origin := V(150, 150)
	disps := []Vec2{
		V(100, 0), V(-100, 0), V(0, 120), V(0, -140),
		V(90, 90), V(-70, 33.3), V(12.5, -101), V(0.1, 0.1),
		V(-149, -149), V(160, 160),
	}
	for _, d := range disps {
		res := g.RayCast(origin, d, true)
		if res.Kind != RayFull {
			t.Fatalf("disp %v: kind=%s, want full", d, res.Kind)
		}
		if !nearVec(res.Hit, origin.Add(d)) {
			t.Fatalf("disp %v: hit=%v, want %v", d, res.Hit, origin.Add(d))
		}
	}
}

func TestRayCast_ZeroDisplacement(t *testing.T) {
	g := NewGrid(3, 3, MaterialFloor)
	res := g.RayCast(V(40, 40), Vec2{}, true)
	if res.Kind != RayFull || res.Hit != V(40, 40) {
		t.Fatalf("got %+v, want full at origin", res)
	}
}

func TestRayCast_WallStop(t *testing.T) {
	g := NewGrid(10, 10, MaterialFloor)
	g.Set(5, 5, MaterialWall)

	res := g.RayCast(V(4.5*TileSize, 5.5*TileSize), V(100, 0), true)
	if res.Kind != RayHalf {
		t.Fatalf("kind=%s, want half", res.Kind)
	}
	if !near(res.Hit.X, 5*TileSize) {
		t.Fatalf("hit x=%v, want %v", res.Hit.X, 5*TileSize)
	}
	if res.ToWall != [2]int{1, 0} {
		t.Fatalf("to_wall=%v, want [1 0]", res.ToWall)
	}
	if !nearVec(res.Remaining, V(84, 0)) {
		t.Fatalf("remaining=%v, want (84,0)", res.Remaining)
	}
}

func TestRayCast_NegativeDirectionSymmetric(t *testing.T) {
	g := NewGrid(10, 10, MaterialFloor)
	g.Set(3, 5, MaterialWall)

	res := g.RayCast(V(5.5*TileSize, 5.5*TileSize), V(-200, 0), true)
	if res.Kind != RayHalf {
		t.Fatalf("kind=%s, want half", res.Kind)
	}
	if !near(res.Hit.X, 4*TileSize) {
		t.Fatalf("hit x=%v, want %v (near edge of the wall's right neighbour)", res.Hit.X, 4*TileSize)
	}
	if res.ToWall != [2]int{-1, 0} {
		t.Fatalf("to_wall=%v, want [-1 0]", res.ToWall)
	}

	g.Set(5, 2, MaterialWall)
	res = g.RayCast(V(5.5*TileSize, 5.5*TileSize), V(0, -200), true)
	if res.Kind != RayHalf || res.ToWall != [2]int{0, -1} || !near(res.Hit.Y, 3*TileSize) {
		t.Fatalf("upward cast got %+v", res)
	}
}

func TestRayCast_DiagonalTieStepsBothAxes(t *testing.T) {
	g := NewGrid(10, 10, MaterialFloor)
	g.Set(5, 5, MaterialWall)

	// From the centre of (4,4) straight through the shared corner.
	res := g.RayCast(TileCenter(4, 4), V(64, 64), true)
	if res.Kind != RayHalf {
		t.Fatalf("kind=%s, want half", res.Kind)
	}
	if res.ToWall != [2]int{1, 1} {
		t.Fatalf("to_wall=%v, want [1 1]", res.ToWall)
	}
	if !nearVec(res.Hit, V(160, 160)) {
		t.Fatalf("hit=%v, want corner (160,160)", res.Hit)
	}
}

func TestRayCast_LeavingGridIsOffEdge(t *testing.T) {
	g := NewGrid(4, 4, MaterialFloor)
	res := g.RayCast(V(100, 60), V(200, 0), true)
	if res.Kind != RayOffEdge {
		t.Fatalf("kind=%s, want off_edge", res.Kind)
	}
	if !near(res.Hit.X, 4*TileSize) {
		t.Fatalf("hit x=%v, want grid edge %v", res.Hit.X, 4*TileSize)
	}

	res = g.RayCast(V(-10, 60), V(50, 0), true)
	if res.Kind != RayOffEdge {
		t.Fatalf("origin off the grid: kind=%s, want off_edge", res.Kind)
	}
}

func TestRayCast_InfiniteRunsToWall(t *testing.T) {
	g := NewGrid(20, 3, MaterialFloor)
	g.Set(17, 1, MaterialWall)
	res := g.RayCast(TileCenter(1, 1), V(1, 0), false)
	if res.Kind != RayHalf || !near(res.Hit.X, 17*TileSize) {
		t.Fatalf("infinite cast got %+v", res)
	}
}

func TestLineOfSight(t *testing.T) {
	g := NewGrid(10, 10, MaterialFloor)
	g.Set(5, 0, MaterialWall)
	g.Set(5, 1, MaterialWall)
	g.Set(5, 2, MaterialWall)
	if g.LineOfSight(TileCenter(2, 1), TileCenter(8, 1)) {
		t.Fatal("wall should block sight")
	}
	if !g.LineOfSight(TileCenter(2, 6), TileCenter(8, 6)) {
		t.Fatal("open row should be visible")
	}
}
