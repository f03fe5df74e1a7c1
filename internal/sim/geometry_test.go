package sim

import "testing"

func TestClosestPointOfLineToCircle(t *testing.T) {
	start := V(0, 0)
	disp := V(100, 0)
	cases := []struct {
		name   string
		center Vec2
		want   Vec2
	}{
		{"behind start", V(-20, 10), V(0, 0)},
		{"past end", V(130, -5), V(100, 0)},
		{"beside segment", V(40, 25), V(40, 0)},
		{"on segment", V(75, 0), V(75, 0)},
	}
	for _, c := range cases {
		if got := ClosestPointOfLineToCircle(start, disp, c.center); !nearVec(got, c.want) {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestClosestPointOfLineToCircle_ZeroSegment(t *testing.T) {
	if got := ClosestPointOfLineToCircle(V(5, 5), Vec2{}, V(50, 50)); got != V(5, 5) {
		t.Fatalf("got %v, want start", got)
	}
}

func TestDistanceLineCircle(t *testing.T) {
	d := DistanceLineCircle(V(0, 0), V(0, 100), V(12, 50))
	if !nearVec(d, V(12, 0)) {
		t.Fatalf("got %v, want (12,0)", d)
	}
	if !segmentHitsCircle(V(0, 0), V(0, 100), V(12, 50), ActorRadius) {
		t.Fatal("12 units off a 16-radius circle should hit")
	}
	if segmentHitsCircle(V(0, 0), V(0, 100), V(17, 50), ActorRadius) {
		t.Fatal("17 units off should miss")
	}
}
