package sim

import "math"

// RayKind classifies how a ray march ended.
type RayKind int

const (
	RayFull    RayKind = iota // reached the destination unobstructed
	RayHalf                   // stopped against a solid tile
	RayOffEdge                // would have left the grid
)

func (k RayKind) String() string {
	switch k {
	case RayFull:
		return "full"
	case RayHalf:
		return "half"
	case RayOffEdge:
		return "off_edge"
	default:
		return "unknown"
	}
}

// RayCastResult describes where a ray march stopped.
type RayCastResult struct {
	Kind RayKind
	// ToWall is the signed unit tile step taken into the wall (Half only).
	// Both components are set when the ray crossed a tile corner.
	ToWall [2]int
	// Hit is where the ray stopped: the destination for Full, the tile
	// boundary otherwise.
	Hit Vec2
	// Remaining is the part of the displacement not travelled.
	Remaining Vec2
}

// Direction is the sign of one ray component.
type Direction int8

const (
	Negative Direction = -1
	Zero     Direction = 0
	Positive Direction = 1
)

func directionOf(v float64) Direction {
	switch {
	case v > 0:
		return Positive
	case v < 0:
		return Negative
	default:
		return Zero
	}
}

// next returns the tile index one step along d.
func (d Direction) next(tile int) int {
	return tile + int(d)
}

// boundary returns the world coordinate of the tile edge a ray heading in
// direction d crosses next: the far edge going positive, the near corner
// going negative.
func (d Direction) boundary(tile int) float64 {
	if d == Positive {
		return float64(tile+1) * TileSize
	}
	return float64(tile) * TileSize
}

// RayCast marches from origin along disp tile by tile (grid DDA). In finite
// mode the march ends with RayFull once disp has been fully travelled;
// otherwise it continues until it meets a wall or the grid edge.
func (g *Grid) RayCast(origin, disp Vec2, finite bool) RayCastResult {
	dx, dy := directionOf(disp.X), directionOf(disp.Y)
	if dx == Zero && dy == Zero {
		return RayCastResult{Kind: RayFull, Hit: origin}
	}

	tx, ty := SnapPoint(origin)
	if !g.inBounds(tx, ty) {
		return RayCastResult{Kind: RayOffEdge, Hit: origin, Remaining: disp}
	}

	for {
		timeX, timeY := math.Inf(1), math.Inf(1)
		if dx != Zero {
			timeX = (dx.boundary(tx) - origin.X) / disp.X
		}
		if dy != Zero {
			timeY = (dy.boundary(ty) - origin.Y) / disp.Y
		}
		t := math.Min(timeX, timeY)
		if finite && t >= 1 {
			return RayCastResult{Kind: RayFull, Hit: origin.Add(disp)}
		}

		var step [2]int
		switch {
		case timeX < timeY:
			tx = dx.next(tx)
			step = [2]int{int(dx), 0}
		case timeY < timeX:
			ty = dy.next(ty)
			step = [2]int{0, int(dy)}
		default:
			tx = dx.next(tx)
			ty = dy.next(ty)
			step = [2]int{int(dx), int(dy)}
		}

		hit := origin.Add(disp.Scale(t))
		rem := disp.Scale(math.Max(0, 1-t))
		if !g.inBounds(tx, ty) {
			return RayCastResult{Kind: RayOffEdge, ToWall: step, Hit: hit, Remaining: rem}
		}
		if g.materials[ty*g.width+tx].Solid() {
			return RayCastResult{Kind: RayHalf, ToWall: step, Hit: hit, Remaining: rem}
		}
	}
}

// LineOfSight reports whether the straight segment a→b crosses no solid tile.
func (g *Grid) LineOfSight(a, b Vec2) bool {
	return g.RayCast(a, b.Sub(a), true).Kind == RayFull
}
