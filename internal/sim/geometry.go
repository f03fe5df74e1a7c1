package sim

// ActorRadius is the collision radius of players and enemies.
const ActorRadius = 16.0

// ClosestPointOfLineToCircle projects center onto the segment
// [start, start+disp], clamped to the segment ends.
func ClosestPointOfLineToCircle(start, disp, center Vec2) Vec2 {
	length := disp.Len()
	if length < 1e-12 {
		return start
	}
	dir := disp.Scale(1 / length)
	along := center.Sub(start).Dot(dir)
	switch {
	case along <= 0:
		return start
	case along >= length:
		return start.Add(disp)
	default:
		return start.Add(dir.Scale(along))
	}
}

// DistanceLineCircle returns the vector from the closest point of the
// segment to center.
func DistanceLineCircle(start, disp, center Vec2) Vec2 {
	return center.Sub(ClosestPointOfLineToCircle(start, disp, center))
}

// segmentHitsCircle reports whether the segment passes within radius of center.
func segmentHitsCircle(start, disp, center Vec2, radius float64) bool {
	return DistanceLineCircle(start, disp, center).LenSq() < radius*radius
}

// closestPointOnTile clamps p into the square of tile (tx, ty).
func closestPointOnTile(p Vec2, tx, ty int) Vec2 {
	minX, minY := float64(tx*TileSize), float64(ty*TileSize)
	return Vec2{
		X: clamp(p.X, minX, minX+TileSize),
		Y: clamp(p.Y, minY, minY+TileSize),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
