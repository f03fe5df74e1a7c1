package sim

import "math"

// Vec2 is a point or displacement in world units (one tile = 32 units).
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Y * k} }
func (a Vec2) Dot(b Vec2) float64 { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Len() float64 { return math.Hypot(a.X, a.Y) }
func (a Vec2) LenSq() float64 { return a.X*a.X + a.Y*a.Y }
func (a Vec2) Angle() float64 { return math.Atan2(a.Y, a.X) }
func (a Vec2) IsZero() bool { return a.X == 0 && a.Y == 0 }
func (a Vec2) Dist(b Vec2) float64 { return a.Sub(b).Len() }

// Norm returns the unit vector in a's direction, or the zero vector.
func (a Vec2) Norm() Vec2 {
	l := a.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Rotate returns a rotated by r radians.
func (a Vec2) Rotate(r float64) Vec2 {
	s, c := math.Sincos(r)
	return Vec2{a.X*c - a.Y*s, a.X*s + a.Y*c}
}

// FromAngle returns the unit vector pointing at angle r (0 = +x, pi/2 = +y).
func FromAngle(r float64) Vec2 {
	s, c := math.Sincos(r)
	return Vec2{c, s}
}

// Object is the positional primitive shared by every physical entity.
type Object struct {
	Pos Vec2
	Rot float64 // radians
}

// normalizeAngle wraps an angle to [-pi, pi]. Non-finite angles map to 0.
func normalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	return math.Remainder(a, 2*math.Pi)
}

// turnToward rotates from toward target by at most rate radians.
func turnToward(from, target, rate float64) float64 {
	diff := normalizeAngle(target - from)
	if math.Abs(diff) <= rate {
		return target
	}
	if diff > 0 {
		return normalizeAngle(from + rate)
	}
	return normalizeAngle(from - rate)
}
