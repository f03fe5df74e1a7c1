package sim

import (
	"fmt"
	"math"
)

// --- Behaviour constants ---

const (
	WanderDistance = 5 * TileSize // longest wander leg
	FleeDistance   = 4 * TileSize // how far a grenade scares an enemy
	ArriveRadius   = 4.0          // close enough to a waypoint
	LookAroundTime = 1.5          // seconds spent turning toward a hit
	EnemyTurnRate  = 5.0          // radians per second
	wanderPauseMin = 0.4          // seconds idling between wander legs
	wanderPauseMax = 1.6
)

// Behavior is an enemy's perception-driven control mode. The set is closed:
// Wander, LastKnown, LookAround and PathThenWander.
type Behavior interface {
	isBehavior()
	String() string
}

// Wander roams toward random reachable points.
type Wander struct{}

// LastKnown chases where the player was last seen, with the velocity the
// player had then.
type LastKnown struct {
	Pos Vec2
	Vel Vec2
}

// LookAround turns toward a recent damage source without chasing.
type LookAround struct {
	Dir float64 // radians
}

// PathThenWander walks the waypoints in order, then wanders.
type PathThenWander struct {
	Path []Vec2
}

func (Wander) isBehavior()         {}
func (LastKnown) isBehavior()      {}
func (LookAround) isBehavior()     {}
func (PathThenWander) isBehavior() {}

func (Wander) String() string { return "wander" }

func (b LastKnown) String() string {
	return fmt.Sprintf("last_known(%.0f,%.0f)", b.Pos.X, b.Pos.Y)
}

func (b LookAround) String() string {
	return fmt.Sprintf("look_around(%.2f)", b.Dir)
}

func (b PathThenWander) String() string {
	return fmt.Sprintf("path_then_wander(%d)", len(b.Path))
}

// HitSourceKind is what damaged an enemy.
type HitSourceKind int

const (
	SourceBullet HitSourceKind = iota
	SourceGrenade
	SourceKnife
)

// HitSource describes incoming damage for the reaction policy.
type HitSource struct {
	Kind HitSourceKind
	// Origin is where the damage came from: the shooter side of a bullet's
	// path, the grenade's position, or the attacker.
	Origin Vec2
}

// ReactionPolicy picks the behaviour a passive enemy switches to when hit.
// Returning nil keeps the current behaviour. It is never consulted while the
// enemy is chasing (LastKnown).
type ReactionPolicy func(e *Enemy, src HitSource, grid *Grid) Behavior

// DefaultReaction turns toward bullets and knives and runs from grenades.
func DefaultReaction(e *Enemy, src HitSource, grid *Grid) Behavior {
	switch src.Kind {
	case SourceGrenade:
		away := e.Pos.Sub(src.Origin).Norm()
		if away.IsZero() {
			away = FromAngle(e.Rot + math.Pi)
		}
		return PathThenWander{Path: []Vec2{reachable(grid, e.Pos, away.Scale(FleeDistance))}}
	default:
		return LookAround{Dir: src.Origin.Sub(e.Pos).Angle()}
	}
}

// reachable returns the furthest point along disp an actor can stand on.
func reachable(grid *Grid, from, disp Vec2) Vec2 {
	res := grid.RayCast(from, disp, true)
	if res.Kind == RayFull {
		return res.Hit
	}
	// Stop one radius short of the wall along the ray.
	travelled := res.Hit.Sub(from)
	l := travelled.Len()
	if l <= ActorRadius {
		return from
	}
	return from.Add(travelled.Scale((l - ActorRadius) / l))
}

// alert applies the reaction policy to a hit enemy that is not chasing.
func alert(e *Enemy, src HitSource, grid *Grid, policy ReactionPolicy) {
	if _, chasing := e.Behavior.(LastKnown); chasing {
		return
	}
	if policy == nil {
		policy = DefaultReaction
	}
	if b := policy(e, src, grid); b != nil {
		e.setBehavior(b)
	}
}

func (e *Enemy) setBehavior(b Behavior) {
	e.Behavior = b
	e.wander = nil
	e.lookTime = 0
}

// steer returns the velocity that moves the enemy toward target this tick
// and turns it to face the direction of travel.
func (e *Enemy) steer(target Vec2, dt float64) Vec2 {
	to := target.Sub(e.Pos)
	d := to.Len()
	if d <= ArriveRadius {
		return Vec2{}
	}
	e.Rot = turnToward(e.Rot, to.Angle(), EnemyTurnRate*dt)
	speed := EnemySpeed
	if d < speed*dt {
		speed = d / dt
	}
	return to.Scale(speed / d)
}

// think advances the behaviour state machine for one tick and returns the
// desired velocity. Perception has already run.
func (s *Sim) think(e *Enemy, dt float64) Vec2 {
	switch b := e.Behavior.(type) {
	case Wander:
		return s.wander(e, dt)

	case LastKnown:
		if e.Pos.Dist(b.Pos) <= ArriveRadius {
			// Lost them; drift along their last heading before giving up.
			if !b.Vel.IsZero() {
				ahead := reachable(s.Grid, e.Pos, b.Vel.Norm().Scale(2*TileSize))
				e.setBehavior(PathThenWander{Path: []Vec2{ahead}})
			} else {
				e.setBehavior(LookAround{Dir: e.Rot})
			}
			return Vec2{}
		}
		return e.steer(b.Pos, dt)

	case LookAround:
		e.Rot = turnToward(e.Rot, b.Dir, EnemyTurnRate*dt)
		e.lookTime += dt
		if e.lookTime >= LookAroundTime {
			e.setBehavior(Wander{})
		}
		return Vec2{}

	case PathThenWander:
		if len(b.Path) == 0 {
			e.setBehavior(Wander{})
			return Vec2{}
		}
		if e.Pos.Dist(b.Path[0]) <= ArriveRadius {
			e.Behavior = PathThenWander{Path: b.Path[1:]}
			return Vec2{}
		}
		return e.steer(b.Path[0], dt)

	default:
		panic(fmt.Sprintf("sim: unhandled behaviour %T", b))
	}
}

// wander walks to a random reachable point, pauses, and picks another.
func (s *Sim) wander(e *Enemy, dt float64) Vec2 {
	if e.holdTime > 0 {
		e.holdTime -= dt
		return Vec2{}
	}
	if e.wander == nil {
		angle := s.rng.Float64() * 2 * math.Pi
		dist := s.rng.Float64() * WanderDistance
		target := reachable(s.Grid, e.Pos, FromAngle(angle).Scale(dist))
		e.wander = &target
	}
	v := e.steer(*e.wander, dt)
	if v.IsZero() {
		e.wander = nil
		e.holdTime = wanderPauseMin + s.rng.Float64()*(wanderPauseMax-wanderPauseMin)
	}
	return v
}
