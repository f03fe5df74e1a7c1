package sim

// --- Projectile constants ---

const (
	MuzzleOffset = ActorRadius + 4 // bullets spawn just outside the shooter
	HoleRadius   = 2.0             // step used to back a bullet out of a wall

	GrenadeDrag        = 0.002 // quadratic air drag coefficient, 1/unit
	GrenadeFriction    = 260.0 // rolling friction, units/s^2
	GrenadeThrowSpeed  = 520.0 // units per second at release
	GrenadeBlastRadius = 96.0  // three tiles
	GrenadeDamage      = 120.0 // to every actor inside the radius
	GrenadePenetration = 0.5
	GrenadeRadius      = 4.0

	maxBackoffSteps = 64
)

// HitKind is what a projectile struck this tick.
type HitKind int

const (
	HitNone HitKind = iota
	HitPlayer
	HitEnemy
	HitWall
)

func (k HitKind) String() string {
	switch k {
	case HitNone:
		return "none"
	case HitPlayer:
		return "player"
	case HitEnemy:
		return "enemy"
	case HitWall:
		return "wall"
	default:
		return "unknown"
	}
}

// Hit is a projectile's outcome for one tick. Enemy indexes Sim.Enemies.
type Hit struct {
	Kind   HitKind
	Enemy  int
	Normal [2]int // wall only
}

// Bullet is a fast straight-line projectile, destroyed on any hit.
type Bullet struct {
	Object
	Vel    Vec2
	Weapon WeaponID
	Owner  ActorRef
}

// NewBullet spawns a bullet leaving a shooter at origin facing aim.
func NewBullet(origin Vec2, aim float64, id WeaponID, w *Weapon, owner ActorRef) Bullet {
	dir := FromAngle(aim)
	return Bullet{
		Object: Object{Pos: origin.Add(dir.Scale(MuzzleOffset)), Rot: aim},
		Vel:    dir.Scale(w.BulletSpeed),
		Weapon: id,
		Owner:  owner,
	}
}

// Bullets turns a Shot into projectiles, one per jerk, around aim.
func (s Shot) Bullets(origin Vec2, aim float64, w *Weapon, owner ActorRef) []Bullet {
	out := make([]Bullet, 0, len(s.Jerks))
	for _, j := range s.Jerks {
		out = append(out, NewBullet(origin, aim+j, s.Weapon, w, owner))
	}
	return out
}

// Update moves the bullet one tick. Actors are tested first, player before
// enemies in slice order; the first circle hit wins and damages the victim.
// Otherwise the travel segment is ray-cast against the grid. On a wall the
// bullet is backed out of the solid tile and left at its impact point.
func (b *Bullet) Update(dt float64, w *Weapon, grid *Grid, player *Player, enemies []Enemy) Hit {
	disp := b.Vel.Scale(dt)

	if player != nil && !player.Health.IsDead() && segmentHitsCircle(b.Pos, disp, player.Pos, ActorRadius) {
		player.Health.WeaponDamage(w.Damage, w.Penetration)
		b.Pos = ClosestPointOfLineToCircle(b.Pos, disp, player.Pos)
		return Hit{Kind: HitPlayer}
	}
	for i := range enemies {
		e := &enemies[i]
		if e.Health.IsDead() {
			continue
		}
		if segmentHitsCircle(b.Pos, disp, e.Pos, ActorRadius) {
			e.Health.WeaponDamage(w.Damage, w.Penetration)
			b.Pos = ClosestPointOfLineToCircle(b.Pos, disp, e.Pos)
			return Hit{Kind: HitEnemy, Enemy: i}
		}
	}

	res := grid.RayCast(b.Pos, disp, true)
	if res.Kind != RayFull {
		speed := w.BulletSpeed
		if speed <= 0 {
			speed = disp.Len() / dt
		}
		back := disp.Scale(HoleRadius / (speed * dt))
		p := res.Hit
		for i := 0; i < maxBackoffSteps && grid.SolidAt(p); i++ {
			p = p.Sub(back)
		}
		b.Pos = p
		return Hit{Kind: HitWall, Normal: res.ToWall}
	}
	b.Pos = res.Hit
	return Hit{Kind: HitNone}
}

// Grenade is a thrown, drag-slowed projectile that bounces until it stops
// and then explodes.
type Grenade struct {
	Object
	Vel   Vec2
	Owner ActorRef
}

// NewGrenade throws a grenade from origin toward aim.
func NewGrenade(origin Vec2, aim float64, owner ActorRef) Grenade {
	dir := FromAngle(aim)
	return Grenade{
		Object: Object{Pos: origin.Add(dir.Scale(MuzzleOffset)), Rot: aim},
		Vel:    dir.Scale(GrenadeThrowSpeed),
		Owner:  owner,
	}
}

// GrenadeResult is a grenade's outcome for one tick.
type GrenadeResult int

const (
	GrenadeFlying GrenadeResult = iota
	GrenadeBounced
	GrenadeExploded
)

// Update integrates one tick. Position advances with the drag-only
// acceleration; the speed check also counts rolling friction, and when one
// tick of deceleration would exceed the remaining speed the grenade has
// stopped and explodes where it is. Otherwise actors are checked against the
// travel segment and bounce it without detonating; with no actor contact the
// grid decides, and a wall reverses the velocity.
func (g *Grenade) Update(dt float64, grid *Grid, player *Player, enemies []Enemy) GrenadeResult {
	v := g.Vel
	speed := v.Len()
	acc := v.Scale(-GrenadeDrag * speed)
	dv := acc.Scale(dt)
	if dv.Len()+GrenadeFriction*dt >= speed {
		g.Vel = Vec2{}
		return GrenadeExploded
	}
	disp := v.Scale(dt).Add(acc.Scale(0.5 * dt * dt))
	next := v.Add(dv).Sub(v.Norm().Scale(GrenadeFriction * dt))

	if player != nil && !player.Health.IsDead() && g.bounceOffActor(grid, disp, next, dt, player.Pos) {
		return GrenadeBounced
	}
	for i := range enemies {
		if enemies[i].Health.IsDead() {
			continue
		}
		if g.bounceOffActor(grid, disp, next, dt, enemies[i].Pos) {
			return GrenadeBounced
		}
	}

	res := grid.RayCast(g.Pos, disp, true)
	if res.Kind != RayFull {
		// Reversal, not a reflection about the wall normal.
		g.Vel = v.Scale(-1)
		if p := res.Hit.Sub(disp.Norm().Scale(GrenadeRadius)); !grid.SolidAt(p) {
			g.Pos = p
		}
		return GrenadeBounced
	}
	g.Pos = res.Hit
	g.Vel = next
	return GrenadeFlying
}

// bounceOffActor reflects the grenade off an actor whose circle the travel
// segment enters, then spends the rest of the tick moving away from it. It
// never comes to rest inside a solid tile.
func (g *Grenade) bounceOffActor(grid *Grid, disp, next Vec2, dt float64, center Vec2) bool {
	contact := ClosestPointOfLineToCircle(g.Pos, disp, center)
	rel := contact.Sub(center)
	if rel.LenSq() >= ActorRadius*ActorRadius {
		return false
	}
	n := rel.Norm()
	if n.IsZero() {
		n = disp.Norm().Scale(-1)
	}
	if along := next.Dot(n); along < 0 {
		next = next.Sub(n.Scale(2 * along))
	}
	travelled := 0.0
	if l := disp.Len(); l > 1e-12 {
		travelled = contact.Sub(g.Pos).Len() / l
	}
	remaining := 1 - clamp01(travelled)
	g.Vel = next
	switch p := contact.Add(next.Scale(dt * remaining)); {
	case !grid.SolidAt(p):
		g.Pos = p
	case !grid.SolidAt(contact):
		g.Pos = contact
	}
	return true
}
