package sim

import (
	"math"
	"math/rand"
)

// --- Simulation constants ---

const (
	// DefaultDt is the fixed timestep the driver ticks with.
	DefaultDt = 1.0 / 60

	KnifeReach       = 28.0
	KnifeArc         = math.Pi / 4 // half-angle either side of the aim
	KnifeDamage      = 55.0
	KnifePenetration = 0.5
	KnifeCooldown    = 0.5 // seconds between swings

	PickupRadius = 24.0 // interact range for dropped weapons
	IntelRadius  = 20.0 // touch range for intel

	stuckTime = 0.5 // seconds a wandering enemy may push into a wall
)

// Input is the player's intent for one tick, produced by the input layer.
type Input struct {
	Move        Vec2    // axis values in [-1, 1]
	Aim         float64 // radians
	Fire        bool    // trigger held
	Reload      bool
	Switch      Slot // SlotNone for no request
	QuickSwitch bool
	Throw       bool
	Drop        bool
	Interact    bool // pick up the nearest dropped weapon
}

// Pickup is a weapon lying in the world.
type Pickup struct {
	Pos    Vec2
	Weapon WeaponInstance
}

// Intel is a collectible level objective.
type Intel struct {
	Pos Vec2
}

// Sim is one simulation session: the grid, every entity, and the events
// raised since the last drain. It is driven by Tick and never performs I/O.
type Sim struct {
	Grid     *Grid
	Weapons  *Registry
	Player   Player
	Enemies  []Enemy
	Bullets  []Bullet
	Grenades []Grenade
	Pickups  []Pickup
	Intel    []Intel

	// Reaction decides how passive enemies respond to damage.
	// nil uses DefaultReaction.
	Reaction ReactionPolicy

	events        Events
	rng           *rand.Rand
	tick          int
	triggerHeld   bool
	playerMourned bool
	intelTaken    int
	enemyMoves    []Vec2    // desired velocity per enemy this tick
	enemyStuck    []float64 // seconds each enemy has been blocked
}

// New creates a session on grid with the player at spawn.
func New(grid *Grid, reg *Registry, seed int64, spawn Vec2) *Sim {
	return &Sim{
		Grid:    grid,
		Weapons: reg,
		Player:  Player{Actor: NewActor(spawn, 0)},
		rng:     rand.New(rand.NewSource(seed)), // #nosec G404 -- game only
	}
}

// AddEnemy spawns an idle enemy carrying the given weapons and returns its
// index. The last weapon given ends up drawn.
func (s *Sim) AddEnemy(pos Vec2, rot float64, weapons ...WeaponID) int {
	e := NewEnemy(pos, rot)
	for _, id := range weapons {
		e.Give(s.Weapons, id)
	}
	s.Enemies = append(s.Enemies, e)
	return len(s.Enemies) - 1
}

// AddIntel places a collectible.
func (s *Sim) AddIntel(pos Vec2) {
	s.Intel = append(s.Intel, Intel{Pos: pos})
}

// AddPickup drops a weapon instance into the world.
func (s *Sim) AddPickup(pos Vec2, wi WeaponInstance) {
	s.Pickups = append(s.Pickups, Pickup{Pos: pos, Weapon: wi})
}

// TickCount returns how many ticks have run.
func (s *Sim) TickCount() int { return s.tick }

// Events returns the events raised since the last drain.
func (s *Sim) Events() []Event { return s.events.List() }

// DrainEvents returns and clears the pending events.
func (s *Sim) DrainEvents() []Event { return s.events.Drain() }

// IntelRemaining returns how many intel items are still in the level.
func (s *Sim) IntelRemaining() int { return len(s.Intel) }

// IntelTaken returns how many intel items the player has collected.
func (s *Sim) IntelTaken() int { return s.intelTaken }

// Tick advances the session by dt in a fixed order: weapon timers, player
// intent, grenades, bullets, enemy perception and behaviour, movement,
// collection, then deaths and removals.
func (s *Sim) Tick(dt float64, in Input) {
	s.tick++

	// 1. TIMERS: recoil decay, cooldowns, reloads.
	s.updateWeapons(dt)

	// 2. INTENT: player actions spawn this tick's projectiles.
	var playerVel Vec2
	if !s.Player.Health.IsDead() {
		playerVel = s.applyInput(in)
	}

	// 3. PROJECTILES: grenades, then bullets, against grid and actors.
	s.updateGrenades(dt)
	s.updateBullets(dt)

	// 4. AI: perception drives the behaviour state machine.
	s.updateEnemies(dt)

	// 5. MOVEMENT: resolve every actor against the grid.
	s.moveActors(dt, playerVel)

	// 6. COLLECT: intel touched this tick.
	s.collectIntel()

	// 7. SWEEP: deaths and removals.
	s.sweepDead()
}

// updateWeapons ticks every carried instance and knife cooldown.
func (s *Sim) updateWeapons(dt float64) {
	tickActor := func(a *Actor, ref ActorRef) {
		a.knifeCooldown = math.Max(0, a.knifeCooldown-dt)
		for _, wi := range a.Slots.Instances() {
			if wi.Update(dt) {
				s.events.emit(Event{Kind: EventWeaponReady, Pos: a.Pos, Weapon: wi.Weapon, Actor: ref})
			}
		}
	}
	if !s.Player.Health.IsDead() {
		tickActor(&s.Player.Actor, ActorRef{Kind: ActorPlayer})
	}
	for i := range s.Enemies {
		if s.Enemies[i].Health.IsDead() {
			continue
		}
		tickActor(&s.Enemies[i].Actor, ActorRef{Kind: ActorEnemy, Index: i})
	}
}

// applyInput performs the player's requested actions and returns the
// desired velocity.
func (s *Sim) applyInput(in Input) Vec2 {
	p := &s.Player
	ref := ActorRef{Kind: ActorPlayer}
	p.Rot = in.Aim

	if in.Switch != SlotNone && p.Slots.Switch(in.Switch) {
		s.events.emit(Event{Kind: EventSwitch, Pos: p.Pos, Weapon: NoWeapon, Actor: ref})
	} else if in.QuickSwitch && p.Slots.QuickSwitch() {
		s.events.emit(Event{Kind: EventSwitch, Pos: p.Pos, Weapon: NoWeapon, Actor: ref})
	}

	if in.Reload {
		s.reload(&p.Actor, ref)
	}

	pressed := in.Fire && !s.triggerHeld
	s.triggerHeld = in.Fire
	if wi := p.Slots.ActiveWeapon(); wi != nil {
		w := s.Weapons.Get(wi.Weapon)
		if in.Fire && (w.Mode.IsAuto() || pressed) {
			s.fire(&p.Actor, ref, in.Aim)
		}
	} else if pressed {
		s.stab(&p.Actor, ref, in.Aim)
	}

	if in.Throw && p.Slots.Grenades > 0 {
		p.Slots.Grenades--
		s.events.emit(Event{Kind: EventThrow, Pos: p.Pos, Weapon: NoWeapon, Actor: ref})
		s.throw(p.Pos, in.Aim, ref)
	}

	if in.Drop {
		if wi, ok := p.Slots.TakeActive(); ok {
			s.AddPickup(p.Pos, wi)
			s.events.emit(Event{Kind: EventDrop, Pos: p.Pos, Weapon: wi.Weapon, Actor: ref})
		}
	}

	if in.Interact {
		s.pickUp(p)
	}

	move := in.Move
	if l := move.Len(); l > 1 {
		move = move.Scale(1 / l)
	}
	return move.Scale(PlayerSpeed)
}

// pickUp takes the nearest pickup in range, dropping anything it displaces.
func (s *Sim) pickUp(p *Player) {
	best := -1
	bestDist := PickupRadius
	for i := range s.Pickups {
		if d := s.Pickups[i].Pos.Dist(p.Pos); d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return
	}
	taken := s.Pickups[best]
	s.Pickups = sweep(s.Pickups, []int{best})

	ref := ActorRef{Kind: ActorPlayer}
	w := s.Weapons.Get(taken.Weapon.Weapon)
	if old, dropped := p.Slots.AddWeapon(taken.Weapon, w.Affinity); dropped {
		s.AddPickup(p.Pos, old)
		s.events.emit(Event{Kind: EventDrop, Pos: p.Pos, Weapon: old.Weapon, Actor: ref})
	}
	s.events.emit(Event{Kind: EventPickup, Pos: p.Pos, Weapon: taken.Weapon.Weapon, Actor: ref})
}

// fire pulls the trigger of the actor's drawn weapon.
func (s *Sim) fire(a *Actor, ref ActorRef, aim float64) TriggerResult {
	wi := a.Slots.ActiveWeapon()
	if wi == nil {
		return TriggerBlocked
	}
	w := s.Weapons.Get(wi.Weapon)
	shot, res := wi.Shoot(w)
	switch res {
	case TriggerFired:
		s.events.emit(Event{Kind: EventShot, Pos: a.Pos, Weapon: wi.Weapon, Actor: ref})
		for _, b := range shot.Bullets(a.Pos, aim, w, ref) {
			// A muzzle pressed against a wall spends the round on it.
			if muzzle := s.Grid.RayCast(a.Pos, b.Pos.Sub(a.Pos), true); muzzle.Kind != RayFull {
				s.events.emit(Event{Kind: EventWallImpact, Pos: muzzle.Hit, Normal: muzzle.ToWall, Weapon: wi.Weapon, Actor: ref})
				continue
			}
			s.Bullets = append(s.Bullets, b)
		}
	case TriggerClick:
		s.events.emit(Event{Kind: EventClick, Pos: a.Pos, Weapon: wi.Weapon, Actor: ref})
	}
	return res
}

// throw releases a grenade. One released against a wall bounces off it
// before its first flight tick.
func (s *Sim) throw(from Vec2, aim float64, ref ActorRef) {
	g := NewGrenade(from, aim, ref)
	res := s.Grid.RayCast(from, g.Pos.Sub(from), true)
	if res.Kind != RayFull {
		g.Pos = res.Hit.Sub(FromAngle(aim).Scale(GrenadeRadius))
		if s.Grid.SolidAt(g.Pos) {
			g.Pos = from
		}
		g.Vel = g.Vel.Scale(-1)
		s.events.emit(Event{Kind: EventGrenadeBounce, Pos: res.Hit, Weapon: NoWeapon, Actor: ref})
	}
	s.Grenades = append(s.Grenades, g)
}

// reload starts a reload of the drawn weapon if it needs and has ammo.
func (s *Sim) reload(a *Actor, ref ActorRef) bool {
	wi := a.Slots.ActiveWeapon()
	if wi == nil {
		return false
	}
	if !wi.Reload(s.Weapons.Get(wi.Weapon)) {
		return false
	}
	s.events.emit(Event{Kind: EventReload, Pos: a.Pos, Weapon: wi.Weapon, Actor: ref})
	return true
}

// stab swings the knife at the first opponent in reach and arc.
func (s *Sim) stab(a *Actor, ref ActorRef, aim float64) {
	if a.knifeCooldown > 0 {
		return
	}
	a.knifeCooldown = KnifeCooldown
	s.events.emit(Event{Kind: EventShot, Pos: a.Pos, Weapon: NoWeapon, Actor: ref})

	inArc := func(target Vec2) bool {
		to := target.Sub(a.Pos)
		if to.Len() > KnifeReach+ActorRadius {
			return false
		}
		if math.Abs(normalizeAngle(to.Angle()-aim)) > KnifeArc {
			return false
		}
		return s.Grid.LineOfSight(a.Pos, target)
	}

	if ref.Kind == ActorEnemy {
		if !s.Player.Health.IsDead() && inArc(s.Player.Pos) {
			s.Player.Health.WeaponDamage(KnifeDamage, KnifePenetration)
			s.events.emit(Event{Kind: EventHit, Pos: s.Player.Pos, Weapon: NoWeapon, Actor: ActorRef{Kind: ActorPlayer}})
		}
		return
	}
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if e.Health.IsDead() || !inArc(e.Pos) {
			continue
		}
		e.Health.WeaponDamage(KnifeDamage, KnifePenetration)
		s.events.emit(Event{Kind: EventHit, Pos: e.Pos, Weapon: NoWeapon, Actor: ActorRef{Kind: ActorEnemy, Index: i}})
		alert(e, HitSource{Kind: SourceKnife, Origin: a.Pos}, s.Grid, s.Reaction)
		return
	}
}

// updateGrenades advances every grenade and resolves explosions.
func (s *Sim) updateGrenades(dt float64) {
	var gone []int
	for i := range s.Grenades {
		g := &s.Grenades[i]
		switch g.Update(dt, s.Grid, &s.Player, s.Enemies) {
		case GrenadeBounced:
			s.events.emit(Event{Kind: EventGrenadeBounce, Pos: g.Pos, Weapon: NoWeapon, Actor: g.Owner})
		case GrenadeExploded:
			s.explode(g)
			gone = append(gone, i)
		}
	}
	s.Grenades = sweep(s.Grenades, gone)
}

// explode damages every living actor inside the blast radius.
func (s *Sim) explode(g *Grenade) {
	s.events.emit(Event{Kind: EventExplosion, Pos: g.Pos, Weapon: NoWeapon, Actor: g.Owner})
	if !s.Player.Health.IsDead() && s.Player.Pos.Dist(g.Pos) <= GrenadeBlastRadius {
		s.Player.Health.WeaponDamage(GrenadeDamage, GrenadePenetration)
		s.events.emit(Event{Kind: EventHit, Pos: s.Player.Pos, Weapon: NoWeapon, Actor: ActorRef{Kind: ActorPlayer}})
	}
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if e.Health.IsDead() || e.Pos.Dist(g.Pos) > GrenadeBlastRadius {
			continue
		}
		e.Health.WeaponDamage(GrenadeDamage, GrenadePenetration)
		s.events.emit(Event{Kind: EventHit, Pos: e.Pos, Weapon: NoWeapon, Actor: ActorRef{Kind: ActorEnemy, Index: i}})
		alert(e, HitSource{Kind: SourceGrenade, Origin: g.Pos}, s.Grid, s.Reaction)
	}
}

// updateBullets advances every bullet; any hit removes it.
func (s *Sim) updateBullets(dt float64) {
	var gone []int
	for i := range s.Bullets {
		b := &s.Bullets[i]
		from := b.Pos
		hit := b.Update(dt, s.Weapons.Get(b.Weapon), s.Grid, &s.Player, s.Enemies)
		switch hit.Kind {
		case HitNone:
			continue
		case HitPlayer:
			s.events.emit(Event{Kind: EventHit, Pos: b.Pos, Weapon: b.Weapon, Actor: ActorRef{Kind: ActorPlayer}})
		case HitEnemy:
			s.events.emit(Event{Kind: EventHit, Pos: b.Pos, Weapon: b.Weapon, Actor: ActorRef{Kind: ActorEnemy, Index: hit.Enemy}})
			alert(&s.Enemies[hit.Enemy], HitSource{Kind: SourceBullet, Origin: from}, s.Grid, s.Reaction)
		case HitWall:
			s.events.emit(Event{Kind: EventWallImpact, Pos: b.Pos, Normal: hit.Normal, Weapon: b.Weapon, Actor: b.Owner})
		}
		gone = append(gone, i)
	}
	s.Bullets = sweep(s.Bullets, gone)
}

// updateEnemies runs perception, attacks and the behaviour state machine,
// leaving each enemy's desired velocity in enemyMoves.
func (s *Sim) updateEnemies(dt float64) {
	s.enemyMoves = resize(s.enemyMoves, len(s.Enemies))
	s.enemyStuck = resize(s.enemyStuck, len(s.Enemies))
	for i := range s.Enemies {
		e := &s.Enemies[i]
		s.enemyMoves[i] = Vec2{}
		if e.Health.IsDead() {
			continue
		}
		ref := ActorRef{Kind: ActorEnemy, Index: i}
		if s.perceive(e) {
			aim := s.leadAngle(e)
			e.Rot = aim
			if s.attack(e, ref, aim) {
				// Armed and in sight: hold and shoot.
				continue
			}
		}
		s.enemyMoves[i] = s.think(e, dt)
	}
}

// perceive ray-casts to the player; a clear line sets LastKnown.
func (s *Sim) perceive(e *Enemy) bool {
	if s.Player.Health.IsDead() {
		return false
	}
	res := s.Grid.RayCast(e.Pos, s.Player.Pos.Sub(e.Pos), true)
	if res.Kind != RayFull {
		return false
	}
	if _, chasing := e.Behavior.(LastKnown); !chasing {
		e.setBehavior(LastKnown{})
	}
	e.Behavior = LastKnown{Pos: s.Player.Pos, Vel: s.Player.Vel}
	return true
}

// leadAngle aims where the player will be when a bullet arrives.
func (s *Sim) leadAngle(e *Enemy) float64 {
	target := s.Player.Pos
	if wi := e.Slots.ActiveWeapon(); wi != nil {
		w := s.Weapons.Get(wi.Weapon)
		flight := target.Dist(e.Pos) / w.BulletSpeed
		target = target.Add(s.Player.Vel.Scale(flight))
	}
	return target.Sub(e.Pos).Angle()
}

// attack makes a sighted enemy use its drawn weapon. It returns true when the
// enemy should stand still to shoot; knife-only enemies close in instead.
func (s *Sim) attack(e *Enemy, ref ActorRef, aim float64) bool {
	wi := e.Slots.ActiveWeapon()
	if wi == nil {
		if e.Pos.Dist(s.Player.Pos) <= KnifeReach+ActorRadius {
			s.stab(&e.Actor, ref, aim)
		}
		return false
	}
	if wi.CurClip == 0 {
		if wi.Ammo > 0 {
			s.reload(&e.Actor, ref)
			return true
		}
		// Dry: draw whatever else is carried, the knife last.
		for sl := SlotSling; sl >= SlotKnife; sl-- {
			if sl != e.Slots.Active && e.Slots.Switch(sl) {
				s.events.emit(Event{Kind: EventSwitch, Pos: e.Pos, Weapon: NoWeapon, Actor: ref})
				break
			}
		}
		return true
	}
	s.fire(&e.Actor, ref, aim)
	return true
}

// moveActors applies desired velocities, sliding actors along walls.
func (s *Sim) moveActors(dt float64, playerVel Vec2) {
	if !s.Player.Health.IsDead() {
		old := s.Player.Pos
		s.Player.Pos = s.resolveMove(old, playerVel.Scale(dt))
		s.Player.Vel = s.Player.Pos.Sub(old).Scale(1 / dt)
	} else {
		s.Player.Vel = Vec2{}
	}

	for i := range s.Enemies {
		e := &s.Enemies[i]
		want := s.enemyMoves[i]
		if e.Health.IsDead() || want.IsZero() {
			s.enemyStuck[i] = 0
			continue
		}
		old := e.Pos
		e.Pos = s.resolveMove(old, want.Scale(dt))
		if e.Pos.Dist(old) < 0.25*want.Len()*dt {
			s.enemyStuck[i] += dt
		} else {
			s.enemyStuck[i] = 0
		}
		if s.enemyStuck[i] >= stuckTime {
			// Blocked: abandon the leg and let the state machine pick again.
			s.enemyStuck[i] = 0
			e.wander = nil
			if _, routed := e.Behavior.(PathThenWander); routed {
				e.setBehavior(Wander{})
			}
		}
	}
}

// resolveMove moves a circle of ActorRadius by disp and pushes it back out of
// any solid tile it overlaps.
func (s *Sim) resolveMove(pos, disp Vec2) Vec2 {
	p := pos.Add(disp)
	for iter := 0; iter < 4; iter++ {
		pushed := false
		x0 := int(math.Floor((p.X - ActorRadius) / TileSize))
		x1 := int(math.Floor((p.X + ActorRadius) / TileSize))
		y0 := int(math.Floor((p.Y - ActorRadius) / TileSize))
		y1 := int(math.Floor((p.Y + ActorRadius) / TileSize))
		for ty := y0; ty <= y1; ty++ {
			for tx := x0; tx <= x1; tx++ {
				if !s.Grid.IsSolid(tx, ty) {
					continue
				}
				c := closestPointOnTile(p, tx, ty)
				d := p.Sub(c)
				dist := d.Len()
				if dist >= ActorRadius {
					continue
				}
				if dist < 1e-9 {
					// Centre ended inside the tile: refuse the move.
					return pos
				}
				p = c.Add(d.Scale(ActorRadius / dist))
				pushed = true
			}
		}
		if !pushed {
			return p
		}
	}
	return p
}

// collectIntel picks up every intel the player touches. All touched items
// are marked first and removed together.
func (s *Sim) collectIntel() {
	if s.Player.Health.IsDead() || len(s.Intel) == 0 {
		return
	}
	var taken []int
	for i := range s.Intel {
		if s.Intel[i].Pos.Dist(s.Player.Pos) <= IntelRadius+ActorRadius {
			taken = append(taken, i)
			s.events.emit(Event{Kind: EventIntel, Pos: s.Intel[i].Pos, Weapon: NoWeapon, Actor: ActorRef{Kind: ActorPlayer}})
		}
	}
	if len(taken) == 0 {
		return
	}
	s.Intel = sweep(s.Intel, taken)
	s.intelTaken += len(taken)
	if len(s.Intel) == 0 {
		s.events.emit(Event{Kind: EventLevelComplete, Pos: s.Player.Pos, Weapon: NoWeapon, Actor: ActorRef{Kind: ActorPlayer}})
	}
}

// sweepDead reports deaths, drops dead enemies' weapons and removes them.
func (s *Sim) sweepDead() {
	if s.Player.Health.IsDead() && !s.playerMourned {
		s.playerMourned = true
		s.events.emit(Event{Kind: EventDeath, Pos: s.Player.Pos, Weapon: NoWeapon, Actor: ActorRef{Kind: ActorPlayer}})
	}

	var dead []int
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if !e.Health.IsDead() {
			continue
		}
		s.events.emit(Event{Kind: EventDeath, Pos: e.Pos, Weapon: NoWeapon, Actor: ActorRef{Kind: ActorEnemy, Index: i}})
		if wi, ok := e.Slots.TakeActive(); ok {
			s.AddPickup(e.Pos, wi)
		}
		dead = append(dead, i)
	}
	s.Enemies = sweep(s.Enemies, dead)
	s.enemyMoves = sweep(s.enemyMoves, dead)
	s.enemyStuck = sweep(s.enemyStuck, dead)
}

// sweep removes the marked indices (ascending) in a single pass after the
// caller's scan has finished.
func sweep[T any](items []T, marked []int) []T {
	if len(marked) == 0 {
		return items
	}
	kept := items[:0]
	m := 0
	for i := range items {
		if m < len(marked) && marked[m] == i {
			m++
			continue
		}
		kept = append(kept, items[i])
	}
	clear(items[len(kept):])
	return kept
}

// resize returns s with length n, reusing its storage.
func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
