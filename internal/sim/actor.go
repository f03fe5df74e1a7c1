package sim

const (
	PlayerSpeed     = 150.0 // units per second at full stick
	EnemySpeed      = 90.0
	DefaultGrenades = 2
)

// Slot names a weapon-carrying position.
type Slot int

const (
	SlotNone     Slot = iota // no slot: the zero value, so an empty Input requests nothing
	SlotKnife                // always available, never holds an instance
	SlotHolster1             // first holster
	SlotHolster2             // second holster
	SlotSling                // long gun on the back
	slotCount
)

// slotActive stands for whichever slot is active when an insert rule runs.
const slotActive Slot = -2

func (s Slot) String() string {
	switch s {
	case SlotKnife:
		return "knife"
	case SlotHolster1:
		return "holster1"
	case SlotHolster2:
		return "holster2"
	case SlotSling:
		return "sling"
	case SlotNone:
		return "none"
	default:
		return "unknown"
	}
}

func (s Slot) valid() bool { return s >= SlotKnife && s < slotCount }

// insertRule is one step of the pickup placement order.
type insertRule struct {
	slot  Slot // concrete slot or slotActive
	empty bool // only when the slot holds nothing
}

// insertPriority is the fixed placement order per affinity. The first rule
// whose slot accepts the affinity (and is empty, if required) wins.
var insertPriority = map[SlotAffinity][]insertRule{
	AffinityHolster: {
		{slot: SlotHolster1, empty: true},
		{slot: SlotHolster2, empty: true},
		{slot: slotActive},
		{slot: SlotHolster1},
	},
	AffinitySling: {
		{slot: SlotSling},
	},
}

// slotAccepts reports whether slot s can carry a weapon of affinity a.
func slotAccepts(s Slot, a SlotAffinity) bool {
	switch a {
	case AffinityHolster:
		return s == SlotHolster1 || s == SlotHolster2
	case AffinitySling:
		return s == SlotSling
	default:
		return false
	}
}

// WepSlots is what an actor carries: two holsters, a sling, the knife and
// grenades. Active always names the knife or an occupied slot.
type WepSlots struct {
	weapons    [slotCount]*WeaponInstance // SlotNone and SlotKnife entries stay nil
	Active     Slot
	LastActive Slot
	Grenades   int
}

// NewWepSlots returns empty slots with the knife drawn.
func NewWepSlots(grenades int) WepSlots {
	return WepSlots{Active: SlotKnife, LastActive: SlotKnife, Grenades: grenades}
}

// Get returns the instance in slot s, or nil.
func (ws *WepSlots) Get(s Slot) *WeaponInstance {
	if !s.valid() {
		return nil
	}
	return ws.weapons[s]
}

// Occupied reports whether s is the knife or holds a weapon.
func (ws *WepSlots) Occupied(s Slot) bool {
	if s == SlotKnife {
		return true
	}
	return s.valid() && ws.weapons[s] != nil
}

// ActiveWeapon returns the drawn instance, or nil for the knife.
func (ws *WepSlots) ActiveWeapon() *WeaponInstance {
	return ws.Get(ws.Active)
}

// Switch draws slot s. Empty slots are refused and nothing changes.
func (ws *WepSlots) Switch(s Slot) bool {
	if !ws.Occupied(s) || s == ws.Active {
		return false
	}
	ws.LastActive = ws.Active
	ws.Active = s
	return true
}

// QuickSwitch swaps back to the previously drawn slot.
func (ws *WepSlots) QuickSwitch() bool {
	return ws.Switch(ws.LastActive)
}

// TakeActive removes the drawn weapon and falls back to the next lower
// occupied slot, ending at the knife.
func (ws *WepSlots) TakeActive() (WeaponInstance, bool) {
	wi := ws.ActiveWeapon()
	if wi == nil {
		return WeaponInstance{}, false
	}
	out := *wi
	ws.weapons[ws.Active] = nil
	next := SlotKnife
	for s := ws.Active - 1; s > SlotKnife; s-- {
		if ws.weapons[s] != nil {
			next = s
			break
		}
	}
	ws.Active = next
	if !ws.Occupied(ws.LastActive) {
		ws.LastActive = SlotKnife
	}
	return out, true
}

// AddWeapon stores wi following insertPriority for its affinity and draws
// it. Whatever it displaced is returned so the caller can drop it.
func (ws *WepSlots) AddWeapon(wi WeaponInstance, affinity SlotAffinity) (displaced WeaponInstance, dropped bool) {
	target := ws.insertSlot(affinity)
	if target == SlotNone {
		return wi, true
	}
	if old := ws.weapons[target]; old != nil {
		displaced, dropped = *old, true
	}
	stored := wi
	ws.weapons[target] = &stored
	if target != ws.Active {
		ws.LastActive = ws.Active
		ws.Active = target
	}
	return displaced, dropped
}

// insertSlot resolves the placement table for an affinity.
func (ws *WepSlots) insertSlot(a SlotAffinity) Slot {
	for _, r := range insertPriority[a] {
		s := r.slot
		if s == slotActive {
			s = ws.Active
		}
		if !slotAccepts(s, a) {
			continue
		}
		if r.empty && ws.weapons[s] != nil {
			continue
		}
		return s
	}
	return SlotNone
}

// Instances returns every carried instance in slot order.
func (ws *WepSlots) Instances() []*WeaponInstance {
	out := make([]*WeaponInstance, 0, slotCount)
	for _, wi := range ws.weapons {
		if wi != nil {
			out = append(out, wi)
		}
	}
	return out
}

// Actor is the shape shared by the player and enemies.
type Actor struct {
	Object
	Health        Health
	Slots         WepSlots
	knifeCooldown float64
}

// NewActor places an actor with full health and only a knife.
func NewActor(pos Vec2, rot float64) Actor {
	return Actor{
		Object: Object{Pos: pos, Rot: rot},
		Health: NewHealth(DefaultArmour),
		Slots:  NewWepSlots(DefaultGrenades),
	}
}

// Give hands the actor a fresh instance of a registered weapon.
func (a *Actor) Give(reg *Registry, id WeaponID) {
	w := reg.Get(id)
	a.Slots.AddWeapon(NewWeaponInstance(id, w), w.Affinity)
}

// Player is the user-controlled actor.
type Player struct {
	Actor
	// Vel is the displacement per second the player actually made last
	// tick; enemies lead their shots with it.
	Vel Vec2
}

// Enemy is an AI-controlled actor.
type Enemy struct {
	Actor
	Behavior Behavior
	wander   *Vec2   // current wander destination
	lookTime float64 // seconds spent in LookAround
	holdTime float64 // seconds to idle before the next wander leg
}

// NewEnemy places an idle enemy.
func NewEnemy(pos Vec2, rot float64) Enemy {
	return Enemy{Actor: NewActor(pos, rot), Behavior: Wander{}}
}
