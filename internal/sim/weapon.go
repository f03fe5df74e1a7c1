package sim

import (
	"errors"
	"fmt"
	"math"
)

// FireModeKind is how a weapon cycles between shots.
type FireModeKind int

const (
	Automatic     FireModeKind = iota // fires while the trigger is held
	SemiAutomatic                     // one shot per trigger pull
	BoltAction                        // one shot per pull, long cycle
	PumpAction                        // one pull fires ShellsPerPull pellets
)

func (k FireModeKind) String() string {
	switch k {
	case Automatic:
		return "automatic"
	case SemiAutomatic:
		return "semi_automatic"
	case BoltAction:
		return "bolt_action"
	case PumpAction:
		return "pump_action"
	default:
		return "unknown"
	}
}

// ParseFireModeKind maps a mode name back to its value.
func ParseFireModeKind(name string) (FireModeKind, error) {
	for _, k := range []FireModeKind{Automatic, SemiAutomatic, BoltAction, PumpAction} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown fire mode %q", name)
}

// FireMode is a fire-mode kind plus its payload.
type FireMode struct {
	Kind          FireModeKind
	ShellsPerPull int // PumpAction only
}

// IsAuto reports whether the trigger may stay held between shots.
// Callers use it to decide whether to pull again every tick or only on a
// fresh press; the weapon itself only enforces its cooldown.
func (m FireMode) IsAuto() bool {
	return m.Kind == Automatic
}

// projectiles is the number of jerks (and bullets) one pull produces.
func (m FireMode) projectiles() int {
	if m.Kind == PumpAction && m.ShellsPerPull > 0 {
		return m.ShellsPerPull
	}
	return 1
}

// SlotAffinity is where a weapon is carried.
type SlotAffinity int

const (
	AffinityHolster SlotAffinity = iota // sidearms and smaller long guns
	AffinitySling                       // large weapons, one at a time
)

// Weapon is an immutable template shared by every instance and bullet
// through its WeaponID.
type Weapon struct {
	Name        string
	Affinity    SlotAffinity
	ClipSize    int
	ClipCount   int     // spare clips carried when the weapon is new
	Damage      float64 // per bullet
	Penetration float64 // armour penetration fraction, strictly inside (0,1)
	FireRate    float64 // seconds between shots
	ReloadTime  float64 // seconds
	Mode        FireMode
	Spray       []float64 // recoil offset added per shot, radians
	SprayDecay  float64   // seconds without firing before recoil resets
	SprayRepeat int       // index the pattern restarts from once exhausted
	BulletSpeed float64   // units per second
}

// Validate checks the template's invariants.
func (w *Weapon) Validate() error {
	var errs []error
	if w.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if w.ClipSize < 1 {
		errs = append(errs, fmt.Errorf("clip size %d must be positive", w.ClipSize))
	}
	if w.ClipCount < 0 {
		errs = append(errs, fmt.Errorf("clip count %d is negative", w.ClipCount))
	}
	if !(w.Penetration > 0 && w.Penetration < 1) {
		errs = append(errs, fmt.Errorf("penetration %v outside (0, 1)", w.Penetration))
	}
	if w.FireRate < 0 || w.ReloadTime < 0 || w.SprayDecay < 0 {
		errs = append(errs, errors.New("timings must not be negative"))
	}
	if w.BulletSpeed <= 0 {
		errs = append(errs, fmt.Errorf("bullet speed %v must be positive", w.BulletSpeed))
	}
	if len(w.Spray) > 0 && (w.SprayRepeat < 0 || w.SprayRepeat >= len(w.Spray)) {
		errs = append(errs, fmt.Errorf("spray repeat %d outside pattern of %d", w.SprayRepeat, len(w.Spray)))
	}
	if w.Mode.Kind == PumpAction && w.Mode.ShellsPerPull < 1 {
		errs = append(errs, errors.New("pump action needs at least one shell per pull"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("weapon %q: %w", w.Name, err)
	}
	return nil
}

// WeaponID indexes a template in a Registry.
type WeaponID int

// NoWeapon is the zero-value-safe "no template" id.
const NoWeapon WeaponID = -1

// Registry holds the weapon templates. It is filled before the simulation
// starts and only read afterwards.
type Registry struct {
	weapons []Weapon
	byName  map[string]WeaponID
}

// NewRegistry validates and registers the given templates in order.
func NewRegistry(ws ...Weapon) (*Registry, error) {
	r := &Registry{byName: make(map[string]WeaponID, len(ws))}
	for _, w := range ws {
		if _, err := r.Add(w); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a template and returns its id.
func (r *Registry) Add(w Weapon) (WeaponID, error) {
	if err := w.Validate(); err != nil {
		return NoWeapon, err
	}
	if _, dup := r.byName[w.Name]; dup {
		return NoWeapon, fmt.Errorf("weapon %q registered twice", w.Name)
	}
	id := WeaponID(len(r.weapons))
	w.Spray = append([]float64(nil), w.Spray...)
	r.weapons = append(r.weapons, w)
	r.byName[w.Name] = id
	return id, nil
}

// Get returns the template for id. An unknown id is a programming error.
func (r *Registry) Get(id WeaponID) *Weapon {
	if id < 0 || int(id) >= len(r.weapons) {
		panic(fmt.Sprintf("sim: unknown weapon id %d", id))
	}
	return &r.weapons[id]
}

// Lookup finds a template id by name.
func (r *Registry) Lookup(name string) (WeaponID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// MustLookup is Lookup for names known to be registered.
func (r *Registry) MustLookup(name string) WeaponID {
	id, ok := r.byName[name]
	if !ok {
		panic(fmt.Sprintf("sim: unknown weapon %q", name))
	}
	return id
}

// Len returns the number of templates.
func (r *Registry) Len() int { return len(r.weapons) }

// Names lists template names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.weapons))
	for i := range r.weapons {
		out[i] = r.weapons[i].Name
	}
	return out
}

// deg converts degrees to radians for the built-in spray tables.
func deg(d float64) float64 { return d * math.Pi / 180 }

// DefaultWeapons is the built-in arsenal used when no weapon file is given.
func DefaultWeapons() []Weapon {
	return []Weapon{
		{
			Name: "pistol", Affinity: AffinityHolster,
			ClipSize: 12, ClipCount: 4, Damage: 24, Penetration: 0.3,
			FireRate: 0.15, ReloadTime: 1.2, Mode: FireMode{Kind: SemiAutomatic},
			Spray: []float64{deg(0.5), deg(1.5), deg(-1)}, SprayDecay: 0.4, SprayRepeat: 1,
			BulletSpeed: 1400,
		},
		{
			Name: "smg", Affinity: AffinityHolster,
			ClipSize: 30, ClipCount: 4, Damage: 18, Penetration: 0.25,
			FireRate: 0.07, ReloadTime: 1.8, Mode: FireMode{Kind: Automatic},
			Spray:      []float64{deg(0.5), deg(1), deg(1.5), deg(-2), deg(2), deg(-2.5), deg(2.5)},
			SprayDecay: 0.25, SprayRepeat: 3,
			BulletSpeed: 1300,
		},
		{
			Name: "rifle", Affinity: AffinitySling,
			ClipSize: 30, ClipCount: 3, Damage: 34, Penetration: 0.6,
			FireRate: 0.1, ReloadTime: 2.4, Mode: FireMode{Kind: Automatic},
			Spray:      []float64{deg(0.3), deg(1.2), deg(2), deg(2.5), deg(-3), deg(3), deg(-3.5), deg(3.5)},
			SprayDecay: 0.35, SprayRepeat: 4,
			BulletSpeed: 2000,
		},
		{
			Name: "bolt_rifle", Affinity: AffinitySling,
			ClipSize: 5, ClipCount: 4, Damage: 95, Penetration: 0.8,
			FireRate: 1.25, ReloadTime: 3, Mode: FireMode{Kind: BoltAction},
			Spray: []float64{deg(0.5)}, SprayDecay: 1, SprayRepeat: 0,
			BulletSpeed: 2600,
		},
		{
			Name: "shotgun", Affinity: AffinitySling,
			ClipSize: 6, ClipCount: 5, Damage: 14, Penetration: 0.15,
			FireRate: 0.8, ReloadTime: 2.6, Mode: FireMode{Kind: PumpAction, ShellsPerPull: 8},
			Spray:      []float64{deg(-6), deg(4), deg(-1), deg(5), deg(-4), deg(2), deg(-3), deg(6)},
			SprayDecay: 0.5, SprayRepeat: 0,
			BulletSpeed: 1100,
		},
	}
}

// DefaultRegistry builds a Registry from DefaultWeapons.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultWeapons()...)
	if err != nil {
		panic(err) // built-in table is fixed
	}
	return r
}

// WeaponInstance is the mutable per-holder state of one carried weapon.
// Its firing/reload state lives in (CurClip, Ammo, LoadingTime).
type WeaponInstance struct {
	Weapon      WeaponID
	CurClip     int
	Ammo        int     // rounds in reserve
	LoadingTime float64 // cooldown or reload left, seconds
	Jerk        float64 // accumulated recoil offset, radians
	JerkDecay   float64 // seconds until recoil resets
	SprayIndex  int
	SprayStep   int // pattern entry applied by the next shot
}

// NewWeaponInstance returns a fresh instance with a full clip and the
// template's spare clips.
func NewWeaponInstance(id WeaponID, w *Weapon) WeaponInstance {
	return WeaponInstance{
		Weapon:  id,
		CurClip: w.ClipSize,
		Ammo:    w.ClipSize * w.ClipCount,
	}
}

// Update advances the recoil and loading timers by dt. It returns true on
// the tick loading finishes.
func (wi *WeaponInstance) Update(dt float64) (ready bool) {
	if wi.JerkDecay <= dt {
		wi.Jerk = 0
		wi.JerkDecay = 0
		wi.SprayIndex = 0
		wi.SprayStep = 0
	} else {
		wi.JerkDecay -= dt
	}

	if wi.LoadingTime <= dt {
		ready = wi.LoadingTime > 0
		wi.LoadingTime = 0
	} else {
		wi.LoadingTime -= dt
	}
	return ready
}

// TriggerResult is what one Shoot call did.
type TriggerResult int

const (
	TriggerBlocked TriggerResult = iota // still cycling or reloading
	TriggerFired                        // rounds left the barrel
	TriggerClick                        // empty clip
)

// Shot is the projectile factory returned by a successful Shoot: one
// bullet per jerk.
type Shot struct {
	Weapon WeaponID
	Jerks  []float64 // aim offsets, radians
}

// CanShoot reports whether the next Shoot would fire.
func (wi *WeaponInstance) CanShoot() bool {
	return wi.CurClip > 0 && wi.LoadingTime == 0
}

// Shoot fires one trigger pull if a round is chambered and the weapon is not
// cycling.
func (wi *WeaponInstance) Shoot(w *Weapon) (Shot, TriggerResult) {
	if wi.CurClip == 0 {
		// Mid-reload or mid-cycle the trigger is blocked rather than clicking.
		if wi.LoadingTime == 0 {
			return Shot{}, TriggerClick
		}
		return Shot{}, TriggerBlocked
	}
	if wi.LoadingTime > 0 {
		return Shot{}, TriggerBlocked
	}

	wi.CurClip--
	if wi.CurClip > 0 {
		wi.LoadingTime = w.FireRate
	}
	n := w.Mode.projectiles()
	shot := Shot{Weapon: wi.Weapon, Jerks: make([]float64, 0, n)}
	for i := 0; i < n; i++ {
		shot.Jerks = append(shot.Jerks, wi.jerk(w))
	}
	return shot, TriggerFired
}

// jerk adds the next recoil step to the accumulated offset and returns it.
// SprayIndex counts shots around the pattern and wraps to 0; SprayStep is
// the entry applied, which plays the pattern once and then loops its tail
// from SprayRepeat.
func (wi *WeaponInstance) jerk(w *Weapon) float64 {
	n := len(w.Spray)
	if n == 0 {
		return wi.Jerk
	}
	if wi.SprayStep >= n {
		wi.SprayStep = w.SprayRepeat
	}
	wi.Jerk += w.Spray[wi.SprayStep]
	wi.SprayStep++
	if wi.SprayStep >= n {
		wi.SprayStep = w.SprayRepeat
	}
	wi.SprayIndex = (wi.SprayIndex + 1) % n
	wi.JerkDecay = w.SprayDecay
	return wi.Jerk
}

// Reload moves as many reserve rounds into the clip as fit and starts the
// reload timer. It does nothing, and returns false, with a full clip or no
// reserve.
func (wi *WeaponInstance) Reload(w *Weapon) bool {
	if wi.CurClip >= w.ClipSize || wi.Ammo == 0 {
		return false
	}
	n := min(wi.Ammo, w.ClipSize-wi.CurClip)
	wi.CurClip += n
	wi.Ammo -= n
	wi.LoadingTime = w.ReloadTime
	return true
}
