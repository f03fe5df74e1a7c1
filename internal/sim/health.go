package sim

import "fmt"

const (
	DefaultHP     = 100.0 // starting health
	DefaultArmour = 0.0   // actors spawn unarmoured unless a level says otherwise
)

// Health is hit points plus armour. hp may dip below zero; IsDead treats
// anything at or under zero as dead.
type Health struct {
	HP     float64
	Armour float64
}

// NewHealth returns full health with the given armour.
func NewHealth(armour float64) Health {
	return Health{HP: DefaultHP, Armour: armour}
}

// WeaponDamage applies dmg, splitting it between armour and hp. Armour takes
// (1-penetration) of the damage scaled by how much armour is left (full at
// 100). Armour can only absorb what it still has; the overflow goes to hp.
//
// penetration must lie strictly inside (0, 1).
func (h *Health) WeaponDamage(dmg, penetration float64) {
	if !(penetration > 0 && penetration < 1) {
		panic(fmt.Sprintf("sim: penetration %v outside (0, 1)", penetration))
	}
	frac := clamp01(h.Armour / 100)
	toArmour := (1 - penetration) * dmg * frac
	toHP := dmg - toArmour
	h.Armour -= toArmour
	h.HP -= toHP
	if h.Armour < 0 {
		h.HP += h.Armour
		h.Armour = 0
	}
}

// IsDead reports whether hp has run out.
func (h Health) IsDead() bool {
	return h.HP <= 0
}
