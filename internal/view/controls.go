package view

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Tilefire/internal/sim"
)

// slotKeys selects a slot directly.
var slotKeys = [...]struct {
	key  ebiten.Key
	slot sim.Slot
}{
	{ebiten.Key1, sim.SlotKnife},
	{ebiten.Key2, sim.SlotHolster1},
	{ebiten.Key3, sim.SlotHolster2},
	{ebiten.Key4, sim.SlotSling},
}

// edgeKeys are the keys read as presses rather than holds.
var edgeKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.KeyR, ebiten.KeyQ, ebiten.KeyG, ebiten.KeyX, ebiten.KeyE,
}

// Controls maps raw key state to a sim.Input, detecting key-down edges
// between frames.
type Controls struct {
	prevKeys map[ebiten.Key]bool
}

// NewControls creates controls with nothing held.
func NewControls() *Controls {
	return &Controls{prevKeys: make(map[ebiten.Key]bool)}
}

// Read builds the player's input for this frame. pressed reports whether a
// key is held, fire whether the trigger is held, and aim is the aim angle.
func (c *Controls) Read(pressed func(ebiten.Key) bool, fire bool, aim float64) sim.Input {
	currentKeys := make(map[ebiten.Key]bool, len(edgeKeys))
	for _, k := range edgeKeys {
		currentKeys[k] = pressed(k)
	}
	down := func(k ebiten.Key) bool { return currentKeys[k] && !c.prevKeys[k] }

	var move sim.Vec2
	if pressed(ebiten.KeyW) || pressed(ebiten.KeyArrowUp) {
		move.Y--
	}
	if pressed(ebiten.KeyS) || pressed(ebiten.KeyArrowDown) {
		move.Y++
	}
	if pressed(ebiten.KeyA) || pressed(ebiten.KeyArrowLeft) {
		move.X--
	}
	if pressed(ebiten.KeyD) || pressed(ebiten.KeyArrowRight) {
		move.X++
	}

	in := sim.Input{
		Move:        move.Norm(),
		Aim:         aim,
		Fire:        fire || pressed(ebiten.KeySpace),
		Reload:      down(ebiten.KeyR),
		QuickSwitch: down(ebiten.KeyQ),
		Throw:       down(ebiten.KeyG),
		Drop:        down(ebiten.KeyX),
		Interact:    down(ebiten.KeyE),
	}
	for _, sk := range slotKeys {
		if down(sk.key) {
			in.Switch = sk.slot
		}
	}

	c.prevKeys = currentKeys
	return in
}
