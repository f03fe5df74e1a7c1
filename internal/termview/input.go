package termview

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Tilefire/internal/sim"
)

// Terminals report presses and auto-repeats but no releases, so a press
// holds its action for a few ticks and repeats extend it.
const (
	moveHold = 8 // ticks a movement key keeps the player walking
	fireHold = 6 // ticks a fire key keeps the trigger down
)

// Action is what a key press asked for.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionRestart
)

// Intent accumulates key presses between ticks.
type Intent struct {
	move    [4]int // remaining hold ticks for up, down, left, right
	fire    int
	facing  float64 // aim when no enemy is in sight
	pending sim.Input
}

// Key records one key event.
func (it *Intent) Key(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyF5:
		return ActionRestart
	case tcell.KeyTab:
		it.pending.QuickSwitch = true
		return ActionNone
	case tcell.KeyUp:
		it.press(0)
	case tcell.KeyDown:
		it.press(1)
	case tcell.KeyLeft:
		it.press(2)
	case tcell.KeyRight:
		it.press(3)
	case tcell.KeyRune:
		it.rune(ev.Rune())
	}
	return ActionNone
}

func (it *Intent) rune(r rune) {
	switch r {
	case 'w', 'k':
		it.press(0)
	case 's', 'j':
		it.press(1)
	case 'a', 'h':
		it.press(2)
	case 'd', 'l':
		it.press(3)
	case 'f', ' ':
		// Repeats inside the hold window keep the trigger down, so a
		// semi-automatic fires once per burst of repeats.
		it.fire = fireHold
	case 'r':
		it.pending.Reload = true
	case 'g':
		it.pending.Throw = true
	case 'e':
		it.pending.Interact = true
	case 'x':
		it.pending.Drop = true
	case '1':
		it.pending.Switch = sim.SlotKnife
	case '2':
		it.pending.Switch = sim.SlotHolster1
	case '3':
		it.pending.Switch = sim.SlotHolster2
	case '4':
		it.pending.Switch = sim.SlotSling
	}
}

// press holds direction d and cancels its opposite.
func (it *Intent) press(d int) {
	it.move[d] = moveHold
	it.move[d^1] = 0
}

// Input returns the input for the next tick and advances the hold timers.
// Aim locks onto the nearest visible enemy, else follows movement.
func (it *Intent) Input(s *sim.Sim) sim.Input {
	var move sim.Vec2
	if it.move[0] > 0 {
		move.Y--
	}
	if it.move[1] > 0 {
		move.Y++
	}
	if it.move[2] > 0 {
		move.X--
	}
	if it.move[3] > 0 {
		move.X++
	}
	if !move.IsZero() {
		it.facing = move.Angle()
	}

	in := it.pending
	in.Move = move.Norm()
	in.Aim = it.facing
	if target, ok := NearestVisibleEnemy(s); ok {
		in.Aim = target.Sub(s.Player.Pos).Angle()
	}
	in.Fire = it.fire > 0

	for d := range it.move {
		it.move[d] = max(it.move[d]-1, 0)
	}
	it.fire = max(it.fire-1, 0)
	it.pending = sim.Input{}
	return in
}

// NearestVisibleEnemy returns the closest living enemy in the player's line
// of sight.
func NearestVisibleEnemy(s *sim.Sim) (sim.Vec2, bool) {
	best := math.Inf(1)
	var pos sim.Vec2
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if e.Health.IsDead() {
			continue
		}
		d := e.Pos.Dist(s.Player.Pos)
		if d < best && s.Grid.LineOfSight(s.Player.Pos, e.Pos) {
			best, pos = d, e.Pos
		}
	}
	return pos, !math.IsInf(best, 1)
}
