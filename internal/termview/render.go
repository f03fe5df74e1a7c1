// Package termview is the terminal driver: it renders the arena as text
// cells with tcell and turns key presses into simulation input.
package termview

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Tilefire/internal/sim"
)

// cellsPerTile is how many terminal columns one tile spans; terminal cells
// are about twice as tall as wide.
const cellsPerTile = 2

// hudLines are reserved at the bottom of the screen.
const hudLines = 3

var (
	styleBase   = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorGray)
	stylePlayer = styleBase.Foreground(tcell.ColorAqua).Bold(true)
	styleEnemy  = styleBase.Foreground(tcell.ColorRed).Bold(true)
	styleDead   = styleBase.Foreground(tcell.ColorDarkGray)
	styleIntel  = styleBase.Foreground(tcell.ColorYellow).Bold(true)
	stylePickup = styleBase.Foreground(tcell.ColorGreenYellow)
	styleBullet = styleBase.Foreground(tcell.ColorWhite)
	styleBlast  = styleBase.Foreground(tcell.ColorOrange).Bold(true)
	styleHUD    = styleBase.Foreground(tcell.ColorSilver)
)

// tileGlyph returns the text cell for a material.
func tileGlyph(m sim.Material) (rune, tcell.Style) {
	switch m {
	case sim.MaterialWall:
		return '█', styleBase.Foreground(tcell.ColorSilver)
	case sim.MaterialCrate:
		return '▓', styleBase.Foreground(tcell.ColorOlive)
	case sim.MaterialWindow:
		return '▒', styleBase.Foreground(tcell.ColorSteelBlue)
	case sim.MaterialGrass:
		return '"', styleBase.Foreground(tcell.ColorDarkGreen)
	case sim.MaterialConcrete:
		return '·', styleBase.Foreground(tcell.ColorDimGray)
	default:
		return '.', styleBase.Foreground(tcell.ColorDarkSlateGray)
	}
}

// View is the tile window shown on screen.
type View struct {
	OriginX, OriginY int // top-left tile
	Cols, Rows       int // tiles visible
}

// ViewFor centres a window of the screen's size on the player, clamped to
// the grid.
func ViewFor(s *sim.Sim, screenW, screenH int) View {
	v := View{Cols: screenW / cellsPerTile, Rows: screenH - hudLines}
	v.Cols = max(min(v.Cols, s.Grid.Width()), 0)
	v.Rows = max(min(v.Rows, s.Grid.Height()), 0)
	px, py := sim.SnapPoint(s.Player.Pos)
	v.OriginX = min(max(px-v.Cols/2, 0), s.Grid.Width()-v.Cols)
	v.OriginY = min(max(py-v.Rows/2, 0), s.Grid.Height()-v.Rows)
	return v
}

// cell maps a world point to a screen cell, reporting whether it is in the
// view.
func (v View) cell(p sim.Vec2) (x, y int, ok bool) {
	tx, ty := sim.SnapPoint(p)
	if tx == sim.OffGrid || ty == sim.OffGrid {
		return 0, 0, false
	}
	tx -= v.OriginX
	ty -= v.OriginY
	if tx < 0 || ty < 0 || tx >= v.Cols || ty >= v.Rows {
		return 0, 0, false
	}
	return tx * cellsPerTile, ty, true
}

// Render draws the session and the status lines. It does not call Show.
func Render(scr tcell.Screen, s *sim.Sim, blasts []sim.Vec2, status string) {
	scr.Clear()
	w, h := scr.Size()
	v := ViewFor(s, w, h)

	for ty := 0; ty < v.Rows; ty++ {
		for tx := 0; tx < v.Cols; tx++ {
			m, _ := s.Grid.At(v.OriginX+tx, v.OriginY+ty)
			r, st := tileGlyph(m)
			for c := 0; c < cellsPerTile; c++ {
				scr.SetContent(tx*cellsPerTile+c, ty, r, nil, st)
			}
		}
	}

	put := func(p sim.Vec2, r rune, st tcell.Style) {
		if x, y, ok := v.cell(p); ok {
			scr.SetContent(x, y, r, nil, st)
		}
	}
	for _, it := range s.Intel {
		put(it.Pos, '$', styleIntel)
	}
	for _, pk := range s.Pickups {
		put(pk.Pos, '=', stylePickup)
	}
	for _, b := range s.Bullets {
		put(b.Pos, '*', styleBullet)
	}
	for _, g := range s.Grenades {
		put(g.Pos, 'o', styleBlast)
	}
	for _, b := range blasts {
		put(b, '#', styleBlast)
	}
	for i := range s.Enemies {
		e := &s.Enemies[i]
		st := styleEnemy
		if e.Health.IsDead() {
			st = styleDead
		}
		put(e.Pos, 'E', st)
	}
	if s.Player.Health.IsDead() {
		put(s.Player.Pos, 'x', styleDead)
	} else {
		put(s.Player.Pos, '@', stylePlayer)
		if x, y, ok := v.cell(s.Player.Pos); ok {
			scr.SetContent(x+1, y, aimGlyph(s.Player.Rot), nil, stylePlayer)
		}
	}

	drawText(scr, 0, h-hudLines, styleHUD, hudLine(s))
	drawText(scr, 0, h-hudLines+1, styleHUD, "wasd move  f fire  r reload  1-4 slot  tab swap  g grenade  e pick up  x drop  esc quit")
	drawText(scr, 0, h-hudLines+2, styleHUD, status)
}

// aimGlyph points roughly where the player aims.
func aimGlyph(rot float64) rune {
	d := sim.FromAngle(rot)
	switch {
	case d.X >= 0.7:
		return '>'
	case d.X <= -0.7:
		return '<'
	case d.Y < 0:
		return '^'
	default:
		return 'v'
	}
}

func hudLine(s *sim.Sim) string {
	p := &s.Player
	weapon := "knife"
	if wi := p.Slots.ActiveWeapon(); wi != nil {
		weapon = fmt.Sprintf("%s %d/%d", s.Weapons.Get(wi.Weapon).Name, wi.CurClip, wi.Ammo)
		if wi.LoadingTime > 0 {
			weapon += " ..."
		}
	}
	return fmt.Sprintf("HP %3.0f AR %3.0f | %s | grenades %d | intel %d left | enemies %d | T=%d",
		max(p.Health.HP, 0), p.Health.Armour, weapon, p.Slots.Grenades, s.IntelRemaining(), len(s.Enemies), s.TickCount())
}

func drawText(scr tcell.Screen, x, y int, st tcell.Style, s string) {
	for _, r := range s {
		scr.SetContent(x, y, r, nil, st)
		x++
	}
}
