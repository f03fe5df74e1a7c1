package view

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Tilefire/internal/sim"
)

var (
	playerCol = color.RGBA{R: 70, G: 170, B: 230, A: 255}
	enemyCol  = color.RGBA{R: 200, G: 60, B: 50, A: 255}
	deadCol   = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	intelCol  = color.RGBA{R: 250, G: 210, B: 60, A: 255}
	pickupCol = color.RGBA{R: 170, G: 200, B: 120, A: 255}
	hudText   = color.RGBA{R: 200, G: 230, B: 200, A: 255}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	g.worldBuf.Clear()
	g.drawWorld(g.worldBuf)

	op := &ebiten.DrawImageOptions{GeoM: g.cam.GeoM()}
	screen.SubImage(screenRect(g.opts.Width, g.opts.Height)).(*ebiten.Image).DrawImage(g.worldBuf, op)

	if g.showHUD {
		g.drawHUD(screen)
	}
	g.drawBanner(screen)
	g.eventLog.Draw(screen, g.opts.Width, g.opts.Height)
}

// materialColor unpacks a material's 0xRRGGBB render handle.
func materialColor(m sim.Material) color.RGBA {
	v := m.Visual()
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func (g *Game) drawWorld(dst *ebiten.Image) {
	grid := g.s.Grid
	const ts = float32(sim.TileSize)
	lineCol := color.RGBA{R: 0, G: 0, B: 0, A: 40}
	for ty := 0; ty < grid.Height(); ty++ {
		for tx := 0; tx < grid.Width(); tx++ {
			m, _ := grid.At(tx, ty)
			x, y := float32(tx)*ts, float32(ty)*ts
			vector.FillRect(dst, x, y, ts, ts, materialColor(m), false)
			if m.Solid() {
				// Top-left highlight, bottom-right shadow.
				vector.StrokeLine(dst, x, y, x+ts, y, 1, color.RGBA{R: 255, G: 255, B: 255, A: 40}, false)
				vector.StrokeLine(dst, x, y, x, y+ts, 1, color.RGBA{R: 255, G: 255, B: 255, A: 40}, false)
				vector.StrokeLine(dst, x, y+ts, x+ts, y+ts, 1, color.RGBA{A: 90}, false)
				vector.StrokeLine(dst, x+ts, y, x+ts, y+ts, 1, color.RGBA{A: 90}, false)
			} else {
				vector.StrokeRect(dst, x, y, ts, ts, 0.5, lineCol, false)
			}
		}
	}

	g.fx.DrawDecals(dst)

	for _, it := range g.s.Intel {
		x, y := float32(it.Pos.X), float32(it.Pos.Y)
		vector.FillCircle(dst, x, y, 9, color.RGBA{R: 250, G: 210, B: 60, A: 50}, true)
		vector.FillRect(dst, x-5, y-5, 10, 10, intelCol, false)
		vector.StrokeRect(dst, x-5, y-5, 10, 10, 1, color.RGBA{A: 180}, false)
	}
	for _, pk := range g.s.Pickups {
		x, y := float32(pk.Pos.X), float32(pk.Pos.Y)
		vector.FillRect(dst, x-8, y-3, 16, 6, pickupCol, false)
		vector.StrokeRect(dst, x-8, y-3, 16, 6, 1, color.RGBA{A: 160}, false)
	}

	for i := range g.s.Enemies {
		e := &g.s.Enemies[i]
		col := enemyCol
		if e.Health.IsDead() {
			col = deadCol
		}
		drawActor(dst, &e.Actor, col)
		drawHealthBar(dst, &e.Actor)
	}
	pc := playerCol
	if g.s.Player.Health.IsDead() {
		pc = deadCol
	}
	drawActor(dst, &g.s.Player.Actor, pc)

	for _, b := range g.s.Bullets {
		tail := b.Pos.Sub(b.Vel.Norm().Scale(10))
		vector.StrokeLine(dst, float32(tail.X), float32(tail.Y), float32(b.Pos.X), float32(b.Pos.Y), 1.5,
			color.RGBA{R: 255, G: 240, B: 170, A: 230}, true)
	}
	for _, gr := range g.s.Grenades {
		vector.FillCircle(dst, float32(gr.Pos.X), float32(gr.Pos.Y), sim.GrenadeRadius, color.RGBA{R: 60, G: 90, B: 50, A: 255}, true)
		vector.StrokeCircle(dst, float32(gr.Pos.X), float32(gr.Pos.Y), sim.GrenadeRadius, 1, color.RGBA{A: 200}, true)
	}

	g.fx.DrawTransient(dst)
}

func drawActor(dst *ebiten.Image, a *sim.Actor, col color.RGBA) {
	x, y := float32(a.Pos.X), float32(a.Pos.Y)
	r := float32(sim.ActorRadius)
	vector.FillCircle(dst, x+2, y+2, r, color.RGBA{A: 70}, true)
	vector.FillCircle(dst, x, y, r, col, true)
	vector.StrokeCircle(dst, x, y, r, 1.5, color.RGBA{A: 180}, true)

	// Barrel length hints at what is drawn: knife short, guns long.
	l := r + 4
	if a.Slots.ActiveWeapon() != nil {
		l = r + 12
	}
	ex := x + float32(math.Cos(a.Rot))*l
	ey := y + float32(math.Sin(a.Rot))*l
	vector.StrokeLine(dst, x, y, ex, ey, 3, color.RGBA{R: 30, G: 30, B: 30, A: 255}, true)
}

func drawHealthBar(dst *ebiten.Image, a *sim.Actor) {
	if a.Health.IsDead() || a.Health.HP >= sim.DefaultHP {
		return
	}
	w := float32(2 * sim.ActorRadius)
	x := float32(a.Pos.X) - w/2
	y := float32(a.Pos.Y) - sim.ActorRadius - 7
	frac := float32(a.Health.HP / sim.DefaultHP)
	vector.FillRect(dst, x, y, w, 3, color.RGBA{R: 40, G: 0, B: 0, A: 200}, false)
	vector.FillRect(dst, x, y, w*frac, 3, color.RGBA{R: 220, G: 50, B: 40, A: 255}, false)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	p := &g.s.Player
	lines := []string{
		fmt.Sprintf("HP %3.0f  ARMOUR %3.0f", max(p.Health.HP, 0), p.Health.Armour),
		g.weaponLine(),
		fmt.Sprintf("GRENADES %d  INTEL %d/%d", p.Slots.Grenades, g.s.IntelTaken(), g.s.IntelTaken()+g.s.IntelRemaining()),
		fmt.Sprintf("ENEMIES %d  T=%d  SPEED %s", len(g.s.Enemies), g.s.TickCount(), speedLabel(g.simSpeed)),
		"1-4 slot  Q swap  R reload  G grenade  E pick up  X drop",
		"P pause  ,/. speed  C copy state  F5 restart  H hud",
	}
	if g.statusAge > 0 {
		lines = append(lines, g.status)
	}

	const lineH = 15
	const pad = 6
	boxW := float32(0)
	for _, l := range lines {
		w, _ := text.Measure(l, g.hudFace, lineH)
		boxW = max(boxW, float32(w))
	}
	boxW += 2 * pad
	boxH := float32(len(lines)*lineH + 2*pad)
	bx := float32(8)
	by := float32(g.opts.Height) - boxH - 8

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)

	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(bx)+pad, float64(by)+pad+float64(i*lineH))
		op.ColorScale.ScaleWithColor(hudText)
		text.Draw(screen, l, g.hudFace, op)
	}

	if wi := p.Slots.ActiveWeapon(); wi != nil && wi.LoadingTime > 0 {
		w := g.s.Weapons.Get(wi.Weapon)
		full := w.FireRate
		if wi.CurClip == 0 || wi.LoadingTime > w.FireRate {
			full = w.ReloadTime
		}
		if full > 0 {
			frac := float32(1 - wi.LoadingTime/full)
			vector.FillRect(screen, bx, by-6, boxW*frac, 3, color.RGBA{R: 220, G: 200, B: 80, A: 220}, false)
		}
	}
}

func (g *Game) weaponLine() string {
	p := &g.s.Player
	wi := p.Slots.ActiveWeapon()
	if wi == nil {
		return fmt.Sprintf("[%s] knife", p.Slots.Active)
	}
	w := g.s.Weapons.Get(wi.Weapon)
	state := ""
	switch {
	case wi.CurClip == 0 && wi.Ammo == 0:
		state = "  EMPTY"
	case wi.LoadingTime > 0 && wi.CurClip == w.ClipSize:
		state = "  RELOADING"
	}
	return fmt.Sprintf("[%s] %s %d/%d%s", p.Slots.Active, w.Name, wi.CurClip, wi.Ammo, state)
}

func (g *Game) drawBanner(screen *ebiten.Image) {
	var msg string
	switch {
	case g.s.Player.Health.IsDead():
		msg = "YOU DIED - F5 to restart"
	case g.s.IntelRemaining() == 0 && g.s.IntelTaken() > 0:
		msg = "ALL INTEL SECURED - F5 to play again"
	case g.simSpeed == 0:
		msg = "PAUSED"
	default:
		return
	}
	ebitenutil.DebugPrintAt(screen, msg, g.opts.Width/2-len(msg)*3, 12)
}

func speedLabel(s float64) string {
	if s == 0 {
		return "paused"
	}
	return fmt.Sprintf("%gx", s)
}

func screenRect(w, h int) image.Rectangle {
	return image.Rect(0, 0, w, h)
}
