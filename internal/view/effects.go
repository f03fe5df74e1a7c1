package view

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Tilefire/internal/sim"
)

const (
	flashLifetime = 6  // frames
	blastLifetime = 24 // frames
	maxDecals     = 400
)

// flash is a short-lived bright spot: muzzle flash or wall spark.
type flash struct {
	pos   sim.Vec2
	angle float64
	age   int
	spark bool
}

// blast is an expanding explosion ring.
type blast struct {
	pos sim.Vec2
	age int
}

// decal is a permanent mark on the floor.
type decal struct {
	pos    sim.Vec2
	normal [2]int
	blood  bool
	radius float32
}

// Effects holds the purely visual aftermath of events. Nothing here feeds
// back into the simulation.
type Effects struct {
	flashes []flash
	blasts  []blast
	decals  []decal
}

// Spawn adds visuals for one batch of events. facing gives the aim of
// each actor so muzzle flashes point the right way.
func (fx *Effects) Spawn(events []sim.Event, facing func(sim.ActorRef) float64) {
	for _, ev := range events {
		switch ev.Kind {
		case sim.EventShot:
			a := facing(ev.Actor)
			fx.flashes = append(fx.flashes, flash{pos: ev.Pos.Add(sim.FromAngle(a).Scale(sim.MuzzleOffset)), angle: a})
		case sim.EventWallImpact:
			fx.flashes = append(fx.flashes, flash{pos: ev.Pos, spark: true})
			fx.addDecal(decal{pos: ev.Pos, normal: ev.Normal, radius: 1.5})
		case sim.EventExplosion:
			fx.blasts = append(fx.blasts, blast{pos: ev.Pos})
			fx.addDecal(decal{pos: ev.Pos, radius: sim.GrenadeBlastRadius / 3})
		case sim.EventDeath:
			fx.addDecal(decal{pos: ev.Pos, blood: true, radius: sim.ActorRadius})
		}
	}
}

func (fx *Effects) addDecal(d decal) {
	if len(fx.decals) >= maxDecals {
		copy(fx.decals, fx.decals[1:])
		fx.decals = fx.decals[:len(fx.decals)-1]
	}
	fx.decals = append(fx.decals, d)
}

// Update ages transient effects by one frame and drops expired ones.
func (fx *Effects) Update() {
	flashes := fx.flashes[:0]
	for _, f := range fx.flashes {
		f.age++
		if f.age < flashLifetime {
			flashes = append(flashes, f)
		}
	}
	fx.flashes = flashes

	blasts := fx.blasts[:0]
	for _, b := range fx.blasts {
		b.age++
		if b.age < blastLifetime {
			blasts = append(blasts, b)
		}
	}
	fx.blasts = blasts
}

// Reset clears everything, for a level restart.
func (fx *Effects) Reset() {
	fx.flashes = fx.flashes[:0]
	fx.blasts = fx.blasts[:0]
	fx.decals = fx.decals[:0]
}

// DrawDecals renders permanent marks; call before actors.
func (fx *Effects) DrawDecals(dst *ebiten.Image) {
	for _, d := range fx.decals {
		x, y := float32(d.pos.X), float32(d.pos.Y)
		switch {
		case d.blood:
			vector.FillCircle(dst, x, y, d.radius, color.RGBA{R: 90, G: 10, B: 10, A: 170}, true)
		case d.normal != [2]int{}:
			vector.FillCircle(dst, x, y, d.radius, color.RGBA{R: 20, G: 20, B: 20, A: 230}, true)
		default:
			vector.FillCircle(dst, x, y, d.radius, color.RGBA{R: 15, G: 12, B: 10, A: 120}, true)
		}
	}
}

// DrawTransient renders flashes and blast rings; call after actors.
func (fx *Effects) DrawTransient(dst *ebiten.Image) {
	for _, f := range fx.flashes {
		progress := float64(f.age) / flashLifetime
		alpha := uint8(255 * (1 - progress))
		x, y := float32(f.pos.X), float32(f.pos.Y)
		if f.spark {
			vector.FillCircle(dst, x, y, 3, color.RGBA{R: 255, G: 220, B: 140, A: alpha}, true)
			continue
		}
		vector.FillCircle(dst, x, y, float32(8*(1-progress*0.6)), color.RGBA{R: 255, G: 180, B: 40, A: alpha / 3}, true)
		vector.FillCircle(dst, x, y, float32(3.5*(1-progress*0.5)), color.RGBA{R: 255, G: 255, B: 220, A: alpha}, true)
		l := 12 * (1 - progress*0.7)
		ex := float32(f.pos.X + math.Cos(f.angle)*l)
		ey := float32(f.pos.Y + math.Sin(f.angle)*l)
		vector.StrokeLine(dst, x, y, ex, ey, 1.5, color.RGBA{R: 255, G: 240, B: 160, A: uint8(float64(alpha) * 0.7)}, true)
	}
	for _, b := range fx.blasts {
		progress := float64(b.age) / blastLifetime
		r := float32(sim.GrenadeBlastRadius * math.Sqrt(progress))
		alpha := uint8(220 * (1 - progress))
		x, y := float32(b.pos.X), float32(b.pos.Y)
		vector.FillCircle(dst, x, y, r, color.RGBA{R: 255, G: 140, B: 30, A: alpha / 3}, true)
		vector.StrokeCircle(dst, x, y, r, 2, color.RGBA{R: 255, G: 230, B: 160, A: alpha}, true)
	}
}
