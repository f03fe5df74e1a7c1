package view

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Tilefire/internal/sim"
)

const zoomMin, zoomMax = 0.5, 3.0

// Camera follows a world point and maps between world and viewport pixels.
type Camera struct {
	Center sim.Vec2
	Zoom   float64
	// Viewport size in pixels.
	W, H float64
}

// Follow centres on target, kept inside bounds where the view allows.
func (c *Camera) Follow(target, bounds sim.Vec2) {
	c.Zoom = min(max(c.Zoom, zoomMin), zoomMax)
	halfW := c.W / 2 / c.Zoom
	halfH := c.H / 2 / c.Zoom
	c.Center = sim.V(clampView(target.X, halfW, bounds.X), clampView(target.Y, halfH, bounds.Y))
}

// clampView keeps a half-extent view inside [0, size], centring when the
// world is smaller than the view.
func clampView(v, half, size float64) float64 {
	if 2*half >= size {
		return size / 2
	}
	return min(max(v, half), size-half)
}

// GeoM returns the world-to-viewport transform.
func (c *Camera) GeoM() ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-c.Center.X, -c.Center.Y)
	m.Scale(c.Zoom, c.Zoom)
	m.Translate(c.W/2, c.H/2)
	return m
}

// ToWorld maps a viewport pixel to world coordinates.
func (c *Camera) ToWorld(x, y float64) sim.Vec2 {
	return sim.V((x-c.W/2)/c.Zoom+c.Center.X, (y-c.H/2)/c.Zoom+c.Center.Y)
}

// ToScreen maps a world point to viewport pixels.
func (c *Camera) ToScreen(p sim.Vec2) (x, y float64) {
	return (p.X-c.Center.X)*c.Zoom + c.W/2, (p.Y-c.Center.Y)*c.Zoom + c.H/2
}
