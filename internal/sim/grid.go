package sim

import (
	"fmt"
	"math"
)

// TileSize is the edge length of one grid tile in world units.
const TileSize = 32

// OffGrid is the tile index Snap returns for coordinates left of or above
// the world. It is never in bounds, so lookups on it fall back to solid.
const OffGrid = math.MaxInt

// Material identifies what a tile is made of.
type Material uint8

const (
	MaterialFloor    Material = iota // Default open ground
	MaterialConcrete                 // Interior floor
	MaterialGrass                    // Outdoor ground
	MaterialWall                     // Structural wall
	MaterialCrate                    // Stacked crates, blocks like a wall
	MaterialWindow                   // Glazing: solid to bullets and actors
	materialCount                    // sentinel
)

// Solid reports whether the material blocks actors, bullets and sight.
func (m Material) Solid() bool {
	switch m {
	case MaterialWall, MaterialCrate, MaterialWindow:
		return true
	case MaterialFloor, MaterialConcrete, MaterialGrass:
		return false
	default:
		return true
	}
}

// Visual returns an opaque render handle (packed 0xRRGGBB) for the material.
// The simulation never looks at it.
func (m Material) Visual() uint32 {
	switch m {
	case MaterialFloor:
		return 0x2a2f2a
	case MaterialConcrete:
		return 0x26241f
	case MaterialGrass:
		return 0x1e301e
	case MaterialWall:
		return 0x6b6a66
	case MaterialCrate:
		return 0x6e5433
	case MaterialWindow:
		return 0x4c6f8a
	default:
		return 0xff00ff
	}
}

func (m Material) String() string {
	switch m {
	case MaterialFloor:
		return "floor"
	case MaterialConcrete:
		return "concrete"
	case MaterialGrass:
		return "grass"
	case MaterialWall:
		return "wall"
	case MaterialCrate:
		return "crate"
	case MaterialWindow:
		return "window"
	default:
		return "unknown"
	}
}

// ParseMaterial maps a material name back to its value.
func ParseMaterial(name string) (Material, error) {
	for m := Material(0); m < materialCount; m++ {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown material %q", name)
}

// Grid is the tile-indexed solidity map of the level.
type Grid struct {
	width     int
	materials []Material // row-major: index = row*width + col
}

// NewGrid creates a width×height grid filled with one material.
// Dimensions below 1 are raised to 1.
func NewGrid(width, height int, fill Material) *Grid {
	width = max(width, 1)
	height = max(height, 1)
	ms := make([]Material, width*height)
	for i := range ms {
		ms[i] = fill
	}
	return &Grid{width: width, materials: ms}
}

// GridFromMaterials wraps a row-major material slice. The slice is used
// as-is, not copied.
func GridFromMaterials(width int, materials []Material) (*Grid, error) {
	if width < 1 {
		return nil, fmt.Errorf("grid width %d must be positive", width)
	}
	if len(materials) == 0 || len(materials)%width != 0 {
		return nil, fmt.Errorf("grid of %d tiles is not a multiple of width %d", len(materials), width)
	}
	return &Grid{width: width, materials: materials}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return len(g.materials) / g.width }

// Materials exposes the row-major tile slice for renderers.
func (g *Grid) Materials() []Material { return g.materials }

// Bounds returns the world-space size of the grid.
func (g *Grid) Bounds() Vec2 {
	return Vec2{float64(g.width * TileSize), float64(g.Height() * TileSize)}
}

func (g *Grid) inBounds(tx, ty int) bool {
	return tx >= 0 && tx < g.width && ty >= 0 && ty < g.Height()
}

// At returns the material at tile (tx, ty). ok is false off the grid.
func (g *Grid) At(tx, ty int) (m Material, ok bool) {
	if !g.inBounds(tx, ty) {
		return MaterialWall, false
	}
	return g.materials[ty*g.width+tx], true
}

// Set places a material on a tile. Out-of-bounds writes are ignored.
func (g *Grid) Set(tx, ty int, m Material) {
	if !g.inBounds(tx, ty) {
		return
	}
	g.materials[ty*g.width+tx] = m
}

// IsSolid reports whether tile (tx, ty) blocks movement and rays.
// Any coordinate without a tile is solid: the world edge is an implied wall.
func (g *Grid) IsSolid(tx, ty int) bool {
	if !g.inBounds(tx, ty) {
		return true
	}
	return g.materials[ty*g.width+tx].Solid()
}

// Snap converts one world coordinate to a tile index. Negative coordinates
// map to OffGrid instead of wrapping.
func Snap(c float64) int {
	if c < 0 || math.IsNaN(c) {
		return OffGrid
	}
	t := math.Floor(c / TileSize)
	if t >= float64(OffGrid) {
		return OffGrid
	}
	return int(t)
}

// SnapPoint converts a world point to tile indices.
func SnapPoint(p Vec2) (tx, ty int) {
	return Snap(p.X), Snap(p.Y)
}

// SolidAt reports whether the tile containing world point p is solid.
func (g *Grid) SolidAt(p Vec2) bool {
	return g.IsSolid(SnapPoint(p))
}

// TileCenter returns the world-space centre of tile (tx, ty).
func TileCenter(tx, ty int) Vec2 {
	return Vec2{(float64(tx) + 0.5) * TileSize, (float64(ty) + 0.5) * TileSize}
}

// Widen appends a floor column to the right edge.
func (g *Grid) Widen() {
	h := g.Height()
	w := g.width + 1
	ms := make([]Material, 0, w*h)
	for row := 0; row < h; row++ {
		ms = append(ms, g.materials[row*g.width:(row+1)*g.width]...)
		ms = append(ms, MaterialFloor)
	}
	g.width = w
	g.materials = ms
}

// Thin removes the rightmost column. A one-column grid is left alone.
func (g *Grid) Thin() {
	if g.width <= 1 {
		return
	}
	h := g.Height()
	w := g.width - 1
	ms := make([]Material, 0, w*h)
	for row := 0; row < h; row++ {
		ms = append(ms, g.materials[row*g.width:row*g.width+w]...)
	}
	g.width = w
	g.materials = ms
}

// Heighten appends a floor row to the bottom edge.
func (g *Grid) Heighten() {
	for i := 0; i < g.width; i++ {
		g.materials = append(g.materials, MaterialFloor)
	}
}

// Shorten removes the bottom row. A one-row grid is left alone.
func (g *Grid) Shorten() {
	if g.Height() <= 1 {
		return
	}
	g.materials = g.materials[:len(g.materials)-g.width]
}
