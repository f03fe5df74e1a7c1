package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Tilefire/internal/sim"
)

// RawLevel is a level file: a tile map drawn in ASCII plus loadouts.
//
//	#  wall          c  crate        w  window
//	.  floor         ,  grass        _  concrete
//	P  player start  E  enemy        I  intel     W  weapon pickup
//
// Marker cells (P, E, I, W) are floor.
type RawLevel struct {
	Name          string   `yaml:"name"`
	PlayerWeapons []string `yaml:"player_weapons"`
	EnemyWeapons  []string `yaml:"enemy_weapons"`
	PickupWeapon  string   `yaml:"pickup_weapon"`
	Armour        float64  `yaml:"armour"`
	Rows          []string `yaml:"rows"`
}

// LevelEnemy is one enemy spawn.
type LevelEnemy struct {
	Pos     sim.Vec2
	Weapons []string
}

// LevelPickup is one weapon lying in the level at start.
type LevelPickup struct {
	Pos    sim.Vec2
	Weapon string
}

// Level is a parsed, validated level ready to build a session from.
type Level struct {
	Name          string
	Grid          *sim.Grid
	PlayerStart   sim.Vec2
	PlayerWeapons []string
	Armour        float64
	Enemies       []LevelEnemy
	Intel         []sim.Vec2
	Pickups       []LevelPickup
}

// DefaultLevel is the built-in arena used when no level file is configured.
const DefaultLevel = `
name: arena
player_weapons: [pistol]
enemy_weapons: [smg]
pickup_weapon: shotgun
rows:
  - "##############################"
  - "#P...........#...............#"
  - "#............#.......E.......#"
  - "#....W.......#...............#"
  - "#............c.......,,,,....#"
  - "#.....####...........,,,,....#"
  - "#.....#..I...........,,,,..E.#"
  - "#.....#......#...............#"
  - "#............#######w#####...#"
  - "#...E........#___________#...#"
  - "#............#___I_______#...#"
  - "#..cc........#___________#...#"
  - "#............#######.#####...#"
  - "#......................E.....#"
  - "#..........I.................#"
  - "##############################"
`

// LoadLevel reads a level file. An empty path yields DefaultLevel.
func LoadLevel(path string) (*Level, error) {
	if path == "" {
		return ParseLevel([]byte(DefaultLevel))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file: %w", err)
	}
	lvl, err := ParseLevel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lvl, nil
}

// ParseLevel decodes a level from YAML.
func ParseLevel(data []byte) (*Level, error) {
	var raw RawLevel
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing level: %w", err)
	}
	if len(raw.Rows) == 0 {
		return nil, errors.New("level has no rows")
	}
	width := len(raw.Rows[0])
	if width == 0 {
		return nil, errors.New("level rows are empty")
	}

	lvl := &Level{
		Name:          raw.Name,
		PlayerWeapons: raw.PlayerWeapons,
		Armour:        raw.Armour,
	}
	materials := make([]sim.Material, 0, width*len(raw.Rows))
	players := 0
	for ty, row := range raw.Rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d is %d tiles wide, want %d", ty, len(row), width)
		}
		for tx, c := range row {
			m, err := cellMaterial(c)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", ty, tx, err)
			}
			materials = append(materials, m)

			at := sim.TileCenter(tx, ty)
			switch c {
			case 'P':
				lvl.PlayerStart = at
				players++
			case 'E':
				lvl.Enemies = append(lvl.Enemies, LevelEnemy{Pos: at, Weapons: raw.EnemyWeapons})
			case 'I':
				lvl.Intel = append(lvl.Intel, at)
			case 'W':
				if raw.PickupWeapon == "" {
					return nil, fmt.Errorf("row %d col %d: pickup without pickup_weapon", ty, tx)
				}
				lvl.Pickups = append(lvl.Pickups, LevelPickup{Pos: at, Weapon: raw.PickupWeapon})
			}
		}
	}
	if players != 1 {
		return nil, fmt.Errorf("level needs exactly one player start, found %d", players)
	}

	grid, err := sim.GridFromMaterials(width, materials)
	if err != nil {
		return nil, err
	}
	lvl.Grid = grid
	return lvl, nil
}

func cellMaterial(c rune) (sim.Material, error) {
	switch c {
	case '#':
		return sim.MaterialWall, nil
	case 'c':
		return sim.MaterialCrate, nil
	case 'w':
		return sim.MaterialWindow, nil
	case ',':
		return sim.MaterialGrass, nil
	case '_':
		return sim.MaterialConcrete, nil
	case '.', 'P', 'E', 'I', 'W':
		return sim.MaterialFloor, nil
	default:
		return 0, fmt.Errorf("unknown tile %q", c)
	}
}

// Build starts a session on the level. Weapon names are resolved against
// reg; unknown names are an error.
func (l *Level) Build(reg *sim.Registry, seed int64) (*sim.Sim, error) {
	lookup := func(names []string) ([]sim.WeaponID, error) {
		ids := make([]sim.WeaponID, 0, len(names))
		for _, n := range names {
			id, ok := reg.Lookup(n)
			if !ok {
				return nil, fmt.Errorf("unknown weapon %q (have %s)", n, strings.Join(reg.Names(), ", "))
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	s := sim.New(l.Grid, reg, seed, l.PlayerStart)
	s.Player.Health.Armour = l.Armour

	ids, err := lookup(l.PlayerWeapons)
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	for _, id := range ids {
		s.Player.Give(reg, id)
	}

	for i, e := range l.Enemies {
		ids, err := lookup(e.Weapons)
		if err != nil {
			return nil, fmt.Errorf("enemy %d: %w", i, err)
		}
		s.AddEnemy(e.Pos, 0, ids...)
	}
	for _, p := range l.Intel {
		s.AddIntel(p)
	}
	for _, p := range l.Pickups {
		ids, err := lookup([]string{p.Weapon})
		if err != nil {
			return nil, fmt.Errorf("pickup: %w", err)
		}
		s.AddPickup(p.Pos, sim.NewWeaponInstance(ids[0], reg.Get(ids[0])))
	}
	return s, nil
}
