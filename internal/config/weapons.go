package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Tilefire/internal/sim"
)

// RawWeapon is one weapon entry as written in a weapons file. Angles are in
// degrees; everything else uses the simulation's units.
type RawWeapon struct {
	Name          string    `yaml:"name"`
	Slot          string    `yaml:"slot"` // holster or sling
	ClipSize      int       `yaml:"clip_size"`
	ClipCount     int       `yaml:"clip_count"`
	Damage        float64   `yaml:"damage"`
	Penetration   float64   `yaml:"penetration"`
	FireRate      float64   `yaml:"fire_rate"`
	ReloadTime    float64   `yaml:"reload_time"`
	FireMode      string    `yaml:"fire_mode"`
	ShellsPerPull int       `yaml:"shells_per_pull"`
	Spray         []float64 `yaml:"spray"`
	SprayDecay    float64   `yaml:"spray_decay"`
	SprayRepeat   int       `yaml:"spray_repeat"`
	BulletSpeed   float64   `yaml:"bullet_speed"`
}

// RawWeapons is the top level of a weapons file.
type RawWeapons struct {
	Weapons []RawWeapon `yaml:"weapons"`
}

// LoadWeapons reads a weapons file and builds a registry from it. An empty
// path yields the built-in arsenal.
func LoadWeapons(path string) (*sim.Registry, error) {
	if path == "" {
		return sim.DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weapons file: %w", err)
	}
	ws, err := ParseWeapons(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	reg, err := sim.NewRegistry(ws...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// ParseWeapons decodes weapon templates from YAML.
func ParseWeapons(data []byte) ([]sim.Weapon, error) {
	var raw RawWeapons
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing weapons: %w", err)
	}
	if len(raw.Weapons) == 0 {
		return nil, errors.New("no weapons defined")
	}
	out := make([]sim.Weapon, 0, len(raw.Weapons))
	for i, rw := range raw.Weapons {
		w, err := rw.compile()
		if err != nil {
			return nil, fmt.Errorf("weapon %d (%q): %w", i, rw.Name, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func (rw RawWeapon) compile() (sim.Weapon, error) {
	affinity := sim.AffinityHolster
	switch rw.Slot {
	case "", "holster":
	case "sling":
		affinity = sim.AffinitySling
	default:
		return sim.Weapon{}, fmt.Errorf("unknown slot %q", rw.Slot)
	}

	kind, err := sim.ParseFireModeKind(rw.FireMode)
	if err != nil {
		return sim.Weapon{}, err
	}

	spray := make([]float64, len(rw.Spray))
	for i, d := range rw.Spray {
		spray[i] = d * math.Pi / 180
	}

	return sim.Weapon{
		Name:        rw.Name,
		Affinity:    affinity,
		ClipSize:    rw.ClipSize,
		ClipCount:   rw.ClipCount,
		Damage:      rw.Damage,
		Penetration: rw.Penetration,
		FireRate:    rw.FireRate,
		ReloadTime:  rw.ReloadTime,
		Mode:        sim.FireMode{Kind: kind, ShellsPerPull: rw.ShellsPerPull},
		Spray:       spray,
		SprayDecay:  rw.SprayDecay,
		SprayRepeat: rw.SprayRepeat,
		BulletSpeed: rw.BulletSpeed,
	}, nil
}
