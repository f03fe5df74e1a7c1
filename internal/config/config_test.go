package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Tilefire/internal/sim"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `
logLevel: debug
seed: 42
window:
  width: 1280
audio:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tilefire.yaml"), []byte(cfg), 0o644))

	require.NoError(t, Load(dir))

	s, err := Get()
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, 1280, s.Window.Width)
	assert.Equal(t, 640, s.Window.Height)
	assert.False(t, s.Audio.Enabled)
	assert.Equal(t, 0.5, s.Audio.Volume)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(t.TempDir()))

	assert.Equal(t, "info", GetString("logLevel"))
	assert.Equal(t, 1, GetInt("seed"))
	assert.Equal(t, 60, GetInt("tickRate"))
	assert.Equal(t, "", GetString("weaponsFile"))
	assert.Equal(t, "", GetString("levelFile"))
	assert.Equal(t, 960, GetInt("window.width"))
	assert.True(t, GetBool("audio.enabled"))
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tilefire.yaml"), []byte("seed: [1, 2\n"), 0o644))

	err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGet_RejectsBadValues(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(t.TempDir()))

	viper.Set("tickRate", 0)
	_, err := Get()
	require.Error(t, err)

	viper.Set("tickRate", 60)
	viper.Set("audio.volume", 3)
	_, err = Get()
	require.Error(t, err)
}

const weaponsYAML = `
weapons:
  - name: revolver
    slot: holster
    clip_size: 6
    clip_count: 3
    damage: 45
    penetration: 0.4
    fire_rate: 0.4
    reload_time: 2
    fire_mode: semi_automatic
    spray: [1, 2]
    spray_decay: 0.5
    spray_repeat: 1
    bullet_speed: 1500
  - name: coach_gun
    slot: sling
    clip_size: 2
    clip_count: 6
    damage: 12
    penetration: 0.1
    fire_rate: 0.3
    reload_time: 2.5
    fire_mode: pump_action
    shells_per_pull: 9
    spray: [-5, 5]
    bullet_speed: 1000
`

func TestParseWeapons(t *testing.T) {
	ws, err := ParseWeapons([]byte(weaponsYAML))
	require.NoError(t, err)
	require.Len(t, ws, 2)

	rev := ws[0]
	assert.Equal(t, "revolver", rev.Name)
	assert.Equal(t, sim.AffinityHolster, rev.Affinity)
	assert.Equal(t, sim.SemiAutomatic, rev.Mode.Kind)
	assert.InDelta(t, 2*3.141592653589793/180, rev.Spray[1], 1e-12)

	coach := ws[1]
	assert.Equal(t, sim.AffinitySling, coach.Affinity)
	assert.Equal(t, sim.PumpAction, coach.Mode.Kind)
	assert.Equal(t, 9, coach.Mode.ShellsPerPull)
}

func TestParseWeapons_Errors(t *testing.T) {
	_, err := ParseWeapons([]byte("weapons: []"))
	require.Error(t, err)

	_, err = ParseWeapons([]byte("weapons:\n  - name: x\n    fire_mode: burst\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "burst")

	_, err = ParseWeapons([]byte("weapons:\n  - name: x\n    slot: pocket\n    fire_mode: automatic\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pocket")
}

func TestLoadWeapons(t *testing.T) {
	reg, err := LoadWeapons("")
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultRegistry().Names(), reg.Names())

	path := filepath.Join(t.TempDir(), "weapons.yaml")
	require.NoError(t, os.WriteFile(path, []byte(weaponsYAML), 0o644))
	reg, err = LoadWeapons(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"revolver", "coach_gun"}, reg.Names())

	// Parses, but penetration 1 fails template validation.
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
weapons:
  - name: laser
    clip_size: 1
    penetration: 1
    fire_mode: automatic
    bullet_speed: 10
`), 0o644))
	_, err = LoadWeapons(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "penetration")

	_, err = LoadWeapons(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel([]byte(`
name: test
player_weapons: [pistol]
enemy_weapons: [smg, rifle]
pickup_weapon: shotgun
armour: 25
rows:
  - "#####"
  - "#P.E#"
  - "#IW,#"
  - "#####"
`))
	require.NoError(t, err)
	assert.Equal(t, "test", lvl.Name)
	assert.Equal(t, 5, lvl.Grid.Width())
	assert.Equal(t, 4, lvl.Grid.Height())
	assert.Equal(t, sim.TileCenter(1, 1), lvl.PlayerStart)
	require.Len(t, lvl.Enemies, 1)
	assert.Equal(t, []string{"smg", "rifle"}, lvl.Enemies[0].Weapons)
	assert.Equal(t, []sim.Vec2{sim.TileCenter(1, 2)}, lvl.Intel)
	require.Len(t, lvl.Pickups, 1)
	assert.True(t, lvl.Grid.IsSolid(0, 0))
	assert.False(t, lvl.Grid.IsSolid(3, 2))

	s, err := lvl.Build(sim.DefaultRegistry(), 1)
	require.NoError(t, err)
	assert.Equal(t, 25.0, s.Player.Health.Armour)
	require.Len(t, s.Enemies, 1)
	assert.Equal(t, sim.SlotSling, s.Enemies[0].Slots.Active)
	assert.Equal(t, 1, s.IntelRemaining())
	assert.Len(t, s.Pickups, 1)
}

func TestParseLevel_Errors(t *testing.T) {
	cases := map[string]string{
		"ragged":     "rows:\n  - \"#P#\"\n  - \"##\"\n",
		"no player":  "rows:\n  - \"#.#\"\n",
		"two starts": "rows:\n  - \"PP\"\n",
		"bad tile":   "rows:\n  - \"P?\"\n",
		"no rows":    "name: empty\n",
		"pickup":     "rows:\n  - \"PW\"\n",
	}
	for name, doc := range cases {
		_, err := ParseLevel([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLevelBuild_UnknownWeapon(t *testing.T) {
	lvl, err := ParseLevel([]byte("enemy_weapons: [bfg]\nrows:\n  - \"PE\"\n"))
	require.NoError(t, err)
	_, err = lvl.Build(sim.DefaultRegistry(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bfg")
}

func TestLoadLevel_Default(t *testing.T) {
	lvl, err := LoadLevel("")
	require.NoError(t, err)
	assert.Equal(t, "arena", lvl.Name)
	assert.Len(t, lvl.Intel, 3)
	assert.Len(t, lvl.Enemies, 4)

	_, err = lvl.Build(sim.DefaultRegistry(), 7)
	require.NoError(t, err)
}

func TestLoadContent_Builder(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(t.TempDir()))
	s, err := Get()
	require.NoError(t, err)

	c, err := LoadContent(s)
	require.NoError(t, err)
	assert.Equal(t, "arena", c.Level.Name)

	build := c.Builder(s.Seed)
	first, err := build()
	require.NoError(t, err)
	second, err := build()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, len(first.Enemies), len(second.Enemies))

	s.LevelFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = LoadContent(s)
	require.Error(t, err)
}
