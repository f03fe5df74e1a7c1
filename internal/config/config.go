package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/Garsondee/Tilefire/internal/sim"
)

// FileName is the config file looked up in the config directory.
const FileName = "tilefire"

// WindowConfig holds the windowed driver's settings.
type WindowConfig struct {
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`
	Scale  float64 `mapstructure:"scale"`
}

// AudioConfig holds sound playback settings.
type AudioConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Volume  float64 `mapstructure:"volume"`
}

// Settings is the resolved driver configuration.
type Settings struct {
	LogLevel    string       `mapstructure:"logLevel"`
	Seed        int64        `mapstructure:"seed"`
	TickRate    int          `mapstructure:"tickRate"`
	WeaponsFile string       `mapstructure:"weaponsFile"`
	LevelFile   string       `mapstructure:"levelFile"`
	Window      WindowConfig `mapstructure:"window"`
	Audio       AudioConfig  `mapstructure:"audio"`
}

// Load reads tilefire.yaml from configDir on top of the default values.
// A missing file is not an error: the defaults describe a playable setup.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("seed", 1)
	viper.SetDefault("tickRate", 60)
	viper.SetDefault("weaponsFile", "")
	viper.SetDefault("levelFile", "")

	viper.SetDefault("window.width", 960)
	viper.SetDefault("window.height", 640)
	viper.SetDefault("window.scale", 1.0)

	viper.SetDefault("audio.enabled", true)
	viper.SetDefault("audio.volume", 0.5)

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("TILEFIRE")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Get decodes the loaded values into Settings.
func Get() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding config: %w", err)
	}
	if s.TickRate <= 0 {
		return Settings{}, fmt.Errorf("tickRate %d must be positive", s.TickRate)
	}
	if s.Audio.Volume < 0 || s.Audio.Volume > 1 {
		return Settings{}, fmt.Errorf("audio.volume %v outside [0, 1]", s.Audio.Volume)
	}
	return s, nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Content is the weapon table and level named by a Settings.
type Content struct {
	Weapons *sim.Registry
	Level   *Level
}

// LoadContent reads the weapon table and level the settings point at.
func LoadContent(s Settings) (Content, error) {
	reg, err := LoadWeapons(s.WeaponsFile)
	if err != nil {
		return Content{}, err
	}
	lvl, err := LoadLevel(s.LevelFile)
	if err != nil {
		return Content{}, err
	}
	return Content{Weapons: reg, Level: lvl}, nil
}

// Builder returns a session factory. Each call reseeds from seed plus the
// number of earlier builds so restarts play out differently.
func (c Content) Builder(seed int64) func() (*sim.Sim, error) {
	builds := int64(0)
	return func() (*sim.Sim, error) {
		s, err := c.Level.Build(c.Weapons, seed+builds)
		builds++
		return s, err
	}
}
