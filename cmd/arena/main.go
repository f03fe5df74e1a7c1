package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Tilefire/internal/audio"
	"github.com/Garsondee/Tilefire/internal/config"
	"github.com/Garsondee/Tilefire/internal/logging"
	"github.com/Garsondee/Tilefire/internal/view"
)

func main() {
	var configDir string
	var logFile string
	flag.StringVar(&configDir, "config", ".", "directory holding tilefire.yaml")
	flag.StringVar(&logFile, "log", "", "also write the log to this file")
	flag.Parse()

	boot := logging.New(os.Stderr, logging.Options{Console: true})
	if err := config.Load(configDir); err != nil {
		boot.Fatal().Err(err).Msg("Failed to load config")
	}
	settings, err := config.Get()
	if err != nil {
		boot.Fatal().Err(err).Msg("Invalid config")
	}

	log := logging.New(os.Stderr, logging.Options{Level: settings.LogLevel, Console: true})
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("path", logFile).Msg("Failed to open log file")
		}
		defer f.Close()
		log = logging.NewFile(os.Stderr, f, settings.LogLevel)
	}

	content, err := config.LoadContent(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load game content")
	}
	log.Info().
		Str("level", content.Level.Name).
		Int("weapons", content.Weapons.Len()).
		Int64("seed", settings.Seed).
		Msg("Content loaded")

	sound := startAudio(settings.Audio, log)
	if sound != nil {
		defer sound.Close()
	}

	g, err := view.New(view.Options{
		Width:    settings.Window.Width,
		Height:   settings.Window.Height,
		TickRate: settings.TickRate,
		Registry: content.Weapons,
		Build:    content.Builder(settings.Seed),
		Log:      log,
		Audio:    sound,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start session")
	}

	w, h := g.Layout(0, 0)
	scale := settings.Window.Scale
	if scale <= 0 {
		scale = 1
	}
	ebiten.SetWindowTitle("Tilefire - " + content.Level.Name)
	ebiten.SetWindowSize(int(float64(w)*scale), int(float64(h)*scale))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(settings.TickRate)
	if err := ebiten.RunGame(g); err != nil {
		log.Error().Err(err).Msg("Game exited with error")
	}
}

// startAudio opens the output device. A machine without one still plays,
// silently.
func startAudio(cfg config.AudioConfig, log zerolog.Logger) *audio.Manager {
	if !cfg.Enabled {
		return nil
	}
	m := audio.NewManager(cfg.Volume)
	if err := m.Init(); err != nil {
		log.Warn().Err(err).Msg("Audio unavailable, continuing without sound")
		return nil
	}
	return m
}
