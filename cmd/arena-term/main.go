package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Tilefire/internal/audio"
	"github.com/Garsondee/Tilefire/internal/config"
	"github.com/Garsondee/Tilefire/internal/logging"
	"github.com/Garsondee/Tilefire/internal/termview"
)

func main() {
	var configDir string
	var logFile string
	var mute bool
	flag.StringVar(&configDir, "config", ".", "directory holding tilefire.yaml")
	flag.StringVar(&logFile, "log", "", "write the log to this file (discarded when empty)")
	flag.BoolVar(&mute, "mute", false, "disable sound")
	flag.Parse()

	// The terminal owns stdout once the screen starts, so errors before then
	// go to stderr and everything after to the log file.
	boot := logging.New(os.Stderr, logging.Options{Console: true})
	if err := config.Load(configDir); err != nil {
		boot.Fatal().Err(err).Msg("Failed to load config")
	}
	settings, err := config.Get()
	if err != nil {
		boot.Fatal().Err(err).Msg("Invalid config")
	}
	content, err := config.LoadContent(settings)
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to load game content")
	}

	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			boot.Fatal().Err(err).Str("path", logFile).Msg("Failed to open log file")
		}
		defer f.Close()
		out = f
	}
	log := logging.New(out, logging.Options{Level: settings.LogLevel, Console: true, NoColor: true})

	var sound *audio.Manager
	if settings.Audio.Enabled && !mute {
		sound = startAudio(settings.Audio.Volume, log)
	}

	if err := run(settings, content, sound, log); err != nil {
		boot.Error().Err(err).Msg("Terminal session failed")
		os.Exit(1)
	}
}

func run(settings config.Settings, content config.Content, sound *audio.Manager, log zerolog.Logger) error {
	if sound != nil {
		defer sound.Close()
	}

	scr, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := scr.Init(); err != nil {
		return err
	}
	defer scr.Fini()
	scr.HideCursor()

	app, err := termview.NewApp(scr, termview.Options{
		TickRate: settings.TickRate,
		Registry: content.Weapons,
		Build:    content.Builder(settings.Seed),
		Log:      log,
		Audio:    sound,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("level", content.Level.Name).Int64("seed", settings.Seed).Msg("Terminal session started")
	err = app.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info().Int("ticks", app.Sim().TickCount()).Msg("Terminal session ended")
	return err
}

func startAudio(volume float64, log zerolog.Logger) *audio.Manager {
	m := audio.NewManager(volume)
	if err := m.Init(); err != nil {
		log.Warn().Err(err).Msg("Audio unavailable, continuing without sound")
		return nil
	}
	return m
}
