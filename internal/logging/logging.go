// Package logging sets up the drivers' zerolog logger and forwards
// simulation events to it.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a config log level to zerolog. Unknown names fall back to
// info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToUpper(name) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "OFF", "DISABLED":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Options configures New.
type Options struct {
	Level   string
	Console bool // human-readable lines instead of JSON
	NoColor bool
}

// New builds a logger writing to out.
func New(out io.Writer, opts Options) zerolog.Logger {
	w := out
	if opts.Console {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		}
	}
	return zerolog.New(w).Level(level(opts.Level)).With().Timestamp().Logger()
}

// NewFile builds a logger writing colored lines to console and plain lines
// to file.
func NewFile(console, file io.Writer, lvl string) zerolog.Logger {
	mlw := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339},
		zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true},
	)
	return zerolog.New(mlw).Level(level(lvl)).With().Timestamp().Logger()
}

// level parses name and lowers the global level when needed so a
// trace-level logger is not silenced by it.
func level(name string) zerolog.Level {
	lvl := ParseLevel(name)
	if lvl < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(lvl)
	}
	return lvl
}
