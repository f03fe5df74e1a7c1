package logging

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Tilefire/internal/sim"
)

// EventLogger writes simulation events as structured log lines. Gunfire is
// noisy, so shots, clicks and impacts go through a burst sampler.
type EventLogger struct {
	log     zerolog.Logger
	sampled zerolog.Logger
	reg     *sim.Registry
}

// NewEventLogger wraps log for events of sessions using reg.
func NewEventLogger(log zerolog.Logger, reg *sim.Registry) *EventLogger {
	return &EventLogger{
		log: log,
		sampled: log.With().Bool("sampled", true).Logger().Sample(&zerolog.BurstSampler{
			Burst:       20,
			Period:      time.Second,
			NextSampler: &zerolog.BasicSampler{N: 10},
		}),
		reg: reg,
	}
}

// Log writes one line per event raised on tick.
func (l *EventLogger) Log(tick int, events []sim.Event) {
	for _, ev := range events {
		var e *zerolog.Event
		switch ev.Kind {
		case sim.EventShot, sim.EventClick, sim.EventWallImpact, sim.EventGrenadeBounce:
			e = l.sampled.Trace()
		case sim.EventReload, sim.EventWeaponReady, sim.EventSwitch, sim.EventThrow, sim.EventHit:
			e = l.log.Debug()
		default:
			e = l.log.Info()
		}
		if e == nil {
			continue
		}
		e = e.Int("tick", tick).
			Str("actor", ev.Actor.Label()).
			Float64("x", ev.Pos.X).
			Float64("y", ev.Pos.Y)
		if ev.Weapon != sim.NoWeapon && l.reg != nil && int(ev.Weapon) < l.reg.Len() {
			e = e.Str("weapon", l.reg.Get(ev.Weapon).Name)
		}
		e.Msg(ev.Kind.String())
	}
}
