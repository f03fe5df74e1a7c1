package termview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Tilefire/internal/audio"
	"github.com/Garsondee/Tilefire/internal/logging"
	"github.com/Garsondee/Tilefire/internal/sim"
)

// blastTicks is how long an explosion stays drawn.
const blastTicks = 12

// Options configures an App.
type Options struct {
	TickRate int
	Registry *sim.Registry
	Build    func() (*sim.Sim, error)
	Log      zerolog.Logger
	Audio    *audio.Manager // nil plays nothing
}

type blastMark struct {
	pos  sim.Vec2
	left int
}

// App runs one terminal session.
type App struct {
	scr    tcell.Screen
	opts   Options
	dt     float64
	s      *sim.Sim
	intent Intent
	blasts []blastMark
	status string
	events *logging.EventLogger
}

// NewApp builds the first session on an initialised screen.
func NewApp(scr tcell.Screen, opts Options) (*App, error) {
	if opts.Build == nil {
		return nil, errors.New("termview: no session builder")
	}
	if opts.TickRate <= 0 {
		return nil, fmt.Errorf("termview: tick rate %d must be positive", opts.TickRate)
	}
	a := &App{
		scr:    scr,
		opts:   opts,
		dt:     1 / float64(opts.TickRate),
		events: logging.NewEventLogger(opts.Log, opts.Registry),
	}
	if err := a.restart(); err != nil {
		return nil, err
	}
	return a, nil
}

// Sim returns the running session.
func (a *App) Sim() *sim.Sim { return a.s }

func (a *App) restart() error {
	s, err := a.opts.Build()
	if err != nil {
		return fmt.Errorf("building session: %w", err)
	}
	a.s = s
	a.intent = Intent{}
	a.blasts = a.blasts[:0]
	a.status = "collect every $ to win"
	return nil
}

// HandleEvent applies one terminal event.
func (a *App) HandleEvent(ev tcell.Event) Action {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		act := a.intent.Key(ev)
		if act == ActionRestart {
			if err := a.restart(); err != nil {
				a.opts.Log.Error().Err(err).Msg("restart failed")
				a.status = "restart failed"
			}
		}
		return act
	case *tcell.EventResize:
		a.scr.Sync()
	}
	return ActionNone
}

// Step advances one tick and redraws.
func (a *App) Step() {
	in := a.intent.Input(a.s)
	if a.s.Player.Health.IsDead() {
		in = sim.Input{Aim: in.Aim}
	}
	a.s.Tick(a.dt, in)
	events := a.s.DrainEvents()
	a.events.Log(a.s.TickCount(), events)
	if a.opts.Audio != nil {
		a.opts.Audio.Handle(events, a.s.Player.Pos)
	}

	kept := a.blasts[:0]
	for _, b := range a.blasts {
		if b.left--; b.left > 0 {
			kept = append(kept, b)
		}
	}
	a.blasts = kept
	for _, ev := range events {
		switch ev.Kind {
		case sim.EventExplosion:
			a.blasts = append(a.blasts, blastMark{pos: ev.Pos, left: blastTicks})
		case sim.EventIntel:
			a.status = fmt.Sprintf("intel collected, %d left", a.s.IntelRemaining())
		case sim.EventLevelComplete:
			a.status = "all intel secured - F5 to play again"
		case sim.EventDeath:
			if ev.Actor.Kind == sim.ActorPlayer {
				a.status = "you died - F5 to restart"
			}
		}
	}

	marks := make([]sim.Vec2, len(a.blasts))
	for i, b := range a.blasts {
		marks[i] = b.pos
	}
	Render(a.scr, a.s, marks, a.status)
	a.scr.Show()
}

// Run ticks at the configured rate until ctx ends or the user quits.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(float64(time.Second) * a.dt))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.scr.PollEvent()
			if ev == nil {
				return // screen finalised
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-eventChan:
			if a.HandleEvent(ev) == ActionQuit {
				return nil
			}
		case <-ticker.C:
			a.Step()
		}
	}
}
