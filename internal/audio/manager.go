package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/Garsondee/Tilefire/internal/sim"
)

const (
	// HearingRange is the distance at which an event is at half volume.
	HearingRange = 320.0
	// PanRange is the horizontal offset that pans a sound fully to one side.
	PanRange = 480.0

	// maxVoices caps concurrent sounds so automatic fire cannot flood the
	// mixer.
	maxVoices = 24
)

// Manager plays event sounds through a single mixer. Every method is safe
// to call before Init or after Close; sounds are then dropped.
type Manager struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	live   bool // mixer is attached to an output
	device bool // output is the speaker
	seed   int64
}

// NewManager creates a manager at the given master volume in [0, 1].
func NewManager(volume float64) *Manager {
	return &Manager{
		mixer:  &beep.Mixer{},
		volume: math.Max(0, math.Min(volume, 1)),
	}
}

// Init opens the speaker and starts playing the mixer.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.live {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(m.mixer)
	m.live = true
	m.device = true
	return nil
}

// Close stops every playing sound.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.live {
		return
	}
	m.lock()
	m.mixer.Clear()
	m.unlock()
	if m.device {
		speaker.Clear()
	}
	m.live = false
	m.device = false
}

func (m *Manager) lock() {
	if m.device {
		speaker.Lock()
	}
}

func (m *Manager) unlock() {
	if m.device {
		speaker.Unlock()
	}
}

// Voices returns how many sounds are still playing.
func (m *Manager) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lock()
	defer m.unlock()
	return m.mixer.Len()
}

// Play starts s at gain in [0, 1] and pan in [-1, 1].
func (m *Manager) Play(s Sound, gain, pan float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.live || gain <= 0 {
		return
	}
	m.seed++
	st := NewSound(s, m.seed)
	if st == nil {
		return
	}
	out := &effects.Pan{Streamer: newVolume(st, gain*m.volume), Pan: pan}

	m.lock()
	defer m.unlock()
	if m.mixer.Len() >= maxVoices {
		return
	}
	m.mixer.Add(out)
}

// Handle plays the sounds for one batch of events as heard from listener.
// Each sound plays at most once per batch, at its loudest instance.
func (m *Manager) Handle(events []sim.Event, listener sim.Vec2) {
	type voice struct {
		gain, pan float64
	}
	var loudest [soundCount]voice
	for _, ev := range events {
		s, ok := ForEvent(ev.Kind)
		if !ok {
			continue
		}
		g, p := Spatialize(ev.Pos, listener)
		if g > loudest[s].gain {
			loudest[s] = voice{gain: g, pan: p}
		}
	}
	for s, v := range loudest {
		if v.gain > 0 {
			m.Play(Sound(s), v.gain, v.pan)
		}
	}
}

// Spatialize returns the gain and pan for a sound at pos heard from
// listener.
func Spatialize(pos, listener sim.Vec2) (gain, pan float64) {
	d := pos.Sub(listener)
	gain = 1 / (1 + d.Len()/HearingRange)
	pan = math.Max(-1, math.Min(d.X/PanRange, 1))
	return gain, pan
}
