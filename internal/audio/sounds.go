// Package audio turns simulation events into synthesized sound effects.
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/Garsondee/Tilefire/internal/sim"
)

// SampleRate is the output rate of every generated sound.
const SampleRate = beep.SampleRate(44100)

// Sound identifies one synthesized effect.
type Sound int

const (
	SoundShot Sound = iota
	SoundClick
	SoundReload
	SoundReady
	SoundThrow
	SoundHit
	SoundDeath
	SoundExplosion
	SoundImpact
	SoundBounce
	SoundPickup
	SoundIntel
	SoundComplete
	soundCount
)

var soundNames = [soundCount]string{
	"shot", "click", "reload", "ready", "throw", "hit", "death",
	"explosion", "impact", "bounce", "pickup", "intel", "complete",
}

func (s Sound) String() string {
	if s < 0 || s >= soundCount {
		return "unknown"
	}
	return soundNames[s]
}

// ForEvent maps an event kind to its sound. Kinds without a sound report
// false.
func ForEvent(k sim.EventKind) (Sound, bool) {
	switch k {
	case sim.EventShot:
		return SoundShot, true
	case sim.EventClick:
		return SoundClick, true
	case sim.EventReload:
		return SoundReload, true
	case sim.EventWeaponReady:
		return SoundReady, true
	case sim.EventThrow:
		return SoundThrow, true
	case sim.EventHit:
		return SoundHit, true
	case sim.EventDeath:
		return SoundDeath, true
	case sim.EventExplosion:
		return SoundExplosion, true
	case sim.EventWallImpact:
		return SoundImpact, true
	case sim.EventGrenadeBounce:
		return SoundBounce, true
	case sim.EventPickup, sim.EventDrop, sim.EventSwitch:
		return SoundPickup, true
	case sim.EventIntel:
		return SoundIntel, true
	case sim.EventLevelComplete:
		return SoundComplete, true
	default:
		return 0, false
	}
}

// WaveType is an oscillator shape.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator is a finite single-frequency tone with an optional linear
// pitch sweep. Noise uses its own seeded source so renders repeat.
type oscillator struct {
	freq, sweep float64 // Hz, Hz per second
	phase       float64
	pos, length int
	wave        WaveType
	rng         *rand.Rand
}

// NewOscillator creates a tone of the given length. sweep bends the pitch
// over time.
func NewOscillator(freq, sweep float64, d time.Duration, wave WaveType, seed int64) beep.Streamer {
	return &oscillator{
		freq:   freq,
		sweep:  sweep,
		length: SampleRate.N(d),
		wave:   wave,
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404 -- audio noise
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.pos >= o.length {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		case WaveNoise:
			v = o.rng.Float64()*2 - 1
		}
		samples[i][0] = v
		samples[i][1] = v

		t := float64(o.pos) / float64(SampleRate)
		f := math.Max(o.freq+o.sweep*t, 0)
		o.phase += f / float64(SampleRate)
		o.phase -= math.Floor(o.phase)
		o.pos++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and an exponential tail.
type envelope struct {
	s       beep.Streamer
	pos     int
	attack  int
	decay   float64 // per-sample multiplier after attack
	current float64
}

// NewEnvelope shapes s with a linear attack and exponential decay at the
// given half-life.
func NewEnvelope(s beep.Streamer, attack, halfLife time.Duration) beep.Streamer {
	hl := math.Max(float64(SampleRate.N(halfLife)), 1)
	return &envelope{
		s:       s,
		attack:  SampleRate.N(attack),
		decay:   math.Pow(0.5, 1/hl),
		current: 1,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	for i := 0; i < n; i++ {
		vol := e.current
		if e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		} else {
			e.current *= e.decay
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// newVolume scales s linearly; zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func tone(freq, sweep float64, d time.Duration, wave WaveType, attack, halfLife time.Duration, seed int64) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, sweep, d, wave, seed), attack, halfLife)
}

// NewSound builds a fresh streamer for s at unity gain. seed drives any
// noise components.
func NewSound(s Sound, seed int64) beep.Streamer {
	ms := time.Millisecond
	switch s {
	case SoundShot:
		return beep.Mix(
			newVolume(tone(0, 0, 120*ms, WaveNoise, 1*ms, 25*ms, seed), 0.7),
			newVolume(tone(180, -900, 120*ms, WaveSquare, 1*ms, 30*ms, seed), 0.3),
		)
	case SoundClick:
		return tone(2200, 0, 25*ms, WaveSquare, 0, 4*ms, seed)
	case SoundReload:
		return beep.Seq(
			tone(700, 0, 40*ms, WaveSquare, 0, 8*ms, seed),
			beep.Silence(SampleRate.N(90*ms)),
			tone(500, 0, 60*ms, WaveSquare, 0, 10*ms, seed),
		)
	case SoundReady:
		return tone(900, 0, 50*ms, WaveSquare, 0, 10*ms, seed)
	case SoundThrow:
		return tone(0, 0, 150*ms, WaveNoise, 40*ms, 40*ms, seed)
	case SoundHit:
		return tone(140, -200, 90*ms, WaveSaw, 1*ms, 25*ms, seed)
	case SoundDeath:
		return tone(220, -300, 500*ms, WaveSaw, 5*ms, 150*ms, seed)
	case SoundExplosion:
		return beep.Mix(
			newVolume(tone(0, 0, 900*ms, WaveNoise, 2*ms, 180*ms, seed), 0.8),
			newVolume(tone(60, -40, 900*ms, WaveSine, 2*ms, 250*ms, seed), 0.6),
		)
	case SoundImpact:
		return tone(0, 0, 50*ms, WaveNoise, 0, 8*ms, seed)
	case SoundBounce:
		return tone(320, -600, 60*ms, WaveSine, 0, 15*ms, seed)
	case SoundPickup:
		return tone(600, 1200, 80*ms, WaveSine, 2*ms, 40*ms, seed)
	case SoundIntel:
		return beep.Seq(
			tone(987.77, 0, 80*ms, WaveSquare, 1*ms, 30*ms, seed),
			tone(1318.51, 0, 200*ms, WaveSquare, 1*ms, 60*ms, seed),
		)
	case SoundComplete:
		return beep.Seq(
			tone(523.25, 0, 150*ms, WaveSine, 2*ms, 80*ms, seed),
			tone(659.25, 0, 150*ms, WaveSine, 2*ms, 80*ms, seed),
			tone(783.99, 0, 400*ms, WaveSine, 2*ms, 200*ms, seed),
		)
	default:
		return nil
	}
}
