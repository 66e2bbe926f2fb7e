package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/ayusman/cakecatcher/internal/game"
)

const sampleRate = beep.SampleRate(44100)

// fade is the attack and release applied to every note to avoid clicks.
const fade = 8 * time.Millisecond

// SoundManager turns round effects into sounds. All methods are safe to call
// before Initialize or after it failed; they do nothing then.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	muted       bool
	initialized bool
}

// NewSoundManager creates a sound manager at full volume.
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: 1,
	}
}

// Initialize opens the speaker. Calling it twice is a no-op.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to open speaker: %w", err)
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences everything still playing.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// SetVolume sets the master volume in [0, 1].
func (sm *SoundManager) SetVolume(v float64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.volume = math.Max(0, math.Min(1, v))
}

// SetMuted mutes or unmutes new sounds.
func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.muted = muted
}

// Muted reports whether sounds are muted.
func (sm *SoundManager) Muted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

// Play queues the cue of every effect that has one.
func (sm *SoundManager) Play(effs []game.Effect) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted || sm.volume == 0 {
		return
	}

	for _, e := range effs {
		cue, ok := CueFor(e)
		if !ok {
			continue
		}
		s, err := Render(cue, sm.volume)
		if err != nil {
			continue
		}
		speaker.Lock()
		sm.mixer.Add(s)
		speaker.Unlock()
	}
}

// Render builds a finite streamer for cue at the given master volume.
func Render(cue Cue, volume float64) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(cue.Notes))
	for _, n := range cue.Notes {
		tone, err := generators.SineTone(sampleRate, n.Freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.1f Hz: %w", n.Freq, err)
		}
		total := sampleRate.N(n.Duration)
		parts = append(parts, &envelope{
			streamer: beep.Take(total, tone),
			total:    total,
			ramp:     sampleRate.N(fade),
		})
	}
	return gain(beep.Seq(parts...), cue.Gain*volume), nil
}

// gain wraps s in a volume effect. Zero gain is silent since log2(0) is -Inf.
func gain(s beep.Streamer, g float64) beep.Streamer {
	if g <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(g)}
}

// envelope ramps a note in and out linearly.
type envelope struct {
	streamer beep.Streamer
	pos      int
	total    int
	ramp     int
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.ramp > 0 {
			if e.pos < e.ramp {
				vol = float64(e.pos) / float64(e.ramp)
			} else if left := e.total - e.pos; left < e.ramp {
				vol = float64(left) / float64(e.ramp)
			}
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }
