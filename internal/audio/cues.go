// Package audio plays short procedural sound cues for round effects through
// the system speaker.
package audio

import (
	"math"
	"time"

	"github.com/ayusman/cakecatcher/internal/game"
)

// Note is one tone of a cue.
type Note struct {
	Freq     float64
	Duration time.Duration
}

// Cue is a short sequence of notes played for one effect.
type Cue struct {
	Notes []Note
	// Gain scales the cue relative to the master volume.
	Gain float64
}

// Duration returns the total length of the cue.
func (c Cue) Duration() time.Duration {
	var d time.Duration
	for _, n := range c.Notes {
		d += n.Duration
	}
	return d
}

const (
	blip  = 60 * time.Millisecond
	short = 90 * time.Millisecond
	long  = 180 * time.Millisecond
)

// CueFor returns the sound for an effect. Effects without a sound return false.
func CueFor(e game.Effect) (Cue, bool) {
	switch e.Kind {
	case game.EffectCatch:
		switch e.Category {
		case game.Good:
			return Cue{Notes: []Note{{660, blip}, {880, short}}, Gain: 0.5}, true
		case game.Bad:
			return Cue{Notes: []Note{{220, short}, {146.8, long}}, Gain: 0.6}, true
		case game.Special:
			return Cue{Notes: []Note{{784, blip}, {988, blip}, {1175, blip}, {1568, long}}, Gain: 0.6}, true
		}
	case game.EffectCombo:
		// Pitch climbs with the streak, capped at two octaves.
		step := e.Combo
		if step > 12 {
			step = 12
		}
		freq := 523.25 * math.Pow(2, float64(step)/6)
		return Cue{Notes: []Note{{freq, blip}}, Gain: 0.35}, true
	case game.EffectComboBreak:
		return Cue{Notes: []Note{{330, blip}, {247, short}}, Gain: 0.4}, true
	case game.EffectMilestone, game.EffectConfetti:
		return Cue{Notes: []Note{{1047, blip}, {1319, blip}, {1568, short}}, Gain: 0.45}, true
	case game.EffectLevelUp:
		return Cue{Notes: []Note{{440, short}, {554, short}, {659, long}}, Gain: 0.5}, true
	case game.EffectGameOver:
		return Cue{Notes: []Note{{523, long}, {392, long}, {262, 2 * long}}, Gain: 0.6}, true
	}
	return Cue{}, false
}
