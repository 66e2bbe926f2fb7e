package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/cakecatcher/internal/config"
)

// Detector finds hand landmarks in a video frame.
type Detector interface {
	// Detect returns the hands found in frame, best first. An empty slice
	// means no hand is visible.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	MaxHands        int
	MinConfidence   float64
	MinTrackingConf float64
}

// DefaultConfig tracks a single hand, which is all the game steers with.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}

// ConfigFrom converts the detector section of the game config.
func ConfigFrom(c config.Detector) Config {
	return Config{
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinConfidence,
		MinTrackingConf: c.MinTrackingConfidence,
	}
}

// PointerX returns the horizontal position of the index fingertip of the most
// confident hand, normalized to [0,1] of the frame width. ok is false when no
// hand scores at least minScore.
func PointerX(hands []HandLandmarks, minScore float64) (x float64, ok bool) {
	best := -1
	for i := range hands {
		if hands[i].Score < minScore {
			continue
		}
		if best < 0 || hands[i].Score > hands[best].Score {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}

	x = hands[best].Points[IndexTip].X
	if x < 0 {
		x = 0
	} else if x > 1 {
		x = 1
	}
	return x, true
}
