package config

import (
	"errors"
	"fmt"
)

// Validate checks every rule and reports all violations at once. Any error is
// meant to be fatal at startup: a bad spawn table breaks the round invariants.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.World.Width <= 0 || c.World.Height <= 0 {
		fail("world size must be positive, got %.0fx%.0f", c.World.Width, c.World.Height)
	}

	if c.Round.Duration <= 0 {
		fail("round.duration must be positive, got %v", c.Round.Duration)
	}
	if c.Round.RampInterval <= 0 {
		fail("round.ramp_interval must be positive, got %v", c.Round.RampInterval)
	}

	s := c.Spawn
	if s.GoodWeight < 0 || s.BadWeight < 0 || s.SpecialWeight < 0 {
		fail("spawn weights must not be negative (good=%v bad=%v special=%v)",
			s.GoodWeight, s.BadWeight, s.SpecialWeight)
	} else if s.GoodWeight+s.BadWeight+s.SpecialWeight <= 0 {
		fail("at least one spawn weight must be positive")
	}
	if s.BaseInterval <= 0 {
		fail("spawn.base_interval must be positive, got %v", s.BaseInterval)
	}
	if s.IntervalStep < 0 {
		fail("spawn.interval_step must not be negative, got %v", s.IntervalStep)
	}
	if s.MinInterval <= 0 || s.MinInterval > s.BaseInterval {
		fail("spawn.min_interval must be in (0, base_interval], got %v", s.MinInterval)
	}
	if s.BaseSpeedMin <= 0 || s.BaseSpeedMax < s.BaseSpeedMin {
		fail("spawn base speed range [%v, %v] is invalid", s.BaseSpeedMin, s.BaseSpeedMax)
	}
	if s.SpeedK < 0 {
		fail("spawn.speed_k must not be negative, got %v", s.SpeedK)
	}
	if s.ItemSize <= 0 || s.SpecialSize <= 0 {
		fail("item sizes must be positive")
	}
	if s.ItemSize*2 >= c.World.Width || s.SpecialSize*2 >= c.World.Width {
		fail("items must fit twice across the world width")
	}

	p := c.Plate
	if p.Width <= 0 || p.Height <= 0 {
		fail("plate size must be positive, got %.0fx%.0f", p.Width, p.Height)
	}
	if p.Width > c.World.Width {
		fail("plate.width %v exceeds world width %v", p.Width, c.World.Width)
	}
	if p.Smoothing <= 0 || p.Smoothing > 1 {
		fail("plate.smoothing must be in (0, 1], got %v", p.Smoothing)
	}
	if p.BottomOffset < 0 || p.BottomOffset+p.Height > c.World.Height {
		fail("plate.bottom_offset %v places the plate outside the world", p.BottomOffset)
	}

	if c.Scoring.ComboWindow < 0 {
		fail("scoring.combo_window must not be negative, got %v", c.Scoring.ComboWindow)
	}
	for streak := range c.Scoring.ComboMilestones {
		if streak < 2 {
			fail("combo milestone %d must be at least 2", streak)
		}
	}

	if c.Camera.FPS <= 0 {
		fail("camera.fps must be positive, got %d", c.Camera.FPS)
	}
	if c.Detector.MaxHands < 1 {
		fail("detector.max_hands must be at least 1, got %d", c.Detector.MaxHands)
	}
	if !inUnit(c.Detector.MinConfidence) || !inUnit(c.Detector.MinTrackingConfidence) {
		fail("detector confidences must be in [0, 1]")
	}

	return errors.Join(errs...)
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
