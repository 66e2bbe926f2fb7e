package game

import (
	"math"
	"math/rand"

	"github.com/ayusman/cakecatcher/internal/config"
)

// Schedule is the spawner's cursor. It belongs to the round, not the spawner,
// so a round reset also resets spawning.
type Schedule struct {
	NextAt float64
	nextID uint64
}

// Spawner produces falling items. It never keeps the items it creates.
type Spawner struct {
	cfg   config.Spawn
	width float64
	rng   *rand.Rand
	total float64
}

// NewSpawner creates a spawner for a field of the given width.
// The config must already be validated.
func NewSpawner(cfg config.Spawn, worldWidth float64, rng *rand.Rand) *Spawner {
	return &Spawner{
		cfg:   cfg,
		width: worldWidth,
		rng:   rng,
		total: cfg.GoodWeight + cfg.BadWeight + cfg.SpecialWeight,
	}
}

// Interval returns the seconds between spawns at the given difficulty level.
// It never increases with level.
func (s *Spawner) Interval(level int) float64 {
	interval := s.cfg.BaseInterval - s.cfg.IntervalStep*float64(level)
	return math.Max(s.cfg.MinInterval, interval)
}

// SpeedMultiplier returns the fall-speed factor for the given level.
func (s *Spawner) SpeedMultiplier(level int) float64 {
	return 1 + s.cfg.SpeedK*float64(level)
}

// Tick spawns at most one item when the schedule is due at elapsed seconds.
// The first item of a round is due immediately.
func (s *Spawner) Tick(sched *Schedule, elapsed float64, level int) (Item, bool) {
	if elapsed < sched.NextAt {
		return Item{}, false
	}
	sched.NextAt = elapsed + s.Interval(level)
	sched.nextID++
	return s.newItem(sched.nextID, s.pick(), level), true
}

// pick selects a category by weighted random choice.
func (s *Spawner) pick() Category {
	r := s.rng.Float64() * s.total
	if r < s.cfg.GoodWeight {
		return Good
	}
	r -= s.cfg.GoodWeight
	if r < s.cfg.BadWeight {
		return Bad
	}
	if s.cfg.SpecialWeight > 0 {
		return Special
	}
	// Float rounding on the last bucket
	if s.cfg.BadWeight > 0 {
		return Bad
	}
	return Good
}

func (s *Spawner) newItem(id uint64, cat Category, level int) Item {
	size := s.cfg.ItemSize
	if cat == Special {
		size = s.cfg.SpecialSize
	}

	// Keep a full item width of margin on both sides.
	minX, maxX := size, s.width-size
	x := minX + s.rng.Float64()*(maxX-minX)

	base := s.cfg.BaseSpeedMin + s.rng.Float64()*(s.cfg.BaseSpeedMax-s.cfg.BaseSpeedMin)

	return Item{
		ID:       id,
		Category: cat,
		X:        x,
		Y:        -size / 2,
		Size:     size,
		Speed:    base * s.SpeedMultiplier(level),
	}
}
