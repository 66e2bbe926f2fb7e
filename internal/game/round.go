package game

import (
	"log"
	"math/rand"

	"github.com/ayusman/cakecatcher/internal/config"
)

// Controller owns one round: the clock, the difficulty ramp, the active items
// and the plate. It is not safe for concurrent use; hosts call it from a single
// frame loop.
type Controller struct {
	cfg      *config.Config
	pointer  PointerSource
	spawner  *Spawner
	collider *Collider
	input    *InputMapper

	state    RoundState
	sched    Schedule
	nextRamp float64
	combo    combo
	plate    Plate
	items    []Item
	effects  []Effect
}

// NewController creates a controller in the Idle phase. cfg must be validated.
// A nil pointer source leaves the plate where it is.
func NewController(cfg *config.Config, pointer PointerSource, rng *rand.Rand) *Controller {
	c := &Controller{
		cfg:      cfg,
		pointer:  pointer,
		spawner:  NewSpawner(cfg.Spawn, cfg.World.Width, rng),
		collider: NewCollider(cfg.Scoring, cfg.World.Height),
		input:    NewInputMapper(cfg.Plate, cfg.World.Width),
		plate:    NewPlate(cfg.Plate, cfg.World),
	}
	c.reset()
	c.state.Phase = Idle
	return c
}

// Start begins a round from Idle. It is a no-op in any other phase.
func (c *Controller) Start() {
	if c.state.Phase != Idle {
		return
	}
	c.begin()
}

// Restart begins a fresh round after game over. It is a no-op while running
// or idle.
func (c *Controller) Restart() {
	if c.state.Phase != GameOver {
		return
	}
	c.begin()
}

// Stop abandons the current round and returns to Idle.
func (c *Controller) Stop() {
	if c.state.Phase == Idle {
		return
	}
	c.reset()
	c.state.Phase = Idle
	log.Println("Round stopped")
}

func (c *Controller) begin() {
	c.reset()
	c.state.Phase = Running
	log.Printf("Round started (%.0fs, ramp every %.0fs)", c.cfg.Round.Duration, c.cfg.Round.RampInterval)
}

// reset clears everything a round accumulates. The plate keeps its position.
func (c *Controller) reset() {
	c.state = RoundState{Remaining: c.cfg.Round.Duration}
	c.sched = Schedule{}
	c.nextRamp = c.cfg.Round.RampInterval
	c.combo = newCombo(c.cfg.Scoring)
	c.items = nil
	c.effects = nil
}

// Tick advances the game by dt seconds and returns the resulting snapshot.
// Outside the Running phase only the plate moves.
func (c *Controller) Tick(dt float64) Snapshot {
	c.effects = c.effects[:0]
	if dt < 0 {
		dt = 0
	}

	if c.pointer != nil {
		x, ok := c.pointer.PointerX()
		c.input.Apply(&c.plate, x, ok)
	} else {
		c.input.Apply(&c.plate, 0, false)
	}

	if c.state.Phase == Running {
		c.advance(dt)
	}

	return c.Snapshot()
}

func (c *Controller) advance(dt float64) {
	st := &c.state
	st.Elapsed += dt
	if st.Elapsed > c.cfg.Round.Duration {
		st.Elapsed = c.cfg.Round.Duration
	}
	st.Remaining = c.cfg.Round.Duration - st.Elapsed

	for st.Elapsed >= c.nextRamp {
		st.Level++
		c.nextRamp += c.cfg.Round.RampInterval
		c.effects = append(c.effects, Effect{Kind: EffectLevelUp})
		log.Printf("Difficulty level %d at %.1fs (spawn every %.2fs, speed x%.2f)",
			st.Level, st.Elapsed, c.spawner.Interval(st.Level), c.spawner.SpeedMultiplier(st.Level))
	}

	if st.Remaining <= 0 {
		st.Phase = GameOver
		st.Combo, st.ComboTimer = 0, 0
		c.effects = append(c.effects, Effect{Kind: EffectGameOver})
		log.Printf("Round over, final score %d", st.Score)
		return
	}

	c.combo.decay(dt)

	if it, ok := c.spawner.Tick(&c.sched, st.Elapsed, st.Level); ok {
		c.items = append(c.items, it)
	}

	out := c.collider.Update(c.plate, c.items, dt)
	c.items = out.Items
	st.Score += out.ScoreDelta
	st.Caught += len(out.Caught)
	st.Missed += len(out.Missed)

	for _, e := range out.Effects {
		c.effects = append(c.effects, e)
		if e.Kind != EffectCatch {
			continue
		}
		cues, bonus := c.combo.observe(e)
		st.Score += bonus
		c.effects = append(c.effects, cues...)
	}

	st.Combo, st.ComboTimer = c.combo.count, c.combo.timer
}

// State returns the current round state.
func (c *Controller) State() RoundState {
	return c.state
}

// Snapshot returns a copy of the current game state. The item and effect
// slices are copies the caller may keep.
func (c *Controller) Snapshot() Snapshot {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	effects := make([]Effect, len(c.effects))
	copy(effects, c.effects)

	return Snapshot{
		State:   c.state,
		Plate:   c.plate,
		Items:   items,
		Effects: effects,
	}
}
