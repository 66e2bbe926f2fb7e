package game

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/ayusman/cakecatcher/internal/config"
)

// fixedPointer always reports the same sample.
type fixedPointer struct {
	x  float64
	ok bool
}

func (p *fixedPointer) PointerX() (float64, bool) { return p.x, p.ok }

func newTestController(t *testing.T, modify func(c *config.Config)) *Controller {
	t.Helper()
	cfg := config.Default()
	if modify != nil {
		modify(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return NewController(cfg, &fixedPointer{x: 0.5, ok: true}, rand.New(rand.NewSource(42)))
}

func TestController_StartsIdle(t *testing.T) {
	c := newTestController(t, nil)

	snap := c.Tick(1)

	if snap.State.Phase != Idle {
		t.Errorf("Phase = %s, want idle", snap.State.Phase)
	}
	if snap.State.Elapsed != 0 || len(snap.Items) != 0 {
		t.Errorf("idle tick advanced the round: %+v", snap.State)
	}
}

func TestController_StartResetsRound(t *testing.T) {
	c := newTestController(t, nil)
	c.Start()

	st := c.State()
	if st.Phase != Running {
		t.Fatalf("Phase = %s, want running", st.Phase)
	}
	want := RoundState{Phase: Running, Remaining: 60}
	if st != want {
		t.Errorf("State = %+v, want %+v", st, want)
	}
}

func TestController_InvalidCommandsAreNoOps(t *testing.T) {
	c := newTestController(t, nil)

	c.Restart()
	if c.State().Phase != Idle {
		t.Fatalf("Restart from idle changed phase to %s", c.State().Phase)
	}

	c.Start()
	c.Tick(5)
	before := c.Snapshot()

	c.Start()
	c.Restart()

	if after := c.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("commands while running changed state:\nbefore %+v\nafter  %+v", before.State, after.State)
	}
}

func TestController_DifficultyRamp(t *testing.T) {
	t.Run("crossing 15s in one tick increments once", func(t *testing.T) {
		c := newTestController(t, nil)
		c.Start()

		c.Tick(14.9)
		if got := c.State().Level; got != 0 {
			t.Fatalf("Level at 14.9s = %d, want 0", got)
		}

		snap := c.Tick(0.2)
		if got := snap.State.Level; got != 1 {
			t.Errorf("Level at 15.1s = %d, want 1", got)
		}
		if !hasEffect(snap.Effects, EffectLevelUp) {
			t.Error("expected level up effect")
		}

		c.Tick(0.2)
		if got := c.State().Level; got != 1 {
			t.Errorf("Level at 15.3s = %d, want 1 (no re-trigger)", got)
		}
	})

	t.Run("one increment per boundary", func(t *testing.T) {
		c := newTestController(t, nil)
		c.Start()

		c.Tick(31)
		if got := c.State().Level; got != 2 {
			t.Errorf("Level at 31s = %d, want 2", got)
		}
	})

	t.Run("at most four increments per round", func(t *testing.T) {
		c := newTestController(t, nil)
		c.Start()

		prev := 0
		for i := 0; i < 2000; i++ {
			st := c.Tick(1.0 / 30).State
			if st.Level < prev {
				t.Fatalf("Level went down from %d to %d", prev, st.Level)
			}
			if st.Level > prev+1 {
				t.Fatalf("Level jumped from %d to %d", prev, st.Level)
			}
			prev = st.Level
		}
		if prev > 4 {
			t.Errorf("final Level = %d, want at most 4", prev)
		}
	})
}

func TestController_GameOverFreezes(t *testing.T) {
	c := newTestController(t, func(cfg *config.Config) {
		// Keep items on screen so freezing is observable.
		cfg.Spawn.BaseSpeedMin, cfg.Spawn.BaseSpeedMax = 1, 1
		cfg.Spawn.SpeedK = 0
	})
	c.Start()

	c.Tick(59.5)
	if c.State().Phase != Running {
		t.Fatalf("Phase at 59.5s = %s, want running", c.State().Phase)
	}

	snap := c.Tick(0.5)
	if snap.State.Phase != GameOver {
		t.Fatalf("Phase = %s, want game_over", snap.State.Phase)
	}
	if snap.State.Remaining != 0 {
		t.Errorf("Remaining = %v, want 0", snap.State.Remaining)
	}
	if !hasEffect(snap.Effects, EffectGameOver) {
		t.Error("expected game over effect")
	}
	if len(snap.Items) == 0 {
		t.Fatal("expected items frozen on screen")
	}

	frozen := snap
	for i := 0; i < 10; i++ {
		next := c.Tick(1)
		if next.State != frozen.State {
			t.Fatalf("state changed after game over: %+v", next.State)
		}
		if !reflect.DeepEqual(next.Items, frozen.Items) {
			t.Fatal("items moved after game over")
		}
	}
}

func TestController_RestartIsIdempotent(t *testing.T) {
	c := newTestController(t, func(cfg *config.Config) { cfg.Round.Duration = 2 })
	c.Start()
	for c.State().Phase == Running {
		c.Tick(0.25)
	}

	c.Restart()
	once := c.Snapshot()
	c.Restart()
	twice := c.Snapshot()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second restart changed state:\nonce  %+v\ntwice %+v", once, twice)
	}
	want := RoundState{Phase: Running, Remaining: 2}
	if twice.State != want {
		t.Errorf("State = %+v, want %+v", twice.State, want)
	}
	if len(twice.Items) != 0 {
		t.Errorf("expected no items after restart, got %d", len(twice.Items))
	}
}

func TestController_Stop(t *testing.T) {
	c := newTestController(t, nil)
	c.Start()
	c.Tick(3)

	c.Stop()

	snap := c.Snapshot()
	if snap.State.Phase != Idle {
		t.Errorf("Phase = %s, want idle", snap.State.Phase)
	}
	if len(snap.Items) != 0 || snap.State.Elapsed != 0 {
		t.Errorf("Stop did not clear the round: %+v", snap.State)
	}

	c.Start()
	if c.State().Phase != Running {
		t.Errorf("Start after Stop: Phase = %s, want running", c.State().Phase)
	}
}

func TestController_GoodCatchScenario(t *testing.T) {
	c := newTestController(t, nil)
	c.Start()
	c.sched.NextAt = 1000

	c.items = []Item{itemAbovePlate(c.plate, Good)}
	snap := c.Tick(0.1)

	if snap.State.Score != 10 {
		t.Errorf("Score = %d, want 10", snap.State.Score)
	}
	if len(snap.Items) != 0 {
		t.Errorf("expected caught item removed, %d remain", len(snap.Items))
	}
	if snap.State.Level != 0 {
		t.Errorf("Level = %d, want 0", snap.State.Level)
	}
	if snap.State.Caught != 1 || snap.State.Missed != 0 {
		t.Errorf("Caught, Missed = %d, %d, want 1, 0", snap.State.Caught, snap.State.Missed)
	}
}

func TestController_BadCatchCanGoNegative(t *testing.T) {
	c := newTestController(t, nil)
	c.Start()
	c.sched.NextAt = 1000
	c.state.Score = 5

	c.items = []Item{itemAbovePlate(c.plate, Bad)}
	snap := c.Tick(0.1)

	if snap.State.Score != -10 {
		t.Errorf("Score = %d, want -10", snap.State.Score)
	}
}

func TestController_SpecialCatchShakes(t *testing.T) {
	c := newTestController(t, nil)
	c.Start()
	c.sched.NextAt = 1000

	c.items = []Item{itemAbovePlate(c.plate, Special)}
	snap := c.Tick(0.1)

	if snap.State.Score != 50 {
		t.Errorf("Score = %d, want 50", snap.State.Score)
	}
	if !hasEffect(snap.Effects, EffectScreenShake) {
		t.Error("expected screen shake effect")
	}
}

func TestController_HoldsPlateWhenHandLost(t *testing.T) {
	cfg := config.Default()
	ptr := &fixedPointer{x: 0.8, ok: true}
	c := NewController(cfg, ptr, rand.New(rand.NewSource(1)))

	for i := 0; i < 100; i++ {
		c.Tick(1.0 / 30)
	}
	held := c.Snapshot().Plate

	ptr.x, ptr.ok = 0, false
	for i := 0; i < 30; i++ {
		c.Tick(1.0 / 30)
	}

	if got := c.Snapshot().Plate; got.TargetX != held.TargetX {
		t.Errorf("TargetX = %v, want held %v", got.TargetX, held.TargetX)
	}
}

// TestController_RoundInvariants plays full rounds with a sweeping pointer and
// checks the score, ramp and removal invariants on every tick.
func TestController_RoundInvariants(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		cfg := config.Default()
		tick := 0
		ptr := PointerFunc(func() (float64, bool) {
			// Triangle wave across the field, with dropouts.
			phase := float64(tick%120) / 60
			if phase > 1 {
				phase = 2 - phase
			}
			return phase, tick%17 != 0
		})
		c := NewController(cfg, ptr, rand.New(rand.NewSource(seed)))
		c.Start()

		const dt = 1.0 / 30
		sum := 0
		prev := c.Snapshot()

		for prev.State.Phase == Running {
			tick++
			snap := c.Tick(dt)

			caught := map[uint64]bool{}
			for _, e := range snap.Effects {
				switch e.Kind {
				case EffectCatch:
					caught[e.ItemID] = true
					sum += e.Delta
				case EffectMilestone:
					sum += e.Delta
				}
			}
			if snap.State.Score != sum {
				t.Fatalf("seed %d tick %d: Score = %d, sum of catch deltas = %d", seed, tick, snap.State.Score, sum)
			}

			if snap.State.Level < prev.State.Level {
				t.Fatalf("seed %d tick %d: level decreased", seed, tick)
			}

			if snap.State.Phase == Running {
				present := map[uint64]bool{}
				for _, it := range snap.Items {
					present[it.ID] = true
				}
				for _, it := range prev.Items {
					if present[it.ID] || caught[it.ID] {
						continue
					}
					top := it.Y + it.Speed*dt - it.Size/2
					if top <= cfg.World.Height {
						t.Fatalf("seed %d tick %d: item %d dropped at top=%v without catch or miss", seed, tick, it.ID, top)
					}
				}
			}

			prev = snap
		}

		if prev.State.Level > 4 {
			t.Errorf("seed %d: Level = %d, want at most 4", seed, prev.State.Level)
		}
	}
}
