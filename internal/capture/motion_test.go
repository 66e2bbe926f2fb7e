package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

// fakeClock is advanced by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate(threshold float64, hold time.Duration) (*MotionGate, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	g := NewMotionGate(threshold, hold)
	g.SetClock(clock.now)
	return g, clock
}

func solid(v float64) gocv.Mat {
	m := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	m.SetTo(gocv.NewScalar(v, v, v, 0))
	return m
}

func TestMotionGate_Change(t *testing.T) {
	g, _ := newTestGate(1.0, time.Second)
	defer g.Close()

	black := solid(0)
	defer black.Close()
	white := solid(255)
	defer white.Close()

	if got := g.Change(&black); got != 0 {
		t.Errorf("first frame change = %v, want 0", got)
	}
	if got := g.Change(&black); got != 0 {
		t.Errorf("identical frame change = %v, want 0", got)
	}
	if got := g.Change(&white); got < 50 {
		t.Errorf("black to white change = %v, want > 50", got)
	}
}

func TestMotionGate_Open(t *testing.T) {
	g, clock := newTestGate(1.0, 2*time.Second)
	defer g.Close()

	black := solid(0)
	defer black.Close()
	white := solid(255)
	defer white.Close()

	if !g.Open(&black) {
		t.Fatal("first frame should open the gate")
	}

	clock.advance(time.Second)
	if !g.Open(&black) {
		t.Error("gate closed inside the hold window")
	}

	clock.advance(1500 * time.Millisecond)
	if g.Open(&black) {
		t.Error("gate still open after the hold window with a still scene")
	}

	clock.advance(time.Second)
	if !g.Open(&white) {
		t.Error("gate did not open on motion")
	}
}

func TestMotionGate_ResetPrimesAgain(t *testing.T) {
	g, clock := newTestGate(1.0, time.Second)
	defer g.Close()

	black := solid(0)
	defer black.Close()

	g.Open(&black)
	clock.advance(5 * time.Second)
	if g.Open(&black) {
		t.Fatal("expected a closed gate on a still scene")
	}

	g.Reset()
	if !g.Open(&black) {
		t.Error("first frame after Reset should open the gate")
	}
}

func TestMotionGate_NilFrame(t *testing.T) {
	g, _ := newTestGate(1.0, time.Second)
	defer g.Close()

	if got := g.Change(nil); got != 0 {
		t.Errorf("Change(nil) = %v, want 0", got)
	}
}

func TestMotionGate_CloseTwice(t *testing.T) {
	g := NewMotionGate(1.0, DefaultHold)
	g.Close()
	g.Close()
}
