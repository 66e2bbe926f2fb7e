package app

import (
	"math"
	"testing"
	"time"

	"github.com/ayusman/cakecatcher/internal/capture"
	"github.com/ayusman/cakecatcher/internal/detector"
	"github.com/ayusman/cakecatcher/internal/tracker"
)

func TestSession_TrackerSteersPlate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	frames := capture.BlankFrames(1)
	defer frames[0].Close()

	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.PointingHand(0.75, 0.95)})

	tr := tracker.New(capture.NewMockCamera(frames, true), det, tracker.Options{FPS: 30, MotionThreshold: 0.5, MinConfidence: 0.7})
	if err := tr.Start(); err != nil {
		t.Fatalf("tracker Start() error = %v", err)
	}
	defer tr.Stop()

	cfg := shortRound(t)
	s := New(Config{Game: cfg, Pointer: tr, Seed: 1})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := tr.PointerX(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("tracker never reported a hand")
		}
		time.Sleep(10 * time.Millisecond)
	}

	for i := 0; i < 120; i++ {
		s.Step(1.0 / 30)
	}

	plate := s.Snapshot().Plate
	want := 0.75 * cfg.World.Width
	if plate.TargetX != want {
		t.Errorf("TargetX = %v, want %v", plate.TargetX, want)
	}
	if math.Abs(plate.X-want) > 1 {
		t.Errorf("X = %v, want close to %v", plate.X, want)
	}
}
