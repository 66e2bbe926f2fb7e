package app

import (
	"context"
	"log"
	"time"
)

// TickRate is the frame rate of the headless and tray game loop. The window
// UI ticks from its own frame callback at the same rate.
const TickRate = 30

// MaxStep caps the time a single tick may advance so a stalled loop does not
// make items jump through the plate.
const MaxStep = 0.1

// Run ticks the session at TickRate until ctx is cancelled. dt is measured
// from the wall clock and capped at MaxStep.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / TickRate)
	defer ticker.Stop()

	log.Printf("Game loop started at %d ticks/s", TickRate)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Println("Game loop stopped")
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt > MaxStep {
				dt = MaxStep
			}
			s.Step(dt)
		}
	}
}
