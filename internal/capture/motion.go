package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	// BlurKernel is the Gaussian blur kernel size applied before differencing.
	BlurKernel = 21
	// PixelDelta is the grey-level change that counts a pixel as moved.
	PixelDelta = 25
	// DefaultHold keeps the gate open this long after the last motion.
	DefaultHold = 2 * time.Second
)

// MotionGate decides whether a frame is worth running hand detection on. A
// still scene keeps the last hand sample valid, so inference can be skipped
// until something moves again.
type MotionGate struct {
	threshold float64
	hold      time.Duration
	now       func() time.Time

	prev       gocv.Mat
	primed     bool
	lastMotion time.Time
	mu         sync.Mutex
}

// NewMotionGate creates a gate. threshold is the percentage of pixels that
// must change between frames; hold keeps the gate open after motion stops.
func NewMotionGate(threshold float64, hold time.Duration) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		hold:      hold,
		now:       time.Now,
		prev:      gocv.NewMat(),
	}
}

// SetClock replaces the time source used for the hold window.
func (g *MotionGate) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Change returns the percentage of pixels that changed since the previous
// frame. The first frame after construction or Reset returns 0.
func (g *MotionGate) Change(frame *gocv.Mat) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.change(frame)
}

func (g *MotionGate) change(frame *gocv.Mat) float64 {
	if frame == nil || frame.Empty() {
		return 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: BlurKernel, Y: BlurKernel}, 0, 0, gocv.BorderDefault)

	if !g.primed {
		blurred.CopyTo(&g.prev)
		g.primed = true
		return 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, PixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100

	blurred.CopyTo(&g.prev)
	return changed
}

// Open reports whether detection should run on this frame: either the frame
// moved more than the threshold, or motion was seen within the hold window.
// The very first frame always opens the gate so a hand can be found at once.
func (g *MotionGate) Open(frame *gocv.Mat) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	first := !g.primed
	changed := g.change(frame)
	now := g.now()

	if first || changed > g.threshold {
		g.lastMotion = now
		return true
	}
	return now.Sub(g.lastMotion) < g.hold
}

// Reset drops the reference frame.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

// Close releases the reference frame. The gate can still be used afterwards;
// the next frame becomes the new reference.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

func (g *MotionGate) release() {
	if !g.prev.Empty() {
		g.prev.Close()
		g.prev = gocv.NewMat()
	}
	g.primed = false
	g.lastMotion = time.Time{}
}
