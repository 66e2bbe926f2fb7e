// Package tracker turns webcam frames into plate steering samples. It runs
// capture and hand detection on its own goroutine and publishes the latest
// fingertip position for the game loop to read without blocking.
package tracker

import (
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/cakecatcher/internal/capture"
	"github.com/ayusman/cakecatcher/internal/detector"
)

// Options configures a Tracker.
type Options struct {
	FPS             int
	MotionThreshold float64
	MinConfidence   float64
}

// Tracker publishes the most recent hand sample. It implements the game's
// pointer source.
type Tracker struct {
	camera   capture.Camera
	detector detector.Detector
	gate     *capture.MotionGate
	opts     Options

	x  atomic.Uint64 // math.Float64bits of the last sample
	ok atomic.Bool

	previewMu sync.RWMutex
	preview   []byte
	frameSeq  uint64

	detections atomic.Uint64
	skipped    atomic.Uint64

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

// New creates a tracker. It does not open the camera until Start.
func New(camera capture.Camera, det detector.Detector, opts Options) *Tracker {
	if opts.FPS <= 0 {
		opts.FPS = capture.DefaultFPS
	}
	return &Tracker{
		camera:   camera,
		detector: det,
		gate:     capture.NewMotionGate(opts.MotionThreshold, capture.DefaultHold),
		opts:     opts,
	}
}

// PointerX returns the last fingertip position in [0,1] and whether a hand
// was visible in the last processed frame.
func (t *Tracker) PointerX() (float64, bool) {
	if !t.ok.Load() {
		return 0, false
	}
	return math.Float64frombits(t.x.Load()), true
}

func (t *Tracker) publish(x float64, ok bool) {
	if ok {
		t.x.Store(math.Float64bits(x))
	}
	t.ok.Store(ok)
}

// Preview returns the latest camera frame as JPEG and a sequence number that
// changes with every new frame. It returns nil before the first frame.
func (t *Tracker) Preview() ([]byte, uint64) {
	t.previewMu.RLock()
	defer t.previewMu.RUnlock()
	return t.preview, t.frameSeq
}

// Stats reports how many frames ran detection and how many the motion gate
// skipped.
func (t *Tracker) Stats() (detected, skipped uint64) {
	return t.detections.Load(), t.skipped.Load()
}

// Start opens the camera and begins tracking. Calling Start on a running
// tracker does nothing.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh != nil {
		return nil
	}

	if err := t.camera.Open(); err != nil {
		return err
	}
	t.camera.SetFPS(t.opts.FPS)

	t.stopCh = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.stopCh, t.done)

	log.Printf("Hand tracker started at %d fps", t.opts.FPS)
	return nil
}

// Stop halts tracking, waits for the loop to exit and releases the camera and
// detector.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh == nil {
		return
	}
	close(t.stopCh)
	<-t.done
	t.stopCh = nil
	t.done = nil

	if err := t.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	t.gate.Close()
	if t.detector != nil {
		if err := t.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
	t.publish(0, false)

	log.Println("Hand tracker stopped")
}

func (t *Tracker) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(t.opts.FPS))
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if err := t.step(); err != nil {
				if !failing {
					log.Printf("Error reading frame: %v", err)
					failing = true
				}
				continue
			}
			if failing {
				log.Println("Camera frames recovered")
				failing = false
			}
		}
	}
}

// step reads and processes one frame.
func (t *Tracker) step() error {
	frame, err := t.camera.ReadFrame()
	if err != nil {
		t.publish(0, false)
		return err
	}
	defer frame.Close()

	if jpeg, err := capture.EncodeJPEG(frame); err == nil {
		t.previewMu.Lock()
		t.preview = jpeg
		t.frameSeq++
		t.previewMu.Unlock()
	}

	// A still scene keeps the previous sample.
	if !t.gate.Open(frame) {
		t.skipped.Add(1)
		return nil
	}

	if t.detector == nil {
		t.publish(0, false)
		return nil
	}

	hands, err := t.detector.Detect(frame)
	t.detections.Add(1)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		t.publish(0, false)
		return nil
	}

	t.publish(detector.PointerX(hands, t.opts.MinConfidence))
	return nil
}
