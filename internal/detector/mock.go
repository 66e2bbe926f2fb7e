package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector returns preset hands. Tests use it to steer the tracker, and
// the game falls back to it when MediaPipe is not installed.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a detector that sees no hands.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

func (m *MockDetector) Close() error {
	return nil
}

// PointingHand returns an open hand with the index fingertip at x (normalized
// frame width) and the given detection score.
func PointingHand(x, score float64) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: score}

	h.Points[Wrist] = Point3D{X: x, Y: 0.85}
	h.Points[ThumbTip] = Point3D{X: x + 0.12, Y: 0.62, Z: 0.03}
	h.Points[IndexMCP] = Point3D{X: x + 0.03, Y: 0.70}
	h.Points[IndexTip] = Point3D{X: x, Y: 0.40}
	h.Points[MiddleMCP] = Point3D{X: x, Y: 0.68}
	h.Points[MiddleTip] = Point3D{X: x - 0.01, Y: 0.45, Z: -0.02}
	h.Points[RingTip] = Point3D{X: x - 0.04, Y: 0.62, Z: -0.03}
	h.Points[PinkyMCP] = Point3D{X: x - 0.06, Y: 0.72}
	h.Points[PinkyTip] = Point3D{X: x - 0.07, Y: 0.66, Z: -0.03}
	return h
}
