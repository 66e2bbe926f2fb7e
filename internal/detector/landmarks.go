// Package detector finds hands in camera frames and reduces them to the
// fingertip position that steers the plate.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbTip     = 4
	IndexMCP     = 5
	IndexTip     = 8
	MiddleMCP    = 9
	MiddleTip    = 12
	RingTip      = 16
	PinkyMCP     = 17
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position. X and Y are normalized to the frame; Z is
// depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Palm returns the centre of the palm, the mean of the wrist and the index and
// pinky knuckles.
func (h *HandLandmarks) Palm() Point3D {
	w, i, p := h.Points[Wrist], h.Points[IndexMCP], h.Points[PinkyMCP]
	return Point3D{
		X: (w.X + i.X + p.X) / 3,
		Y: (w.Y + i.Y + p.Y) / 3,
		Z: (w.Z + i.Z + p.Z) / 3,
	}
}
