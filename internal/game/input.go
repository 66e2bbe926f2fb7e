package game

import "github.com/ayusman/cakecatcher/internal/config"

// PointerSource reports the latest normalized horizontal hand position.
// ok is false when no hand is visible.
type PointerSource interface {
	PointerX() (x float64, ok bool)
}

// PointerFunc adapts a function to PointerSource.
type PointerFunc func() (float64, bool)

// PointerX calls f.
func (f PointerFunc) PointerX() (float64, bool) { return f() }

// InputMapper turns pointer samples into plate movement. When the pointer is
// missing the plate keeps easing toward the last known target.
type InputMapper struct {
	width     float64
	smoothing float64
}

// NewInputMapper creates a mapper for a field of the given width.
func NewInputMapper(plate config.Plate, worldWidth float64) *InputMapper {
	return &InputMapper{width: worldWidth, smoothing: plate.Smoothing}
}

// NewPlate returns a plate centered horizontally at its resting height.
func NewPlate(cfg config.Plate, world config.World) Plate {
	cx := world.Width / 2
	return Plate{
		X:       cx,
		Y:       world.Height - cfg.BottomOffset - cfg.Height,
		Width:   cfg.Width,
		Height:  cfg.Height,
		TargetX: cx,
	}
}

// Apply updates the plate target from one sample and eases the plate toward
// it by the smoothing factor.
func (m *InputMapper) Apply(p *Plate, x float64, ok bool) {
	if ok {
		p.TargetX = clamp(x*m.width, p.Width/2, m.width-p.Width/2)
	}
	p.X = lerp(p.X, p.TargetX, m.smoothing)
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
