package render

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ayusman/cakecatcher/internal/game"
)

// Effect timings in seconds.
const (
	popupTTL    = 1.0
	popupRise   = 90.0 // pixels per second
	shakeTime   = 0.35
	shakeAmp    = 14.0
	confettiTTL = 1.6
	gravity     = 900.0
)

type popup struct {
	text string
	x, y float64
	ttl  float64
	good bool
}

type particle struct {
	x, y   float64
	vx, vy float64
	ttl    float64
	hue    int
}

// fx holds the short-lived decorations spawned by round effects.
type fx struct {
	rng      *rand.Rand
	popups   []popup
	confetti []particle
	shake    float64
	clock    float64
}

func newFX(seed int64) *fx {
	return &fx{rng: rand.New(rand.NewSource(seed))}
}

// apply spawns decorations for the effects of one tick.
func (f *fx) apply(effects []game.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case game.EffectCatch, game.EffectMilestone:
			f.popups = append(f.popups, popup{
				text: fmt.Sprintf("%+d", e.Delta),
				x:    e.X,
				y:    e.Y,
				ttl:  popupTTL,
				good: e.Delta >= 0,
			})
		case game.EffectCombo:
			f.popups = append(f.popups, popup{
				text: fmt.Sprintf("Combo x%d", e.Combo),
				x:    e.X,
				y:    e.Y - 60,
				ttl:  popupTTL,
				good: true,
			})
		case game.EffectScreenShake:
			f.shake = shakeTime
		case game.EffectConfetti:
			f.burst(e.X, e.Y, 40)
		}
	}
}

func (f *fx) burst(x, y float64, n int) {
	for i := 0; i < n; i++ {
		angle := -math.Pi * f.rng.Float64()
		speed := 300 + 500*f.rng.Float64()
		f.confetti = append(f.confetti, particle{
			x:   x,
			y:   y,
			vx:  math.Cos(angle) * speed,
			vy:  math.Sin(angle) * speed,
			ttl: confettiTTL * (0.6 + 0.4*f.rng.Float64()),
			hue: f.rng.Intn(len(confettiColors)),
		})
	}
}

// update ages every decoration by dt seconds.
func (f *fx) update(dt float64) {
	f.clock += dt
	f.shake = math.Max(0, f.shake-dt)

	kept := f.popups[:0]
	for _, p := range f.popups {
		p.ttl -= dt
		p.y -= popupRise * dt
		if p.ttl > 0 {
			kept = append(kept, p)
		}
	}
	f.popups = kept

	live := f.confetti[:0]
	for _, p := range f.confetti {
		p.ttl -= dt
		p.vy += gravity * dt
		p.x += p.vx * dt
		p.y += p.vy * dt
		if p.ttl > 0 {
			live = append(live, p)
		}
	}
	f.confetti = live
}

// offset returns the camera displacement of the current screen shake.
func (f *fx) offset() (float64, float64) {
	return shakeOffset(f.shake, f.clock)
}

// reset drops every decoration.
func (f *fx) reset() {
	f.popups = f.popups[:0]
	f.confetti = f.confetti[:0]
	f.shake = 0
}

// shakeOffset decays linearly over the remaining shake time.
func shakeOffset(remaining, clock float64) (float64, float64) {
	if remaining <= 0 {
		return 0, 0
	}
	amp := shakeAmp * remaining / shakeTime
	return amp * math.Sin(clock*53), amp * math.Cos(clock*41)
}
