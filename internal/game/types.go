// Package game implements the Cake Catcher round: item spawning, plate
// movement, catch detection, scoring and the round clock. It has no rendering,
// camera or audio dependencies; hosts drive it through Controller.Tick.
package game

import "fmt"

// Category is the kind of a falling item.
type Category int

const (
	Good Category = iota
	Bad
	Special
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Good:
		return "good"
	case Bad:
		return "bad"
	case Special:
		return "special"
	default:
		return "unknown"
	}
}

// MarshalText lets categories appear by name in JSON snapshots.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category name.
func (c *Category) UnmarshalText(text []byte) error {
	for _, v := range []Category{Good, Bad, Special} {
		if v.String() == string(text) {
			*c = v
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Intersects reports whether two boxes overlap. Touching edges do not count.
func (r Rect) Intersects(o Rect) bool {
	if r.X >= o.Right() || o.X >= r.Right() {
		return false
	}
	if r.Y >= o.Bottom() || o.Y >= r.Bottom() {
		return false
	}
	return true
}

// Item is a falling object. X is fixed at spawn; Y grows every tick.
// Positions are item centers.
type Item struct {
	ID       uint64   `json:"id"`
	Category Category `json:"category"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Size     float64  `json:"size"`
	Speed    float64  `json:"speed"`
}

// Bounds returns the item's collision box.
func (it Item) Bounds() Rect {
	half := it.Size / 2
	return Rect{X: it.X - half, Y: it.Y - half, W: it.Size, H: it.Size}
}

// Plate is the player's catching region. X is the center, Y the top edge.
type Plate struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	TargetX float64 `json:"target_x"`
}

// Bounds returns the plate's collision box.
func (p Plate) Bounds() Rect {
	return Rect{X: p.X - p.Width/2, Y: p.Y, W: p.Width, H: p.Height}
}

// Phase is the round controller state.
type Phase int

const (
	Idle Phase = iota
	Running
	GameOver
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText lets phases appear by name in JSON snapshots.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, v := range []Phase{Idle, Running, GameOver} {
		if v.String() == string(text) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// RoundState is the scoreboard of the current round.
type RoundState struct {
	Phase      Phase   `json:"phase"`
	Elapsed    float64 `json:"elapsed"`
	Remaining  float64 `json:"remaining"`
	Score      int     `json:"score"`
	Level      int     `json:"level"`
	Combo      int     `json:"combo"`
	ComboTimer float64 `json:"combo_timer"`
	Caught     int     `json:"caught"`
	Missed     int     `json:"missed"`
}

// Active reports whether the round is running.
func (s RoundState) Active() bool {
	return s.Phase == Running
}

// EffectKind identifies a visual or audio cue triggered by the round.
type EffectKind int

const (
	EffectCatch EffectKind = iota
	EffectScreenShake
	EffectConfetti
	EffectCombo
	EffectComboBreak
	EffectMilestone
	EffectLevelUp
	EffectGameOver
)

var effectNames = [...]string{
	EffectCatch:       "catch",
	EffectScreenShake: "screen_shake",
	EffectConfetti:    "confetti",
	EffectCombo:       "combo",
	EffectComboBreak:  "combo_break",
	EffectMilestone:   "milestone",
	EffectLevelUp:     "level_up",
	EffectGameOver:    "game_over",
}

// String returns the effect name used on the wire.
func (k EffectKind) String() string {
	if k >= 0 && int(k) < len(effectNames) {
		return effectNames[k]
	}
	return "unknown"
}

// MarshalText lets effect kinds appear by name in JSON snapshots.
func (k EffectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses an effect name.
func (k *EffectKind) UnmarshalText(text []byte) error {
	for i, name := range effectNames {
		if name == string(text) {
			*k = EffectKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown effect %q", text)
}

// Effect is a one-shot cue for render and audio sinks. Delta carries the score
// change for catch and milestone effects; Combo carries the streak length.
type Effect struct {
	Kind     EffectKind `json:"kind"`
	ItemID   uint64     `json:"item_id,omitempty"`
	Category Category   `json:"category"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Delta    int        `json:"delta,omitempty"`
	Combo    int        `json:"combo,omitempty"`
}

// Snapshot is everything a sink needs to present one tick.
type Snapshot struct {
	State   RoundState `json:"state"`
	Plate   Plate      `json:"plate"`
	Items   []Item     `json:"items"`
	Effects []Effect   `json:"effects"`
}
