package game

import "github.com/ayusman/cakecatcher/internal/config"

// Outcome is the result of one collision pass.
type Outcome struct {
	// Items still falling after the pass.
	Items []Item
	// ScoreDelta is the sum of the category values of every caught item.
	ScoreDelta int
	// Effects are the catch cues, in item order.
	Effects []Effect
	// Caught and Missed list every item removed by the pass.
	Caught []Item
	Missed []Item
}

// Collider moves items and resolves catches against the plate.
type Collider struct {
	scoring config.Scoring
	floor   float64
}

// NewCollider creates a collider. Items whose top edge passes worldHeight are
// missed.
func NewCollider(scoring config.Scoring, worldHeight float64) *Collider {
	return &Collider{scoring: scoring, floor: worldHeight}
}

// Value returns the score change for catching an item of the given category.
func (c *Collider) Value(cat Category) int {
	switch cat {
	case Good:
		return c.scoring.Good
	case Bad:
		return c.scoring.Bad
	case Special:
		return c.scoring.Special
	default:
		return 0
	}
}

// Update advances every item by Speed*dt and removes the ones that were caught
// or fell past the bottom. The input slice is not modified.
//
// A catch is a bounding-box overlap with the plate over the distance travelled
// this tick. When an item both overlaps the plate and is past the floor in the
// same tick, the catch wins.
func (c *Collider) Update(plate Plate, items []Item, dt float64) Outcome {
	out := Outcome{Items: make([]Item, 0, len(items))}
	pb := plate.Bounds()

	for _, it := range items {
		prevTop := it.Bounds().Y
		it.Y += it.Speed * dt
		b := it.Bounds()

		// Sweep from the previous position so a fast item cannot tunnel
		// through the plate in one tick.
		swept := Rect{X: b.X, Y: prevTop, W: b.W, H: b.Bottom() - prevTop}

		if swept.Intersects(pb) {
			delta := c.Value(it.Category)
			out.ScoreDelta += delta
			out.Caught = append(out.Caught, it)
			out.Effects = append(out.Effects, Effect{
				Kind:     EffectCatch,
				ItemID:   it.ID,
				Category: it.Category,
				X:        it.X,
				Y:        it.Y,
				Delta:    delta,
			})
			if it.Category == Special {
				out.Effects = append(out.Effects,
					Effect{Kind: EffectScreenShake, ItemID: it.ID, Category: Special, X: it.X, Y: it.Y},
					Effect{Kind: EffectConfetti, ItemID: it.ID, Category: Special, X: it.X, Y: it.Y},
				)
			}
			continue
		}

		if b.Y > c.floor {
			out.Missed = append(out.Missed, it)
			continue
		}

		out.Items = append(out.Items, it)
	}

	return out
}
