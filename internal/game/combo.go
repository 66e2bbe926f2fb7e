package game

import "github.com/ayusman/cakecatcher/internal/config"

// combo tracks a streak of Good and Special catches. Each one refreshes the
// window; a Bad catch or an expired window ends the streak.
type combo struct {
	window     float64
	milestones map[int]int
	count      int
	timer      float64
}

func newCombo(scoring config.Scoring) combo {
	return combo{window: scoring.ComboWindow, milestones: scoring.ComboMilestones}
}

func (c *combo) reset() {
	c.count = 0
	c.timer = 0
}

// decay runs the window down by dt seconds.
func (c *combo) decay(dt float64) {
	if c.timer <= 0 {
		return
	}
	c.timer -= dt
	if c.timer <= 0 {
		c.reset()
	}
}

// observe folds one catch into the streak. It returns the cues the catch
// triggered and any milestone bonus to add to the score.
func (c *combo) observe(catch Effect) (effects []Effect, bonus int) {
	if c.window <= 0 {
		return nil, 0
	}

	if catch.Category == Bad {
		if c.count > 0 {
			effects = append(effects, Effect{Kind: EffectComboBreak, Category: Bad, X: catch.X, Y: catch.Y, Combo: c.count})
		}
		c.reset()
		return effects, 0
	}

	c.count++
	c.timer = c.window

	if c.count >= 2 {
		effects = append(effects, Effect{Kind: EffectCombo, Category: catch.Category, X: catch.X, Y: catch.Y, Combo: c.count})
	}
	if c.count >= 10 {
		effects = append(effects, Effect{Kind: EffectConfetti, Category: catch.Category, X: catch.X, Y: catch.Y, Combo: c.count})
	}
	if b, ok := c.milestones[c.count]; ok && b != 0 {
		bonus = b
		effects = append(effects, Effect{Kind: EffectMilestone, Category: catch.Category, X: catch.X, Y: catch.Y, Delta: b, Combo: c.count})
	}
	return effects, bonus
}
