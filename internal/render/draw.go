package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/ayusman/cakecatcher/internal/game"
)

// hudScale enlarges the debug font, which is tiny at world resolution.
const hudScale = 3

var (
	background = color.RGBA{R: 255, G: 244, B: 230, A: 255}
	plateColor = color.RGBA{R: 139, G: 90, B: 43, A: 255}
	plateRim   = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	dimColor   = color.RGBA{A: 140}

	confettiColors = []color.RGBA{
		{R: 244, G: 67, B: 54, A: 255},
		{R: 33, G: 150, B: 243, A: 255},
		{R: 76, G: 175, B: 80, A: 255},
		{R: 255, G: 193, B: 7, A: 255},
		{R: 156, G: 39, B: 176, A: 255},
	}
)

// itemColor returns the body color of an item category.
func itemColor(c game.Category) color.RGBA {
	switch c {
	case game.Good:
		return color.RGBA{R: 244, G: 154, B: 193, A: 255}
	case game.Bad:
		return color.RGBA{R: 107, G: 142, B: 35, A: 255}
	case game.Special:
		return color.RGBA{R: 255, G: 215, B: 0, A: 255}
	default:
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
}

func (w *Window) drawField(screen *ebiten.Image) {
	ox, oy := w.fx.offset()
	snap := w.last

	for _, it := range snap.Items {
		cx, cy, r := float32(it.X+ox), float32(it.Y+oy), float32(it.Size/2)
		switch it.Category {
		case game.Bad:
			// Spoiled cakes are drawn square so they read at a glance.
			vector.DrawFilledRect(screen, cx-r, cy-r, 2*r, 2*r, itemColor(it.Category), true)
		case game.Special:
			vector.DrawFilledCircle(screen, cx, cy, r, itemColor(it.Category), true)
			vector.StrokeCircle(screen, cx, cy, r+6, 4, color.White, true)
		default:
			vector.DrawFilledCircle(screen, cx, cy, r, itemColor(it.Category), true)
		}
	}

	p := snap.Plate
	px, py := float32(p.X-p.Width/2+ox), float32(p.Y+oy)
	vector.DrawFilledRect(screen, px, py, float32(p.Width), float32(p.Height), plateColor, true)
	vector.StrokeLine(screen, px, py, px+float32(p.Width), py, 4, plateRim, true)

	for _, c := range w.fx.confetti {
		vector.DrawFilledRect(screen, float32(c.x+ox), float32(c.y+oy), 10, 6, confettiColors[c.hue], false)
	}
}

func (w *Window) drawHUD(screen *ebiten.Image) {
	if w.hud == nil {
		w.hud = ebiten.NewImage(int(w.opts.World.Width)/hudScale, int(w.opts.World.Height)/hudScale)
	}
	w.hud.Clear()

	st := w.last.State
	line := fmt.Sprintf("Score %d   Time %d   Level %d", st.Score, int(math.Ceil(st.Remaining)), st.Level)
	if st.Combo >= 2 {
		line += fmt.Sprintf("   Combo x%d", st.Combo)
	}
	if w.sound != nil && w.sound.Muted() {
		line += "   [muted]"
	}
	ebitenutil.DebugPrintAt(w.hud, line, 8, 6)

	for _, p := range w.fx.popups {
		ebitenutil.DebugPrintAt(w.hud, p.text, int(p.x)/hudScale, int(p.y)/hudScale)
	}

	switch st.Phase {
	case game.Idle:
		w.drawMenu(screen, []string{
			"CAKE CATCHER",
			"",
			"Catch cakes with your hand. Avoid the spoiled ones.",
			"Player: " + w.host.PlayerName(),
			"",
			"SPACE start   F fullscreen   M mute   Q quit",
		})
	case game.GameOver:
		lines := []string{"GAME OVER", "", fmt.Sprintf("Final score %d", st.Score)}
		if res := w.result; res != nil {
			lines = append(lines, fmt.Sprintf("%s caught %d, missed %d", res.Name, res.Caught, res.Missed))
		}
		if len(w.board) > 0 {
			lines = append(lines, "", "Top scores")
			for i, e := range w.board {
				lines = append(lines, fmt.Sprintf("%d. %-12s %6d", i+1, e.Name, e.Score))
			}
		}
		lines = append(lines, "", "R restart   ESC menu")
		w.drawMenu(screen, lines)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(hudScale, hudScale)
	screen.DrawImage(w.hud, op)
}

// drawMenu dims the field and prints lines centered on the HUD layer.
func (w *Window) drawMenu(screen *ebiten.Image, lines []string) {
	vector.DrawFilledRect(screen, 0, 0, float32(w.opts.World.Width), float32(w.opts.World.Height), dimColor, false)

	hw, hh := w.hud.Bounds().Dx(), w.hud.Bounds().Dy()
	const lineHeight = 16
	top := hh/2 - len(lines)*lineHeight/2
	for i, l := range lines {
		// The debug font is 6 pixels wide.
		x := hw/2 - len(l)*6/2
		ebitenutil.DebugPrintAt(w.hud, l, x, top+i*lineHeight)
	}
}
