// Package render draws the round in a desktop window with Ebitengine and
// maps keyboard and mouse input to round commands.
package render

import (
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ayusman/cakecatcher/internal/config"
	"github.com/ayusman/cakecatcher/internal/game"
	"github.com/ayusman/cakecatcher/internal/prefs"
	"github.com/ayusman/cakecatcher/internal/store"
)

// TPS is the window frame rate; every frame is one round tick.
const TPS = 30

// Host is the session the window drives.
type Host interface {
	Step(dt float64) game.Snapshot
	Command(action string) error
	PlayerName() string
	LastResult() *store.Score
	Leaderboard() ([]*store.Score, error)
}

// Sound is the mute control of the audio sink.
type Sound interface {
	SetMuted(muted bool)
	Muted() bool
}

// Options configures the window.
type Options struct {
	World config.World
	Title string
	// Sound and Prefs are optional.
	Sound Sound
	Prefs *prefs.Manager
	// Mouse receives the cursor position every frame. A nil Mouse gets a
	// fresh one; pass your own to use it as the session pointer.
	Mouse *MousePointer
}

// Window is an ebiten.Game presenting a session.
type Window struct {
	host  Host
	opts  Options
	sound Sound
	mouse *MousePointer
	fx    *fx

	last   game.Snapshot
	board  []*store.Score
	result *store.Score
	hud    *ebiten.Image
}

// NewWindow creates a window for host.
func NewWindow(host Host, opts Options) *Window {
	if opts.Title == "" {
		opts.Title = "Cake Catcher"
	}
	if opts.Mouse == nil {
		opts.Mouse = &MousePointer{}
	}
	return &Window{
		host:  host,
		opts:  opts,
		sound: opts.Sound,
		mouse: opts.Mouse,
		fx:    newFX(time.Now().UnixNano()),
	}
}

// Run opens the window and blocks until it is closed. It must be called from
// the main goroutine.
func (w *Window) Run() error {
	ebiten.SetWindowSize(int(w.opts.World.Width)/2, int(w.opts.World.Height)/2)
	ebiten.SetWindowTitle(w.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(TPS)
	if w.opts.Prefs != nil {
		p := w.opts.Prefs.Get()
		ebiten.SetFullscreen(p.Fullscreen)
		if w.sound != nil {
			w.sound.SetMuted(!p.SoundEnabled)
		}
	}
	return ebiten.RunGame(w)
}

// Update advances the session by one frame.
func (w *Window) Update() error {
	cx, cy := ebiten.CursorPosition()
	w.mouse.set(float64(cx)/w.opts.World.Width,
		cx >= 0 && cy >= 0 && float64(cx) <= w.opts.World.Width && float64(cy) <= w.opts.World.Height)

	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	w.handleKeys()

	w.present(w.host.Step(1.0 / TPS))
	return nil
}

func (w *Window) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace), inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		w.command("start")
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		w.command("restart")
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		w.command("stop")
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		full := !ebiten.IsFullscreen()
		ebiten.SetFullscreen(full)
		if w.opts.Prefs != nil {
			w.opts.Prefs.SetFullscreen(full)
			w.savePrefs()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		if w.sound == nil {
			return
		}
		muted := !w.sound.Muted()
		w.sound.SetMuted(muted)
		if w.opts.Prefs != nil {
			w.opts.Prefs.SetSoundEnabled(!muted)
			w.savePrefs()
		}
	}
}

func (w *Window) command(action string) {
	if err := w.host.Command(action); err != nil {
		log.Printf("[render] %s: %v", action, err)
	}
}

func (w *Window) savePrefs() {
	if err := w.opts.Prefs.Save(); err != nil {
		log.Printf("[render] failed to save preferences: %v", err)
	}
}

// present records a tick for drawing. Entering game over loads the
// leaderboard once; leaving it clears the decorations.
func (w *Window) present(snap game.Snapshot) {
	prev := w.last.State.Phase
	w.last = snap

	if snap.State.Phase != prev {
		switch snap.State.Phase {
		case game.GameOver:
			w.result = w.host.LastResult()
			board, err := w.host.Leaderboard()
			if err != nil {
				log.Printf("[render] failed to load leaderboard: %v", err)
			}
			w.board = board
		case game.Running, game.Idle:
			w.fx.reset()
			w.board, w.result = nil, nil
		}
	}

	w.fx.apply(snap.Effects)
	w.fx.update(1.0 / TPS)
}

// Draw renders the last presented tick.
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	w.drawField(screen)
	w.drawHUD(screen)
}

// Layout keeps the logical screen at world size; ebiten scales it to the
// window.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(w.opts.World.Width), int(w.opts.World.Height)
}

// MousePointer reports the cursor X as a normalized pointer sample. It is
// written by the window and read by the round on the same frame, but may also
// be read from other goroutines.
type MousePointer struct {
	x  atomic.Uint64
	ok atomic.Bool
}

func (m *MousePointer) set(x float64, ok bool) {
	m.x.Store(math.Float64bits(math.Max(0, math.Min(1, x))))
	m.ok.Store(ok)
}

// PointerX implements game.PointerSource.
func (m *MousePointer) PointerX() (float64, bool) {
	if !m.ok.Load() {
		return 0, false
	}
	return math.Float64frombits(m.x.Load()), true
}
