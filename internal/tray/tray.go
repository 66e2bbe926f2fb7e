// Package tray provides a system tray menu for running Cake Catcher in the
// browser: round commands, a live score line and a shortcut to the game page.
package tray

import (
	"fmt"
	"math"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/cakecatcher/internal/game"
)

// Tray represents the system tray application.
type Tray struct {
	onCommand func(action string)
	onOpen    func()
	onQuit    func()
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuStatus  *systray.MenuItem
	menuStart   *systray.MenuItem
	menuRestart *systray.MenuItem
	menuStop    *systray.MenuItem
	lastStatus  string
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnCommand sets the callback for the start, restart and stop items. It
// receives the command name.
func (t *Tray) OnCommand(fn func(action string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCommand = fn
}

// OnOpen sets the callback for the "Open Game" item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Cake Catcher")
	systray.SetTooltip("Cake Catcher: catch the cakes with your hand")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(StatusLine(game.RoundState{}), "Current round")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuStart = systray.AddMenuItem("Start Round", "Start a new round")
	t.menuRestart = systray.AddMenuItem("Play Again", "Restart after game over")
	t.menuStop = systray.AddMenuItem("Stop Round", "Back to the menu")
	t.menuRestart.Disable()
	t.menuStop.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Game...", "Open the game in the browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Cake Catcher")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuStart.ClickedCh:
				t.handleCommand("start")
			case <-t.menuRestart.ClickedCh:
				t.handleCommand("restart")
			case <-t.menuStop.ClickedCh:
				t.handleCommand("stop")
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleCommand(action string) {
	t.mu.RLock()
	callback := t.onCommand
	t.mu.RUnlock()

	if callback != nil {
		callback(action)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetState updates the score line and enables the items that apply in the
// current phase. It is cheap to call every tick; the menu only changes when
// the text does.
func (t *Tray) SetState(st game.RoundState) {
	status := StatusLine(st)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.menuStatus == nil || status == t.lastStatus {
		return
	}
	t.lastStatus = status
	t.menuStatus.SetTitle(status)

	enable := func(item *systray.MenuItem, on bool) {
		if on {
			item.Enable()
		} else {
			item.Disable()
		}
	}
	enable(t.menuStart, st.Phase == game.Idle)
	enable(t.menuRestart, st.Phase == game.GameOver)
	enable(t.menuStop, st.Phase != game.Idle)
}

// StatusLine formats the round for the tray menu.
func StatusLine(st game.RoundState) string {
	switch st.Phase {
	case game.Running:
		return fmt.Sprintf("Score %d · %ds left · Level %d", st.Score, int(math.Ceil(st.Remaining)), st.Level)
	case game.GameOver:
		return fmt.Sprintf("Game over · Score %d", st.Score)
	default:
		return "Ready to play"
	}
}
