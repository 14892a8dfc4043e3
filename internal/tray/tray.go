// Package tray provides a desktop system tray toggle for the
// do-not-disturb flag.
package tray

import (
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/desksentry/internal/dnd"
)

// Tray is the system tray application. Toggling the menu item writes the
// shared do-not-disturb cell, the same cell the HTTP control plane writes.
type Tray struct {
	flag   *dnd.Cell
	onQuit func()
	mu     sync.RWMutex

	menuToggle *systray.MenuItem
	menuState  *systray.MenuItem
}

// New creates a Tray bound to the given cell.
func New(flag *dnd.Cell) *Tray {
	return &Tray{flag: flag}
}

// OnQuit sets the callback invoked when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application. It blocks until systray.Quit()
// is called, so the caller runs it on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Desksentry")
	systray.SetTooltip("Desksentry desk guard")

	t.menuToggle = systray.AddMenuItem(t.toggleTitle(), "Toggle do-not-disturb guarding")
	systray.AddSeparator()

	t.menuState = systray.AddMenuItem("Guard: idle", "Current trigger state")
	t.menuState.Disable()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Desksentry")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit performs cleanup when the tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle flips the do-not-disturb flag.
func (t *Tray) handleToggle() {
	active, _ := t.flag.Get()
	t.flag.Set(!active)

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(t.toggleTitle())
	}
}

// handleQuit runs the quit callback and tears the tray down.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// SetState updates the trigger state display in the menu.
func (t *Tray) SetState(state string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuState != nil {
		t.menuState.SetTitle("Guard: " + state)
	}
}

// toggleTitle renders the menu title for the flag's current value.
func (t *Tray) toggleTitle() string {
	if t.flag.Active(time.Now()) {
		return "● Guarding (do-not-disturb on)"
	}
	return "○ Standing down (do-not-disturb off)"
}
