// Package input maps debounced button presses to shared state changes.
package input

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sweeney/filament-dryer/internal/catalog"
	"github.com/sweeney/filament-dryer/internal/display"
	"github.com/sweeney/filament-dryer/internal/state"
)

// DebounceInterval is the minimum time between accepted presses of one button.
const DebounceInterval = 50 * time.Millisecond

// Button identifies one of the four front-panel buttons.
type Button int

const (
	Back Button = iota
	Confirm
	Left
	Right

	numButtons
)

func (b Button) String() string {
	switch b {
	case Back:
		return "BACK"
	case Confirm:
		return "CONFIRM"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	}
	return fmt.Sprintf("Button(%d)", int(b))
}

// Buttons returns all buttons.
func Buttons() []Button {
	return []Button{Back, Confirm, Left, Right}
}

// debouncer drops edges that arrive within DebounceInterval of the last
// accepted one.
type debouncer struct {
	mu       sync.Mutex
	last     time.Time
	accepted bool
}

func (d *debouncer) accept(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.accepted && now.Sub(d.last) < DebounceInterval {
		return false
	}
	d.last = now
	d.accepted = true
	return true
}

// Controller receives button edges from any goroutine.
type Controller struct {
	state    *state.Shared
	now      func() time.Time
	debounce [numButtons]debouncer
}

// NewController returns a Controller mutating sh. now stamps presses.
func NewController(sh *state.Shared, now func() time.Time) *Controller {
	return &Controller{state: sh, now: now}
}

// Press handles a falling edge on b. It returns false if the edge was
// discarded as a bounce.
func (c *Controller) Press(b Button) bool {
	if b < 0 || b >= numButtons {
		return false
	}
	t := c.now()
	if !c.debounce[b].accept(t) {
		return false
	}

	c.state.Update(func(s *state.State) {
		Apply(s, b, t)
	})
	log.Printf("button: %s pressed", b)
	return true
}

// Apply performs the state change for one accepted press at time now.
//
// Left and Right move the hovered material whatever screen is showing.
func Apply(s *state.State, b Button, now time.Time) {
	switch b {
	case Back:
		if s.Display == display.ModeIdle {
			s.Display = display.ModeMenu
		}
	case Confirm:
		if s.Display == display.ModeMenu {
			s.Active = s.Hovered
			s.Heater = state.HeaterRunning
			s.Display = display.ModeIdle
			s.CycleStarted = now
		}
	case Right:
		s.Hovered = catalog.Next(s.Hovered)
	case Left:
		s.Hovered = catalog.Prev(s.Hovered)
	}
}
