// Package state holds the fields shared between button callbacks and the
// control tick.
//
// All access goes through Shared. Button callbacks use Update, which must
// only assign fields: no bus I/O and no blocking while the lock is held.
// The control tick is the single periodic caller and may hold the lock for
// a whole decision cycle via Lock/Unlock, including sensor and display I/O.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/filament-dryer/internal/catalog"
	"github.com/sweeney/filament-dryer/internal/display"
)

// HeaterMode says whether a drying cycle has been committed.
type HeaterMode int

const (
	HeaterIdle HeaterMode = iota
	HeaterRunning
)

func (m HeaterMode) String() string {
	switch m {
	case HeaterIdle:
		return "IDLE"
	case HeaterRunning:
		return "RUNNING"
	}
	return fmt.Sprintf("HeaterMode(%d)", int(m))
}

// State is the set of cross-context fields.
type State struct {
	Heater  HeaterMode
	Display display.Mode
	Active  catalog.Material
	Hovered catalog.Material
	// CycleStarted is only meaningful while Heater is HeaterRunning and
	// Active is not None. It is set together with Active on commit.
	CycleStarted time.Time
}

// Shared guards a State with a single mutex.
type Shared struct {
	mu sync.Mutex
	s  State
}

// New returns the startup state: everything idle, no materials selected.
func New(now time.Time) *Shared {
	return &Shared{
		s: State{
			Heater:       HeaterIdle,
			Display:      display.ModeIdle,
			Active:       catalog.None,
			Hovered:      catalog.None,
			CycleStarted: now,
		},
	}
}

// Update applies fn under one lock acquisition. fn must not block.
func (sh *Shared) Update(fn func(s *State)) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fn(&sh.s)
}

// Lock acquires the lock and returns the state for in-place use until
// Unlock. The pointer must not be retained after Unlock.
func (sh *Shared) Lock() *State {
	sh.mu.Lock()
	return &sh.s
}

// Unlock releases a lock taken by Lock.
func (sh *Shared) Unlock() {
	sh.mu.Unlock()
}

// Snapshot returns a consistent copy of the state.
func (sh *Shared) Snapshot() State {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.s
}
