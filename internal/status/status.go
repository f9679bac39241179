// Package status provides a thread-safe status tracker for the dryer.
// The control tick writes it; the run loop reads it for heartbeat and
// shutdown logging.
package status

import (
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/filament-dryer/internal/catalog"
	"github.com/sweeney/filament-dryer/internal/display"
	"github.com/sweeney/filament-dryer/internal/sensor"
	"github.com/sweeney/filament-dryer/internal/state"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	HeartbeatMs int64
	Chip        string
	Bus         string
}

// Dryer is the controller's view after one tick.
type Dryer struct {
	HeaterMode state.HeaterMode
	Display    display.Mode
	Active     catalog.Material
	Hovered    catalog.Material
	Heater     bool // relay energized
	Fan        bool
	Reading    sensor.Reading
	Remaining  time.Duration // zero unless a cycle is active
}

// Counts tracks relay switching and completed cycles since startup.
type Counts struct {
	HeaterOn        int
	HeaterOff       int
	FanOn           int
	FanOff          int
	CyclesCompleted int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Dryer
	Counts     Counts
	Ticks      int
	TickErrors int
	LastError  string
	StartTime  time.Time
	Now        time.Time
	Config     Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the outcome of a control tick.
func (t *Tracker) Update(d Dryer, counts Counts) {
	t.mu.Lock()
	t.snap.Dryer = d
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordTick counts a tick and remembers its error, if any.
func (t *Tracker) RecordTick(err error) {
	t.mu.Lock()
	t.snap.Ticks++
	if err != nil {
		t.snap.TickErrors++
		t.snap.LastError = err.Error()
	}
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// Line formats d as a single log line.
func Line(d Dryer) string {
	line := fmt.Sprintf("heater=%s fan=%s mode=%s display=%s active=%s hovered=%s temp=%.2fC hum=%.2f%%rh",
		onOff(d.Heater), onOff(d.Fan), d.HeaterMode, d.Display, d.Active, d.Hovered,
		d.Reading.Temperature, d.Reading.Humidity)
	if !d.Reading.Valid {
		line += " crc=BAD"
	}
	if d.Active != catalog.None {
		line += fmt.Sprintf(" remaining=%v", d.Remaining.Truncate(time.Second))
	}
	return line
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
