// Package heater runs the per-tick drying control loop: it samples the
// sensors, switches the heater and fan relays, enforces the cycle timer,
// and renders the status screen.
package heater

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/filament-dryer/internal/catalog"
	"github.com/sweeney/filament-dryer/internal/gpio"
	"github.com/sweeney/filament-dryer/internal/sensor"
	"github.com/sweeney/filament-dryer/internal/state"
	"github.com/sweeney/filament-dryer/internal/status"
)

const (
	// DeadBand is the half-width of the hysteresis window around the target.
	DeadBand = 1.5

	// IdleSampleInterval throttles sensor reads while no cycle is running.
	IdleSampleInterval = 30 * time.Second

	// RenderInterval is the minimum time between display refreshes.
	RenderInterval = time.Second

	// renderJitter lets a tick that arrives slightly early still render.
	renderJitter = 10 * time.Millisecond
)

// Renderer draws a two-line frame.
type Renderer interface {
	Render(line1, line2 string) error
}

// Controller owns the relays, sensors and display. Tick must only be
// called from one goroutine.
type Controller struct {
	state   *state.Shared
	sensors []sensor.Reader
	heater  gpio.Relay
	fan     gpio.Relay
	display Renderer
	tracker *status.Tracker
	now     func() time.Time

	reading    sensor.Reading
	lastSample time.Time
	sampled    bool
	lastRender time.Time
	rendered   bool
	counts     status.Counts
}

// New returns a Controller. tracker may be nil.
func New(sh *state.Shared, sensors []sensor.Reader, heater, fan gpio.Relay, display Renderer, tracker *status.Tracker, now func() time.Time) *Controller {
	return &Controller{
		state:   sh,
		sensors: sensors,
		heater:  heater,
		fan:     fan,
		display: display,
		tracker: tracker,
		now:     now,
	}
}

// Reading returns the last averaged sensor reading.
func (c *Controller) Reading() sensor.Reading {
	return c.reading
}

// Counts returns relay switch and cycle counters.
func (c *Controller) Counts() status.Counts {
	return c.counts
}

// Tick runs one decision cycle. The shared state is locked for the whole
// cycle. Bus and relay errors are returned; the caller retries next tick.
// A failed sensor read does not stop the cycle timer or the display: the
// frame is drawn with the last good reading and the error is returned after.
func (c *Controller) Tick() error {
	now := c.now()

	s := c.state.Lock()
	defer c.state.Unlock()

	var sampleErr error
	switch {
	case s.Heater == state.HeaterIdle:
		if err := c.safe(); err != nil {
			return err
		}
		if !c.sampled || now.Sub(c.lastSample) >= IdleSampleInterval {
			sampleErr = c.sample(now)
		}

	case s.Active == catalog.None:
		// Running with nothing selected, e.g. right after the cycle timer
		// expired. Same outputs as idle, no sampling.
		if err := c.safe(); err != nil {
			return err
		}

	default:
		var err error
		if sampleErr, err = c.run(s, now); err != nil {
			return errors.Join(sampleErr, err)
		}
	}

	heaterOn, fanOn, err := c.relayStates()
	if err != nil {
		return errors.Join(sampleErr, err)
	}

	d := status.Dryer{
		HeaterMode: s.Heater,
		Display:    s.Display,
		Active:     s.Active,
		Hovered:    s.Hovered,
		Heater:     heaterOn,
		Fan:        fanOn,
		Reading:    c.reading,
		Remaining:  remaining(*s, now),
	}
	log.Printf("tick: %s", status.Line(d))
	if c.tracker != nil {
		c.tracker.Update(d, c.counts)
	}

	if !c.rendered || now.Sub(c.lastRender) >= RenderInterval-renderJitter {
		c.rendered = true
		c.lastRender = now
		line1, line2 := Frame(*s, c.reading, now)
		if err := c.display.Render(line1, line2); err != nil {
			return errors.Join(sampleErr, fmt.Errorf("render: %w", err))
		}
	}
	return sampleErr
}

// run is the active-cycle branch: sample, fan on, hysteresis, timer.
// sampleErr reports a failed read; the timer is still enforced. err
// reports a relay fault.
func (c *Controller) run(s *state.State, now time.Time) (sampleErr, err error) {
	p := catalog.Get(s.Active)

	if sampleErr = c.sample(now); sampleErr != nil {
		// Without a temperature the heater cannot be regulated.
		if offErr := c.drive(c.heater, false, &c.counts.HeaterOn, &c.counts.HeaterOff); offErr != nil {
			log.Printf("heater: de-energize after sensor failure: %v", offErr)
		}
	} else if err = c.regulate(p); err != nil {
		return nil, err
	}

	if now.Sub(s.CycleStarted) >= p.Duration {
		log.Printf("heater: %s cycle complete after %v", p.Name, now.Sub(s.CycleStarted).Truncate(time.Second))
		s.Active = catalog.None
		s.Hovered = catalog.None
		c.counts.CyclesCompleted++
	}
	return sampleErr, nil
}

// regulate runs the fan and applies the hysteresis law to the heater.
func (c *Controller) regulate(p catalog.Profile) error {
	if err := c.drive(c.fan, true, &c.counts.FanOn, &c.counts.FanOff); err != nil {
		return err
	}

	on, err := c.heater.IsOn()
	if err != nil {
		return fmt.Errorf("heater relay: %w", err)
	}
	if want := Decide(c.reading.Temperature, p.TempC, on); want != on {
		return c.drive(c.heater, want, &c.counts.HeaterOn, &c.counts.HeaterOff)
	}
	return nil
}

// Decide applies the hysteresis law. Below target-DeadBand the heater turns
// on, above target+DeadBand it turns off, and inside the band it keeps its
// current state.
func Decide(temp float64, targetC int, on bool) bool {
	target := float64(targetC)
	switch {
	case temp < target-DeadBand:
		return true
	case temp > target+DeadBand:
		return false
	}
	return on
}

// safe de-energizes both relays.
func (c *Controller) safe() error {
	if err := c.drive(c.heater, false, &c.counts.HeaterOn, &c.counts.HeaterOff); err != nil {
		return err
	}
	return c.drive(c.fan, false, &c.counts.FanOn, &c.counts.FanOff)
}

// drive sets r to want if it is not already there and counts the switch.
func (c *Controller) drive(r gpio.Relay, want bool, onCount, offCount *int) error {
	on, err := r.IsOn()
	if err != nil {
		return fmt.Errorf("read relay: %w", err)
	}
	if on == want {
		return nil
	}
	if err := r.Set(want); err != nil {
		return fmt.Errorf("set relay: %w", err)
	}
	if want {
		*onCount++
	} else {
		*offCount++
	}
	return nil
}

func (c *Controller) relayStates() (heaterOn, fanOn bool, err error) {
	if heaterOn, err = c.heater.IsOn(); err != nil {
		return false, false, fmt.Errorf("heater relay: %w", err)
	}
	if fanOn, err = c.fan.IsOn(); err != nil {
		return false, false, fmt.Errorf("fan relay: %w", err)
	}
	return heaterOn, fanOn, nil
}

// sample reads every sensor and stores their average.
func (c *Controller) sample(now time.Time) error {
	readings := make([]sensor.Reading, 0, len(c.sensors))
	for _, s := range c.sensors {
		r, err := s.Read()
		if err != nil {
			return err
		}
		readings = append(readings, r)
	}
	c.reading = sensor.Average(readings...)
	c.lastSample = now
	c.sampled = true
	return nil
}

func remaining(s state.State, now time.Time) time.Duration {
	if s.Heater != state.HeaterRunning || s.Active == catalog.None {
		return 0
	}
	left := catalog.Get(s.Active).Duration - now.Sub(s.CycleStarted)
	if left < 0 {
		return 0
	}
	return left
}
