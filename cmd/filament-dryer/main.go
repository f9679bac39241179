// Command filament-dryer runs the drying control loop: it reads the SHT3x
// sensors, switches the heater and fan relays, and drives the LCD and
// buttons.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/filament-dryer/internal/bus"
	"github.com/sweeney/filament-dryer/internal/config"
	"github.com/sweeney/filament-dryer/internal/display"
	"github.com/sweeney/filament-dryer/internal/gpio"
	"github.com/sweeney/filament-dryer/internal/heater"
	"github.com/sweeney/filament-dryer/internal/input"
	"github.com/sweeney/filament-dryer/internal/lcd"
	"github.com/sweeney/filament-dryer/internal/sensor"
	"github.com/sweeney/filament-dryer/internal/state"
	"github.com/sweeney/filament-dryer/internal/status"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to YAML wiring config")
	printState := flag.Bool("print-state", false, "Print sensor readings and relay states and exit")

	flag.Parse()

	if err := run(*configPath, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath string, printState bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Relays first, so the heater is held off while the rest comes up.
	chip, err := gpio.OpenChip(cfg.GPIO.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	heaterRelay, err := chip.Relay(cfg.GPIO.Heater)
	if err != nil {
		return fmt.Errorf("init heater relay: %w", err)
	}
	defer closeLogged("heater relay", heaterRelay)

	fanRelay, err := chip.Relay(cfg.GPIO.Fan)
	if err != nil {
		return fmt.Errorf("init fan relay: %w", err)
	}
	defer closeLogged("fan relay", fanRelay)

	i2cBus, err := bus.Open(cfg.I2C.Bus)
	if err != nil {
		return fmt.Errorf("init i2c: %w", err)
	}
	defer i2cBus.Close()

	sensors := []probe{
		sensor.New(i2cBus, sensor.AddrDefault),
		sensor.New(i2cBus, sensor.AddrAlternate),
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      cfg.Tick.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Chip:        cfg.GPIO.Chip,
		Bus:         cfg.I2C.Bus,
	})

	// Print state mode
	if printState {
		return printSensors(os.Stdout, sensors, heaterRelay, fanRelay, tracker)
	}

	screen := lcd.New(i2cBus, lcd.Addr)
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init lcd: %w", err)
	}

	sh := state.New(time.Now())

	readers := make([]sensor.Reader, len(sensors))
	for i, s := range sensors {
		readers[i] = s
	}
	ctrl := heater.New(sh, readers, heaterRelay, fanRelay, display.NewDriver(screen), tracker, time.Now)

	buttons := input.NewController(sh, time.Now)
	pins := map[input.Button]int{
		input.Back:    cfg.GPIO.Back,
		input.Confirm: cfg.GPIO.Confirm,
		input.Left:    cfg.GPIO.Left,
		input.Right:   cfg.GPIO.Right,
	}
	for _, b := range input.Buttons() {
		b := b
		line, err := chip.WatchFalling(pins[b], func() { buttons.Press(b) })
		if err != nil {
			return fmt.Errorf("init %s button: %w", b, err)
		}
		defer closeLogged(b.String()+" button", line)
	}

	log.Printf("%s", status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""))
	log.Printf("started: chip=%s bus=%s tick=%v heartbeat=%v", cfg.GPIO.Chip, cfg.I2C.Bus, cfg.Tick, cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	emit := func(payload []byte) { log.Printf("%s", payload) }
	return runLoop(ctrl, []gpio.Relay{heaterRelay, fanRelay}, tracker, emit, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

// stepper is one control step; *heater.Controller in production.
type stepper interface {
	Tick() error
}

func runLoop(ctrl stepper, relays []gpio.Relay, tracker *status.Tracker, emit func([]byte), heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if err := allOff(relays); err != nil {
				log.Printf("shutdown: %v", err)
			}
			emit(status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName))
			return nil

		case <-tick:
			t := now()
			err := ctrl.Tick()
			tracker.RecordTick(err)
			if err != nil {
				// Bus faults are usually transient; retry on the next tick.
				log.Printf("tick error: %v", err)
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				emit(status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", ""))
			}
		}
	}
}

// allOff de-energizes every relay, attempting all of them before
// reporting failures.
func allOff(relays []gpio.Relay) error {
	var errs []error
	for _, r := range relays {
		if err := r.Set(false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// probe is a sensor that knows its bus address.
type probe interface {
	sensor.Reader
	Addr() uint16
}

// printSensors writes one line per sensor and relay, then the full status
// document.
func printSensors(w io.Writer, sensors []probe, heaterRelay, fanRelay gpio.Relay, tracker *status.Tracker) error {
	readings := make([]sensor.Reading, 0, len(sensors))
	for _, s := range sensors {
		r, err := s.Read()
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		fmt.Fprintf(w, "sensor 0x%02x: %.2fC %.2f%%rh crc=%s\n", s.Addr(), r.Temperature, r.Humidity, crcString(r.Valid))
		readings = append(readings, r)
	}
	avg := sensor.Average(readings...)
	fmt.Fprintf(w, "average: %.2fC %.2f%%rh\n", avg.Temperature, avg.Humidity)

	heaterOn, err := heaterRelay.IsOn()
	if err != nil {
		return fmt.Errorf("read heater relay: %w", err)
	}
	fanOn, err := fanRelay.IsOn()
	if err != nil {
		return fmt.Errorf("read fan relay: %w", err)
	}
	fmt.Fprintf(w, "heater: %s, fan: %s\n", stateString(heaterOn), stateString(fanOn))

	tracker.Update(status.Dryer{Heater: heaterOn, Fan: fanOn, Reading: avg}, status.Counts{})
	fmt.Fprintf(w, "%s\n", status.FormatJSON(tracker.Snapshot()))
	return nil
}

type closer interface {
	Close() error
}

func closeLogged(name string, c closer) {
	if err := c.Close(); err != nil {
		log.Printf("close %s: %v", name, err)
	}
}

func crcString(valid bool) string {
	if valid {
		return "OK"
	}
	return "BAD"
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
