package status

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/filament-dryer/internal/catalog"
	"github.com/sweeney/filament-dryer/internal/display"
	"github.com/sweeney/filament-dryer/internal/sensor"
	"github.com/sweeney/filament-dryer/internal/state"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{TickMs: 1000, HeartbeatMs: 900000, Chip: "gpiochip0", Bus: "/dev/i2c-1"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.TickMs != 1000 {
		t.Errorf("Config.TickMs: got %d, want 1000", snap.Config.TickMs)
	}
	if snap.Heater || snap.Fan {
		t.Error("expected relays off initially")
	}
	if snap.Ticks != 0 {
		t.Errorf("Ticks: got %d, want 0", snap.Ticks)
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(Dryer{
		HeaterMode: state.HeaterRunning,
		Active:     catalog.Petg,
		Heater:     true,
		Fan:        true,
		Reading:    sensor.Reading{Temperature: 52.5, Humidity: 18, Valid: true},
	}, Counts{HeaterOn: 3, FanOn: 1})

	snap := tr.Snapshot()
	if snap.Active != catalog.Petg {
		t.Errorf("Active: got %s, want PETG", snap.Active)
	}
	if !snap.Heater || !snap.Fan {
		t.Error("expected heater and fan on")
	}
	if snap.Counts.HeaterOn != 3 {
		t.Errorf("Counts.HeaterOn: got %d, want 3", snap.Counts.HeaterOn)
	}
	if snap.Reading.Temperature != 52.5 {
		t.Errorf("Reading.Temperature: got %v, want 52.5", snap.Reading.Temperature)
	}
}

func TestRecordTick(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.RecordTick(nil)
	tr.RecordTick(errors.New("sensor 0x44: nack"))
	tr.RecordTick(nil)

	snap := tr.Snapshot()
	if snap.Ticks != 3 {
		t.Errorf("Ticks: got %d, want 3", snap.Ticks)
	}
	if snap.TickErrors != 1 {
		t.Errorf("TickErrors: got %d, want 1", snap.TickErrors)
	}
	if snap.LastError != "sensor 0x44: nack" {
		t.Errorf("LastError: got %q", snap.LastError)
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Now().Add(-5 * time.Minute)
	tr := NewTracker(start, Config{})

	uptime := tr.Snapshot().Uptime()
	if uptime < 5*time.Minute || uptime > 5*time.Minute+time.Second {
		t.Errorf("Uptime: got %v, want ~5m", uptime)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			tr.Update(Dryer{Heater: i%2 == 0}, Counts{HeaterOn: i})
			tr.RecordTick(nil)
		}(i)
		go func() {
			defer wg.Done()
			_ = tr.Snapshot()
		}()
	}
	wg.Wait()

	if got := tr.Snapshot().Ticks; got != 10 {
		t.Errorf("Ticks: got %d, want 10", got)
	}
}

func TestLine(t *testing.T) {
	line := Line(Dryer{
		HeaterMode: state.HeaterRunning,
		Display:    display.ModeIdle,
		Active:     catalog.Demo,
		Hovered:    catalog.Demo,
		Heater:     true,
		Fan:        true,
		Reading:    sensor.Reading{Temperature: 44.25, Humidity: 31.5, Valid: true},
		Remaining:  4*time.Minute + 30*time.Second + 500*time.Millisecond,
	})

	for _, want := range []string{
		"heater=ON", "fan=ON", "mode=RUNNING", "display=IDLE",
		"active=DEMO", "hovered=DEMO", "temp=44.25C", "hum=31.50%rh", "remaining=4m30s",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "crc=BAD") {
		t.Errorf("valid reading flagged: %q", line)
	}
}

func TestLineIdle(t *testing.T) {
	line := Line(Dryer{Reading: sensor.Reading{Valid: false}})

	if !strings.Contains(line, "heater=OFF") || !strings.Contains(line, "active=IDLE") {
		t.Errorf("unexpected line %q", line)
	}
	if !strings.Contains(line, "crc=BAD") {
		t.Errorf("invalid reading not flagged: %q", line)
	}
	if strings.Contains(line, "remaining=") {
		t.Errorf("idle line should not show remaining time: %q", line)
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Dryer: Dryer{
			HeaterMode: state.HeaterRunning,
			Display:    display.ModeMenu,
			Active:     catalog.Asa,
			Hovered:    catalog.Tpu,
			Heater:     true,
			Reading:    sensor.Reading{Temperature: 79, Humidity: 10, Valid: true},
			Remaining:  90 * time.Minute,
		},
		Counts:    Counts{HeaterOn: 2, HeaterOff: 1, CyclesCompleted: 4},
		Ticks:     120,
		StartTime: start,
		Now:       start.Add(2 * time.Minute),
		Config:    Config{TickMs: 1000, Chip: "gpiochip0"},
	}

	var out StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := out.Status
	if s.Event != "" {
		t.Errorf("Event: got %q, want empty", s.Event)
	}
	if s.HeaterMode != "RUNNING" || s.Display != "MENU" {
		t.Errorf("modes: got %s/%s", s.HeaterMode, s.Display)
	}
	if s.Active != "ASA" || s.Hovered != "TPU" {
		t.Errorf("materials: got %s/%s", s.Active, s.Hovered)
	}
	if s.Heater != "ON" || s.Fan != "OFF" {
		t.Errorf("relays: got heater=%s fan=%s", s.Heater, s.Fan)
	}
	if s.RemainingSeconds != 5400 {
		t.Errorf("RemainingSeconds: got %d, want 5400", s.RemainingSeconds)
	}
	if s.UptimeSeconds != 120 {
		t.Errorf("UptimeSeconds: got %d, want 120", s.UptimeSeconds)
	}
	if s.Counts.CyclesCompleted != 4 {
		t.Errorf("CyclesCompleted: got %d, want 4", s.Counts.CyclesCompleted)
	}
	if s.Config.Chip != "gpiochip0" {
		t.Errorf("Config.Chip: got %q", s.Config.Chip)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	snap := Snapshot{StartTime: time.Now(), Now: time.Now()}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")
	if strings.Contains(string(data), "\n") {
		t.Error("event payload should be compact")
	}

	var out StatusJSON
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Status.Event != "SHUTDOWN" || out.Status.Reason != "SIGTERM" {
		t.Errorf("event/reason: got %q/%q", out.Status.Event, out.Status.Reason)
	}
}
