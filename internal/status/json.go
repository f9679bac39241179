package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string     `json:"event,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	HeaterMode       string     `json:"heater_mode"`
	Display          string     `json:"display"`
	Active           string     `json:"active"`
	Hovered          string     `json:"hovered"`
	Heater           string     `json:"heater"`
	Fan              string     `json:"fan"`
	Temperature      float64    `json:"temperature_c"`
	Humidity         float64    `json:"humidity_rh"`
	ReadingValid     bool       `json:"reading_valid"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	UptimeSeconds    int64      `json:"uptime_seconds"`
	StartTime        string     `json:"start_time"`
	Timestamp        string     `json:"timestamp"`
	Ticks            int        `json:"ticks"`
	TickErrors       int        `json:"tick_errors"`
	LastError        string     `json:"last_error,omitempty"`
	Counts           CountsJSON `json:"counts"`
	Config           ConfigJSON `json:"config"`
}

// CountsJSON is the JSON representation of relay and cycle counts.
type CountsJSON struct {
	HeaterOn        int `json:"heater_on"`
	HeaterOff       int `json:"heater_off"`
	FanOn           int `json:"fan_on"`
	FanOff          int `json:"fan_off"`
	CyclesCompleted int `json:"cycles_completed"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Chip        string `json:"chip"`
	Bus         string `json:"bus"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		HeaterMode:       snap.HeaterMode.String(),
		Display:          snap.Display.String(),
		Active:           snap.Active.String(),
		Hovered:          snap.Hovered.String(),
		Heater:           onOff(snap.Heater),
		Fan:              onOff(snap.Fan),
		Temperature:      snap.Reading.Temperature,
		Humidity:         snap.Reading.Humidity,
		ReadingValid:     snap.Reading.Valid,
		RemainingSeconds: int64(snap.Remaining.Truncate(time.Second).Seconds()),
		UptimeSeconds:    int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:        snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:        snap.Now.UTC().Format(time.RFC3339),
		Ticks:            snap.Ticks,
		TickErrors:       snap.TickErrors,
		LastError:        snap.LastError,
		Counts: CountsJSON{
			HeaterOn:        snap.Counts.HeaterOn,
			HeaterOff:       snap.Counts.HeaterOff,
			FanOn:           snap.Counts.FanOn,
			FanOff:          snap.Counts.FanOff,
			CyclesCompleted: snap.Counts.CyclesCompleted,
		},
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Chip:        snap.Config.Chip,
			Bus:         snap.Config.Bus,
		},
	}
}

// FormatJSON returns the indented JSON status (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status tagged with an event
// such as HEARTBEAT or SHUTDOWN.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
