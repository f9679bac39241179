package heater

import (
	"fmt"
	"time"

	"github.com/sweeney/filament-dryer/internal/catalog"
	"github.com/sweeney/filament-dryer/internal/display"
	"github.com/sweeney/filament-dryer/internal/sensor"
	"github.com/sweeney/filament-dryer/internal/state"
)

// Frame builds the two display lines for the current state.
func Frame(s state.State, r sensor.Reading, now time.Time) (string, string) {
	if s.Display == display.ModeMenu {
		p := catalog.Get(s.Hovered)
		return fmt.Sprintf("<   %s     >", p.Name),
			fmt.Sprintf("%dC %s", p.TempC, formatDuration(p.Duration))
	}

	line1 := "Idle"
	if s.Active != catalog.None {
		left := remaining(s, now)
		line1 = fmt.Sprintf("%s: %02d:%02d:%02d",
			catalog.Get(s.Active).Name,
			int(left.Hours()),
			int(left.Minutes())%60,
			int(left.Seconds())%60)
	}
	return line1, fmt.Sprintf("%.2fC %.2f%%rh", r.Temperature, r.Humidity)
}

// formatDuration prints whole hours as "6hrs" and anything else in minutes.
func formatDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dhrs", int(d.Hours()))
	}
	return fmt.Sprintf("%dmin", int(d.Minutes()))
}
