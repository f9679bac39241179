// Package bus opens the I2C bus shared by the sensors and the display.
package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultName is the Raspberry Pi's user I2C bus.
const DefaultName = "/dev/i2c-1"

// Open initializes the host drivers and opens the named bus.
// One handle is shared by every device; callers must not use it
// concurrently.
func Open(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return b, nil
}
