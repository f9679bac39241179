// Package gpio provides relay outputs and button edge subscriptions with
// hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Relay drives one relay-switched actuator.
// On means energized. Relays are wired active-low, so the real
// implementation inverts at the line level; callers only see on/off.
type Relay interface {
	// IsOn returns the current logical state of the output.
	IsOn() (bool, error)

	// Set energizes (true) or de-energizes (false) the relay.
	Set(on bool) error

	// Close de-energizes the relay and releases the line.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinFan     = 14 // physical pin 8
	DefaultPinHeater  = 15 // physical pin 10
	DefaultPinBack    = 17 // physical pin 11
	DefaultPinConfirm = 27 // physical pin 13
	DefaultPinRight   = 10 // physical pin 19
	DefaultPinLeft    = 9  // physical pin 21
)

// Consumer labels the lines this process holds.
const Consumer = "filament-dryer"
