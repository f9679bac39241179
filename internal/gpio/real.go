//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealChip requests lines from a Linux GPIO character device.
type RealChip struct {
	chip *gpiocdev.Chip
}

// OpenChip opens the named chip, e.g. "gpiochip0" on a Raspberry Pi.
func OpenChip(name string) (*RealChip, error) {
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &RealChip{chip: chip}, nil
}

// Relay requests offset as an active-low output, initially de-energized.
// The line is driven high from the moment it is requested.
func (c *RealChip) Relay(offset int) (*RealRelay, error) {
	line, err := c.chip.RequestLine(offset, gpiocdev.AsActiveLow, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request relay pin %d: %w", offset, err)
	}
	return &RealRelay{line: line, offset: offset}, nil
}

// WatchFalling requests offset as a pulled-down input and calls fn on each
// falling edge. Each watched line delivers events on its own goroutine.
func (c *RealChip) WatchFalling(offset int, fn func()) (*RealButton, error) {
	line, err := c.chip.RequestLine(offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { fn() }),
	)
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", offset, err)
	}
	return &RealButton{line: line, offset: offset}, nil
}

// Close releases the chip. Lines requested from it stay valid until closed.
func (c *RealChip) Close() error {
	if err := c.chip.Close(); err != nil {
		return fmt.Errorf("close chip: %w", err)
	}
	return nil
}

// RealRelay is a relay on a GPIO output line.
type RealRelay struct {
	line   *gpiocdev.Line
	offset int
}

// IsOn reads back the logical output value.
func (r *RealRelay) IsOn() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read relay pin %d: %w", r.offset, err)
	}
	return v == 1, nil
}

// Set drives the line; AsActiveLow makes logical 1 a low level.
func (r *RealRelay) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := r.line.SetValue(v); err != nil {
		return fmt.Errorf("set relay pin %d: %w", r.offset, err)
	}
	return nil
}

// Close de-energizes the relay before releasing the line.
// Released output lines keep their last level on the Pi, so this leaves
// the relay open through shutdown and reboot.
func (r *RealRelay) Close() error {
	var errs []error
	if err := r.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("de-energize relay pin %d: %w", r.offset, err))
	}
	if err := r.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close relay pin %d: %w", r.offset, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealButton is a watched input line.
type RealButton struct {
	line   *gpiocdev.Line
	offset int
}

// Close stops edge delivery and releases the line.
func (b *RealButton) Close() error {
	if err := b.line.Close(); err != nil {
		return fmt.Errorf("close button pin %d: %w", b.offset, err)
	}
	return nil
}
