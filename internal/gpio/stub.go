//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealChip is not available on non-Linux platforms.
type RealChip struct{}

// OpenChip returns an error on non-Linux platforms.
func OpenChip(name string) (*RealChip, error) {
	return nil, errUnsupported
}

// Relay is not implemented on non-Linux platforms.
func (c *RealChip) Relay(offset int) (*RealRelay, error) {
	return nil, errUnsupported
}

// WatchFalling is not implemented on non-Linux platforms.
func (c *RealChip) WatchFalling(offset int, fn func()) (*RealButton, error) {
	return nil, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (c *RealChip) Close() error {
	return nil
}

// RealRelay is not available on non-Linux platforms.
type RealRelay struct{}

// IsOn is not implemented on non-Linux platforms.
func (r *RealRelay) IsOn() (bool, error) {
	return false, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (r *RealRelay) Set(on bool) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealRelay) Close() error {
	return nil
}

// RealButton is not available on non-Linux platforms.
type RealButton struct{}

// Close is not implemented on non-Linux platforms.
func (b *RealButton) Close() error {
	return nil
}
