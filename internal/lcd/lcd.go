// Package lcd drives an HD44780 character display behind a PCF8574 I2C
// backpack in 4-bit mode.
//
// Each byte is sent as two nibbles on the expander's upper four bits. A
// nibble is latched by writing it with EN high, then again with EN low.
// The backlight bit is held on for every write.
package lcd

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Addr is the backpack's bus address.
const Addr uint16 = 0x27

// Commands.
const (
	cmdClear       = 0x01
	cmdHome        = 0x02
	cmdEntryMode   = 0x06 // increment, no shift
	cmdDisplayOff  = 0x08
	cmdDisplayOn   = 0x0C // cursor off, blink off
	cmdFunctionSet = 0x28 // 4-bit, two lines, 5x8 font
	cmdSetDDRAM    = 0x80
)

// Expander bit layout.
const (
	bitRS        = 1 << 0
	bitRW        = 1 << 1
	bitEN        = 1 << 2
	bitBacklight = 1 << 3
)

// Placeholder is printed in place of non-ASCII characters (solid block).
const Placeholder = 0xFF

// Columns is the number of addressable characters per row.
const Columns = 40

var rowOffsets = [2]byte{0x00, 0x40}

// LCD is a stateless encoder bound to one bus address.
type LCD struct {
	bus  i2c.Bus
	addr uint16

	// Sleep is used for settle delays. Tests replace it.
	Sleep func(time.Duration)
}

// New returns an LCD at addr on bus. Call Init before use.
func New(bus i2c.Bus, addr uint16) *LCD {
	return &LCD{bus: bus, addr: addr, Sleep: time.Sleep}
}

// Init runs the datasheet power-on sequence and leaves the display cleared.
func (l *LCD) Init() error {
	l.Sleep(20 * time.Millisecond)

	// Three 8-bit function sets put the controller in a known state
	// regardless of whether it powered up in 4- or 8-bit mode.
	for i := 0; i < 3; i++ {
		if err := l.pulse(0x03, false); err != nil {
			return fmt.Errorf("lcd init: %w", err)
		}
		l.Sleep(5 * time.Millisecond)
	}

	if err := l.pulse(0x02, false); err != nil {
		return fmt.Errorf("lcd init: 4-bit mode: %w", err)
	}
	l.Sleep(5 * time.Millisecond)

	for _, cmd := range []byte{cmdFunctionSet, cmdDisplayOff, cmdClear} {
		if err := l.command(cmd); err != nil {
			return fmt.Errorf("lcd init: command 0x%02x: %w", cmd, err)
		}
	}
	l.Sleep(2 * time.Millisecond)

	for _, cmd := range []byte{cmdEntryMode, cmdDisplayOn} {
		if err := l.command(cmd); err != nil {
			return fmt.Errorf("lcd init: command 0x%02x: %w", cmd, err)
		}
	}
	return nil
}

// Clear blanks the display and resets the address counter.
func (l *LCD) Clear() error {
	if err := l.command(cmdClear); err != nil {
		return fmt.Errorf("lcd clear: %w", err)
	}
	l.Sleep(2 * time.Millisecond)
	return nil
}

// Home returns the cursor to (0, 0).
func (l *LCD) Home() error {
	if err := l.command(cmdHome); err != nil {
		return fmt.Errorf("lcd home: %w", err)
	}
	l.Sleep(2 * time.Millisecond)
	return nil
}

// SetCursor moves the write position to col on row 0 or 1.
func (l *LCD) SetCursor(col, row int) error {
	if row < 0 || row >= len(rowOffsets) {
		return fmt.Errorf("lcd set cursor: row %d out of range", row)
	}
	if col < 0 || col >= Columns {
		return fmt.Errorf("lcd set cursor: column %d out of range", col)
	}
	if err := l.command(cmdSetDDRAM | (byte(col) + rowOffsets[row])); err != nil {
		return fmt.Errorf("lcd set cursor: %w", err)
	}
	return nil
}

// Print writes text at the cursor. Non-ASCII runes become Placeholder.
func (l *LCD) Print(text string) error {
	for _, r := range text {
		b := byte(r)
		if r > 0x7F {
			log.Printf("lcd: non-ASCII character %q replaced", r)
			b = Placeholder
		}
		if err := l.data(b); err != nil {
			return fmt.Errorf("lcd print: %w", err)
		}
	}
	return nil
}

func (l *LCD) command(b byte) error {
	return l.writeByte(b, false)
}

func (l *LCD) data(b byte) error {
	return l.writeByte(b, true)
}

func (l *LCD) writeByte(b byte, rs bool) error {
	if err := l.pulse(b>>4, rs); err != nil {
		return err
	}
	return l.pulse(b&0x0F, rs)
}

// pulse latches one nibble on the falling edge of EN.
func (l *LCD) pulse(nibble byte, rs bool) error {
	if err := l.bus.Tx(l.addr, []byte{Encode(nibble, rs, true)}, nil); err != nil {
		return err
	}
	l.Sleep(time.Microsecond)

	if err := l.bus.Tx(l.addr, []byte{Encode(nibble, rs, false)}, nil); err != nil {
		return err
	}
	l.Sleep(50 * time.Microsecond)
	return nil
}

// Encode builds the expander byte for one nibble. RW is always write.
func Encode(nibble byte, rs, en bool) byte {
	b := (nibble&0x0F)<<4 | bitBacklight
	if rs {
		b |= bitRS
	}
	if en {
		b |= bitEN
	}
	return b
}
