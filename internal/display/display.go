// Package display keeps the last frame shown on the character display and
// sends only the characters that changed.
package display

import (
	"fmt"
	"strings"
)

// Width is the fixed width of each retained line.
const Width = 39

// Rows is the number of display lines.
const Rows = 2

// Mode selects which screen is rendered.
type Mode int

const (
	ModeIdle Mode = iota // status screen
	ModeMenu             // material selection
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeMenu:
		return "MENU"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Screen is the subset of the display protocol the driver needs.
type Screen interface {
	SetCursor(col, row int) error
	Print(text string) error
}

// Run is a maximal stretch of changed characters.
type Run struct {
	Col  int
	Text string
}

// Diff returns the changed runs between two lines of equal rune length.
// Lines of different length are padded with spaces to the longer one.
func Diff(prev, next string) []Run {
	p, n := []rune(prev), []rune(next)
	for len(p) < len(n) {
		p = append(p, ' ')
	}
	for len(n) < len(p) {
		n = append(n, ' ')
	}

	var runs []Run
	start := -1
	for i := range n {
		if p[i] != n[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, Run{Col: start, Text: string(n[start:i])})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Col: start, Text: string(n[start:])})
	}
	return runs
}

// Pad truncates or space-pads s to Width runes.
func Pad(s string) string {
	r := []rune(s)
	if len(r) >= Width {
		return string(r[:Width])
	}
	return s + strings.Repeat(" ", Width-len(r))
}

// Driver renders frames onto a Screen, transmitting only the differences
// from what it last rendered. Not safe for concurrent use.
type Driver struct {
	screen Screen
	lines  [Rows]string
}

// NewDriver returns a Driver for a freshly cleared screen.
func NewDriver(screen Screen) *Driver {
	d := &Driver{screen: screen}
	for i := range d.lines {
		d.lines[i] = Pad("")
	}
	return d
}

// Render brings the screen to show line1 and line2.
// The retained frame is only updated for rows written without error.
func (d *Driver) Render(line1, line2 string) error {
	for row, text := range [Rows]string{line1, line2} {
		next := Pad(text)
		for _, run := range Diff(d.lines[row], next) {
			if err := d.screen.SetCursor(run.Col, row); err != nil {
				return fmt.Errorf("render row %d: %w", row, err)
			}
			if err := d.screen.Print(run.Text); err != nil {
				return fmt.Errorf("render row %d: %w", row, err)
			}
		}
		d.lines[row] = next
	}
	return nil
}

// Lines returns the retained frame.
func (d *Driver) Lines() [Rows]string {
	return d.lines
}
