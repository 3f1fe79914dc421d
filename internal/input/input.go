// Package input defines the host-neutral input the demo hosts translate
// terminal events into.
//
// The tcell backend and the bubbletea adapter both decode their native mouse
// and key events into calls on a Sink. Calls always arrive on the host's
// event loop, which is also where the host's Scheduler runs timer callbacks.
package input

import "strings"

// DefaultWheelStep is the number of rows one wheel notch scrolls.
const DefaultWheelStep = 3

// Key is a key press.
type Key struct {
	// Rune is the character for printable keys, or 0.
	Rune rune

	// Name is the lower-case name of a special key ("esc", "up"), or "".
	Name string

	// Ctrl is set when the control modifier was held.
	Ctrl bool
}

// String returns a readable form such as "q", "ctrl+c" or "esc".
func (k Key) String() string {
	var b strings.Builder
	if k.Ctrl {
		b.WriteString("ctrl+")
	}
	switch {
	case k.Name != "":
		b.WriteString(k.Name)
	case k.Rune != 0:
		b.WriteRune(k.Rune)
	default:
		b.WriteString("none")
	}
	return b.String()
}

// Quit reports whether k is one of the exit keys: q, esc or ctrl+c.
func (k Key) Quit() bool {
	switch {
	case k.Ctrl && (k.Rune == 'c' || k.Name == "c"):
		return true
	case !k.Ctrl && k.Rune == 'q':
		return true
	case k.Name == "esc":
		return true
	default:
		return false
	}
}

// Sink receives translated input.
type Sink interface {
	// PointerMove reports the pointer at cell x, y.
	PointerMove(x, y int)

	// PointerExit reports that the pointer left the terminal or focus was lost.
	PointerExit()

	// Scroll scrolls the content by rows; positive scrolls down.
	Scroll(rows int)

	// Key handles a key press and reports whether the host should exit.
	Key(k Key) (quit bool)

	// Resize reports the new terminal size in cells.
	Resize(width, height int)
}
