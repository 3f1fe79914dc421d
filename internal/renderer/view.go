// Package renderer draws hover-intent demo views onto an off-screen canvas.
//
// Hosts own the terminal. They hand a Canvas to a View after every batch of
// input and copy the result to the screen: backend.Terminal writes cells into
// a tcell screen, the teamouse model renders Spans with lipgloss.
package renderer

// View draws itself onto a canvas sized to the terminal.
type View interface {
	Draw(c *Canvas)
}
