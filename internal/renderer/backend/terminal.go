// Package backend drives the demo from a tcell screen.
//
// Terminal translates tcell mouse, key, focus and resize events into
// input.Sink calls, runs timer callbacks on the same event loop through
// tcell interrupt events, and copies a renderer.Canvas to the screen after
// each batch of events.
package backend

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/hoverintent/internal/clock"
	"github.com/dshills/hoverintent/internal/input"
	"github.com/dshills/hoverintent/internal/renderer"
)

// ErrNotInitialized is returned by Run before Init.
var ErrNotInitialized = errors.New("terminal not initialized")

// stop is posted to end Run when its context is cancelled.
type stop struct{}

// Terminal implements a tcell host.
type Terminal struct {
	screen tcell.Screen
	canvas *renderer.Canvas

	wheelStep int

	mu          sync.Mutex
	initialized bool
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithWheelStep sets the rows scrolled per wheel notch.
func WithWheelStep(rows int) Option {
	return func(t *Terminal) {
		if rows > 0 {
			t.wheelStep = rows
		}
	}
}

// NewTerminal creates a terminal backend on the controlling terminal.
func NewTerminal(opts ...Option) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen, opts...), nil
}

// NewTerminalWithScreen creates a terminal backend on screen, which may be a
// tcell simulation screen.
func NewTerminalWithScreen(screen tcell.Screen, opts ...Option) *Terminal {
	t := &Terminal{
		screen:    screen,
		canvas:    renderer.NewCanvas(0, 0),
		wheelStep: input.DefaultWheelStep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init initializes the screen with mouse motion and focus reporting.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse(tcell.MouseMotionEvents)
	t.screen.EnableFocus()
	t.screen.HideCursor()
	t.canvas.Resize(t.screen.Size())
	t.initialized = true
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		t.screen.Fini()
		t.initialized = false
	}
}

// Size returns the screen size in cells.
func (t *Terminal) Size() (int, int) {
	return t.screen.Size()
}

// Scheduler returns a real-time scheduler whose callbacks run inside Run.
func (t *Terminal) Scheduler() clock.Scheduler {
	return clock.Posted(t.post)
}

func (t *Terminal) post(fn func()) bool {
	return t.screen.PostEvent(tcell.NewEventInterrupt(fn)) == nil
}

// Run processes events until sink asks to quit, ctx is cancelled or the
// screen is finalized. view is redrawn whenever the event queue drains.
func (t *Terminal) Run(ctx context.Context, sink input.Sink, view renderer.View) error {
	t.mu.Lock()
	ok := t.initialized
	t.mu.Unlock()
	if !ok {
		return ErrNotInitialized
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = t.screen.PostEvent(tcell.NewEventInterrupt(stop{}))
		case <-done:
		}
	}()

	t.draw(view)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if quit := t.handle(ev, sink); quit {
			return ctx.Err()
		}
		if t.screen.HasPendingEvent() {
			continue
		}
		t.draw(view)
	}
}

// handle dispatches one event and reports whether Run should return.
func (t *Terminal) handle(ev tcell.Event, sink input.Sink) bool {
	switch e := ev.(type) {
	case *tcell.EventInterrupt:
		switch data := e.Data().(type) {
		case stop:
			return true
		case func():
			if data != nil {
				data()
			}
		}

	case *tcell.EventMouse:
		x, y := e.Position()
		buttons := e.Buttons()
		switch {
		case buttons&tcell.WheelUp != 0:
			sink.Scroll(-t.wheelStep)
		case buttons&tcell.WheelDown != 0:
			sink.Scroll(t.wheelStep)
		default:
			sink.PointerMove(x, y)
		}

	case *tcell.EventKey:
		return sink.Key(convertKey(e))

	case *tcell.EventResize:
		w, h := e.Size()
		t.canvas.Resize(w, h)
		t.screen.Sync()
		sink.Resize(w, h)

	case *tcell.EventFocus:
		if !e.Focused {
			sink.PointerExit()
		}
	}
	return false
}

func (t *Terminal) draw(view renderer.View) {
	t.canvas.Clear(renderer.DefaultStyle())
	if view != nil {
		view.Draw(t.canvas)
	}

	_, h := t.canvas.Size()
	for y := 0; y < h; y++ {
		for x, cell := range t.canvas.Row(y) {
			if cell.Rune == 0 {
				continue
			}
			t.screen.SetContent(x, y, cell.Rune, nil, convertStyle(cell.Style))
		}
	}
	t.screen.Show()
}

// convertKey converts a tcell key event to an input.Key.
func convertKey(e *tcell.EventKey) input.Key {
	ctrl := e.Modifiers()&tcell.ModCtrl != 0
	switch e.Key() {
	case tcell.KeyRune:
		return input.Key{Rune: e.Rune(), Ctrl: ctrl}
	case tcell.KeyCtrlC:
		return input.Key{Rune: 'c', Ctrl: true}
	case tcell.KeyEscape:
		return input.Key{Name: "esc"}
	case tcell.KeyEnter:
		return input.Key{Name: "enter"}
	case tcell.KeyUp:
		return input.Key{Name: "up", Ctrl: ctrl}
	case tcell.KeyDown:
		return input.Key{Name: "down", Ctrl: ctrl}
	case tcell.KeyPgUp:
		return input.Key{Name: "pgup", Ctrl: ctrl}
	case tcell.KeyPgDn:
		return input.Key{Name: "pgdown", Ctrl: ctrl}
	case tcell.KeyHome:
		return input.Key{Name: "home", Ctrl: ctrl}
	case tcell.KeyEnd:
		return input.Key{Name: "end", Ctrl: ctrl}
	default:
		return input.Key{Name: strings.ToLower(e.Name())}
	}
}

// convertStyle converts a renderer.Style to tcell.Style.
func convertStyle(s renderer.Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		style = style.Foreground(convertColor(s.Foreground))
	}
	if !s.Background.IsDefault() {
		style = style.Background(convertColor(s.Background))
	}

	if s.Attributes.Has(renderer.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(renderer.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(renderer.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(renderer.AttrReverse) {
		style = style.Reverse(true)
	}
	return style
}

func convertColor(c renderer.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
