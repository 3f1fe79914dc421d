// Package teamouse hosts the demo inside a bubbletea program.
//
// Model translates tea.MouseMsg, tea.KeyMsg, tea.WindowSizeMsg and focus
// messages into input.Sink calls and renders a renderer.View with lipgloss.
// Scheduler delivers timer callbacks back into the program as messages, so
// they run inside Update like every other input.
package teamouse

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/hoverintent/internal/clock"
	"github.com/dshills/hoverintent/internal/input"
	"github.com/dshills/hoverintent/internal/renderer"
)

// runMsg carries a due timer callback.
type runMsg struct {
	fn func()
}

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Scheduler is a clock.Scheduler that runs callbacks inside Model.Update.
// Callbacks that fall due before Attach are dropped.
type Scheduler struct {
	mu     sync.Mutex
	sender Sender
	sched  clock.Scheduler
}

// NewScheduler creates a detached scheduler.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	s.sched = clock.Posted(s.post)
	return s
}

// Attach connects the scheduler to a program.
func (s *Scheduler) Attach(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

// Now returns the wall clock time.
func (s *Scheduler) Now() time.Time {
	return s.sched.Now()
}

// AfterFunc arranges for fn to run inside Update after d.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) clock.Timer {
	return s.sched.AfterFunc(d, fn)
}

func (s *Scheduler) post(fn func()) bool {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()
	if sender == nil {
		return false
	}
	sender.Send(runMsg{fn: fn})
	return true
}

// Options returns the program options the model needs: the alternate
// screen, all-motion mouse reporting and focus reporting.
func Options() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	}
}

// Model is the root bubbletea model.
type Model struct {
	sink      input.Sink
	view      renderer.View
	canvas    *renderer.Canvas
	styles    map[renderer.Style]lipgloss.Style
	wheelStep int
}

// New creates a model feeding sink and drawing view.
func New(sink input.Sink, view renderer.View) Model {
	return Model{
		sink:      sink,
		view:      view,
		canvas:    renderer.NewCanvas(0, 0),
		styles:    make(map[renderer.Style]lipgloss.Style),
		wheelStep: input.DefaultWheelStep,
	}
}

// WithWheelStep returns a copy of m scrolling rows per wheel notch.
func (m Model) WithWheelStep(rows int) Model {
	if rows > 0 {
		m.wheelStep = rows
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg.fn()

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.sink.Scroll(-m.wheelStep)
		case tea.MouseButtonWheelDown:
			m.sink.Scroll(m.wheelStep)
		default:
			m.sink.PointerMove(msg.X, msg.Y)
		}

	case tea.KeyMsg:
		if m.sink.Key(convertKey(msg)) {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.canvas.Resize(msg.Width, msg.Height)
		m.sink.Resize(msg.Width, msg.Height)

	case tea.BlurMsg:
		m.sink.PointerExit()
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	m.canvas.Clear(renderer.DefaultStyle())
	if m.view != nil {
		m.view.Draw(m.canvas)
	}

	_, h := m.canvas.Size()
	var b strings.Builder
	for y := 0; y < h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, span := range m.canvas.Spans(y) {
			b.WriteString(m.style(span.Style).Render(span.Text))
		}
	}
	return b.String()
}

func (m Model) style(s renderer.Style) lipgloss.Style {
	if ls, ok := m.styles[s]; ok {
		return ls
	}
	ls := convertStyle(s)
	m.styles[s] = ls
	return ls
}

// convertStyle converts a renderer.Style to a lipgloss style.
func convertStyle(s renderer.Style) lipgloss.Style {
	ls := lipgloss.NewStyle()
	if !s.Foreground.IsDefault() {
		ls = ls.Foreground(lipgloss.Color(s.Foreground.Hex()))
	}
	if !s.Background.IsDefault() {
		ls = ls.Background(lipgloss.Color(s.Background.Hex()))
	}
	return ls.
		Bold(s.Attributes.Has(renderer.AttrBold)).
		Faint(s.Attributes.Has(renderer.AttrDim)).
		Underline(s.Attributes.Has(renderer.AttrUnderline)).
		Reverse(s.Attributes.Has(renderer.AttrReverse))
}

// convertKey converts a bubbletea key message to an input.Key.
func convertKey(msg tea.KeyMsg) input.Key {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return input.Key{}
		}
		return input.Key{Rune: msg.Runes[0]}
	case tea.KeyCtrlC:
		return input.Key{Rune: 'c', Ctrl: true}
	case tea.KeyEsc:
		return input.Key{Name: "esc"}
	case tea.KeyEnter:
		return input.Key{Name: "enter"}
	case tea.KeyUp:
		return input.Key{Name: "up"}
	case tea.KeyDown:
		return input.Key{Name: "down"}
	case tea.KeyPgUp:
		return input.Key{Name: "pgup"}
	case tea.KeyPgDown:
		return input.Key{Name: "pgdown"}
	case tea.KeyHome:
		return input.Key{Name: "home"}
	case tea.KeyEnd:
		return input.Key{Name: "end"}
	default:
		return input.Key{Name: msg.String()}
	}
}
