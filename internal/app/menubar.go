package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/hoverintent/internal/config"
	"github.com/dshills/hoverintent/internal/event"
	"github.com/dshills/hoverintent/internal/event/topic"
	"github.com/dshills/hoverintent/internal/geom"
	"github.com/dshills/hoverintent/internal/input"
	"github.com/dshills/hoverintent/internal/intent"
	"github.com/dshills/hoverintent/internal/plugin"
	"github.com/dshills/hoverintent/internal/renderer"
	"github.com/dshills/hoverintent/internal/surface"
)

// Element IDs and classes the menubar lays out.
const (
	BarID        = "menubar"
	ContentID    = "content"
	TriggerClass = "menu-item"
	PanelSuffix  = "-menu"
)

const (
	minPanelWidth = 16
	aimAmount     = 0.35
)

// Menu is one drop-down menu.
type Menu struct {
	ID    string
	Title string
	Items []string
}

// DefaultMenus returns the demo's menus.
func DefaultMenus() []Menu {
	return []Menu{
		{ID: "file", Title: "File", Items: []string{"New", "Open...", "Save", "Save As...", "Quit"}},
		{ID: "edit", Title: "Edit", Items: []string{"Undo", "Redo", "Cut", "Copy", "Paste"}},
		{ID: "view", Title: "View", Items: []string{"Zoom In", "Zoom Out", "Full Screen"}},
		{ID: "help", Title: "Help", Items: []string{"Documentation", "Keyboard Shortcuts", "About"}},
	}
}

// DefaultContent returns filler text for the scrollable area.
func DefaultContent() []string {
	lines := make([]string, 120)
	for i := range lines {
		lines[i] = fmt.Sprintf("%3d  Move toward an open menu and it stays open; wander off and it closes.", i+1)
	}
	return lines
}

// DefaultBinding is the binding used when the configuration names none.
func DefaultBinding() config.Binding {
	return config.Binding{Name: "menubar", Root: BarID, Selector: "." + TriggerClass}
}

// Menubar is a menu bar with drop-down panels over a scrollable page.
// It implements input.Sink and renderer.View.
//
// All methods must be called from the thread that runs the surface's
// scheduler callbacks.
type Menubar struct {
	surface *surface.Surface
	logger  *slog.Logger
	theme   renderer.Theme
	hooks   *plugin.Hooks

	menus    []Menu
	lines    []string
	bar      *surface.Element
	content  *surface.Element
	triggers []*surface.Element
	panels   map[string]*surface.Element

	bindings []*intent.Binding
	observer *event.Subscription
	last     string

	width  int
	height int
}

// MenubarOption configures a Menubar.
type MenubarOption func(*Menubar)

// WithTheme sets the colors.
func WithTheme(t renderer.Theme) MenubarOption {
	return func(m *Menubar) { m.theme = t }
}

// WithHooks routes hover and leave callbacks through a script first.
func WithHooks(h *plugin.Hooks) MenubarOption {
	return func(m *Menubar) { m.hooks = h }
}

// WithContent replaces the filler text.
func WithContent(lines []string) MenubarOption {
	return func(m *Menubar) { m.lines = lines }
}

// WithMenubarLogger sets the logger.
func WithMenubarLogger(l *slog.Logger) MenubarOption {
	return func(m *Menubar) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMenubar lays out menus on s.
func NewMenubar(s *surface.Surface, menus []Menu, opts ...MenubarOption) (*Menubar, error) {
	m := &Menubar{
		surface: s,
		logger:  slog.Default(),
		theme:   renderer.DefaultTheme(),
		menus:   menus,
		lines:   DefaultContent(),
		panels:  make(map[string]*surface.Element),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "menubar")

	w, h := s.Size()
	m.width, m.height = int(w), int(h)
	m.build()

	sub, err := s.Signals().Subscribe("intent.**", m.observe, event.WithPriority(event.PriorityLow))
	if err != nil {
		return nil, &InitError{Component: "menubar", Err: err}
	}
	m.observer = sub
	return m, nil
}

func (m *Menubar) build() {
	m.content = m.surface.Append(nil, surface.NewElement(ContentID, geom.Rect{}))
	m.bar = m.surface.Append(nil, surface.NewElement(BarID, geom.Rect{}))
	m.bar.SetFixed(true)

	for _, menu := range m.menus {
		trigger := surface.NewElement(menu.ID, geom.Rect{})
		trigger.Label = menu.Title
		trigger.AddClass(TriggerClass).SetData(intent.DefaultAttr, menu.ID+PanelSuffix)
		m.triggers = append(m.triggers, m.surface.Append(m.bar, trigger))

		panel := surface.NewElement(menu.ID+PanelSuffix, geom.Rect{})
		panel.SetFixed(true).SetHidden(true)
		m.surface.Append(nil, panel)
		for i, item := range menu.Items {
			el := surface.NewElement(fmt.Sprintf("%s-%d", panel.ID, i), geom.Rect{})
			el.Label = item
			m.surface.Append(panel, el)
		}
		m.panels[menu.ID] = panel
	}
	m.layout()
}

// layout sizes every element for the current viewport.
func (m *Menubar) layout() {
	w := float64(m.width)
	m.bar.SetBounds(geom.RectFromSize(0, 0, w, 1))
	m.content.SetBounds(geom.RectFromSize(0, 1, w, float64(len(m.lines))))

	x := 0.0
	for i, trigger := range m.triggers {
		menu := m.menus[i]
		tw := float64(renderer.StringWidth(menu.Title) + 2)
		trigger.SetBounds(geom.RectFromSize(x, 0, tw, 1))

		pw := minPanelWidth
		for _, item := range menu.Items {
			pw = max(pw, renderer.StringWidth(item)+4)
		}
		panel := m.panels[menu.ID]
		panel.SetBounds(geom.RectFromSize(x, 1, float64(pw), float64(len(menu.Items)+2)))
		for j, item := range panel.Children() {
			item.SetBounds(geom.RectFromSize(x+1, float64(2+j), float64(pw-2), 1))
		}
		x += tw
	}
}

// Bind installs intent bindings from f, replacing any existing ones.
// Bindings that cannot be installed are skipped and reported together.
func (m *Menubar) Bind(f *config.File) error {
	m.Unbind()

	defs := f.Bindings
	if len(defs) == 0 {
		defs = []config.Binding{DefaultBinding()}
	}

	var errs []error
	for _, def := range defs {
		b, err := m.bind(f.Resolve(def))
		if err != nil {
			m.logger.Warn("binding skipped", "binding", def.Name, "error", err)
			errs = append(errs, &BindError{Binding: def.Name, Err: err})
			continue
		}
		m.bindings = append(m.bindings, b)
	}
	m.logger.Info("bound", "bindings", len(m.bindings), "skipped", len(errs))
	return errors.Join(errs...)
}

func (m *Menubar) bind(def config.Binding) (*intent.Binding, error) {
	cfg, err := def.Intent()
	if err != nil {
		return nil, err
	}

	var roots []*surface.Element
	if def.Root != "" {
		root := m.surface.Lookup(def.Root)
		if root == nil {
			return nil, fmt.Errorf("%q: %w", def.Root, ErrRootNotFound)
		}
		roots = append(roots, root)
	}

	cfg.OnHover = m.open
	cfg.OnLeave = m.close
	if m.hooks != nil {
		cfg.OnHover = m.hooks.Chain(plugin.HookHover, cfg.OnHover)
		cfg.OnLeave = m.hooks.Chain(plugin.HookLeave, cfg.OnLeave)
	}
	cfg.Logger = m.logger
	return intent.Bind(m.surface, cfg, roots...)
}

// Unbind destroys every binding and closes every panel.
func (m *Menubar) Unbind() {
	for _, b := range m.bindings {
		b.Destroy()
	}
	m.bindings = nil
	for _, panel := range m.panels {
		panel.SetHidden(true)
	}
}

// Bindings returns the installed bindings.
func (m *Menubar) Bindings() []*intent.Binding {
	return m.bindings
}

// Panel returns the drop-down panel of the menu with the given ID.
func (m *Menubar) Panel(id string) *surface.Element {
	return m.panels[id]
}

// Close unbinds and stops observing lifecycle signals.
func (m *Menubar) Close() {
	m.Unbind()
	if m.observer != nil {
		m.observer.Cancel()
		m.observer = nil
	}
}

func (m *Menubar) open(_ *surface.Event, target, _ *surface.Element) {
	target.SetHidden(false)
}

func (m *Menubar) close(_ *surface.Event, target, _ *surface.Element) {
	target.SetHidden(true)
}

func (m *Menubar) observe(_ context.Context, sig event.Signal) error {
	m.last = sig.Topic.String()
	if info, ok := sig.Payload.(intent.SessionInfo); ok {
		m.last += " " + info.Trigger
	}
	return nil
}

// PointerMove implements input.Sink. The pointer sits at the cell center.
func (m *Menubar) PointerMove(x, y int) {
	m.surface.MoveTo(geom.Pt(float64(x)+0.5, float64(y)+0.5))
}

// PointerExit implements input.Sink.
func (m *Menubar) PointerExit() {
	m.surface.Exit()
}

// Scroll implements input.Sink.
func (m *Menubar) Scroll(rows int) {
	y := m.surface.ScrollY() + float64(rows)
	m.surface.ScrollTo(min(max(y, 0), float64(m.maxScroll())))
}

func (m *Menubar) maxScroll() int {
	return max(len(m.lines)-m.pageRows(), 0)
}

// pageRows is the number of content rows between the bar and the status line.
func (m *Menubar) pageRows() int {
	return max(m.height-2, 1)
}

// Key implements input.Sink.
func (m *Menubar) Key(k input.Key) bool {
	switch {
	case k.Name == "up":
		m.Scroll(-1)
	case k.Name == "down":
		m.Scroll(1)
	case k.Name == "pgup":
		m.Scroll(-m.pageRows())
	case k.Name == "pgdown":
		m.Scroll(m.pageRows())
	case k.Name == "home":
		m.Scroll(-len(m.lines))
	case k.Name == "end":
		m.Scroll(len(m.lines))
	case k.Rune == 'l' && !k.Ctrl:
		m.ForceLeave()
	}
	return k.Quit()
}

// ForceLeave broadcasts each binding's force leave topic once.
func (m *Menubar) ForceLeave() {
	seen := make(map[topic.Topic]bool)
	for _, b := range m.bindings {
		t := b.Config().ForceLeaveTopic
		if seen[t] {
			continue
		}
		seen[t] = true
		sig := event.NewSignal(t, nil, "menubar")
		if err := m.surface.Signals().Publish(context.Background(), sig); err != nil {
			m.logger.Warn("force leave failed", "topic", t, "error", err)
		}
	}
}

// Resize implements input.Sink.
func (m *Menubar) Resize(w, h int) {
	m.width, m.height = w, h
	m.surface.Resize(float64(w), float64(h))
	m.layout()
	if y := float64(m.maxScroll()); m.surface.ScrollY() > y {
		m.surface.ScrollTo(y)
	}
}

// Draw implements renderer.View.
func (m *Menubar) Draw(c *renderer.Canvas) {
	w, h := c.Size()
	if w == 0 || h == 0 {
		return
	}
	theme := m.theme

	c.Fill(geom.RectFromSize(0, 0, float64(w), float64(h)), theme.Content)
	scroll := int(m.surface.ScrollY())
	for row := 1; row < h-1; row++ {
		i := scroll + row - 1
		if i >= len(m.lines) {
			break
		}
		c.Text(0, row, m.lines[i], theme.Content, w)
	}

	c.Fill(m.surface.BoundingBox(m.bar), theme.Bar)
	for i, trigger := range m.triggers {
		style := theme.Trigger
		if !m.panels[m.menus[i].ID].Hidden() {
			style = theme.TriggerOpen
		}
		box := m.surface.BoundingBox(trigger)
		c.Fill(box, style)
		c.Text(int(box.Left)+1, int(box.Top), trigger.Label, style, int(box.Width())-1)
	}

	for _, menu := range m.menus {
		panel := m.panels[menu.ID]
		if panel.Hidden() {
			continue
		}
		c.Fill(m.surface.BoundingBox(panel), theme.Menu)
		for _, item := range panel.Children() {
			style := theme.Menu
			if m.surface.Hovered(item) {
				style = theme.MenuHover
			}
			box := m.surface.BoundingBox(item)
			c.Fill(box, style)
			c.Text(int(box.Left)+1, int(box.Top), item.Label, style, int(box.Width())-1)
		}
	}

	for _, b := range m.bindings {
		for _, s := range b.Sessions() {
			if s.State() != intent.StateTracking {
				continue
			}
			if tri, ok := s.Triangle(); ok {
				c.TintFunc(tri.Contains, theme.Aim, aimAmount)
			}
		}
	}

	if h > 1 {
		c.Fill(geom.RectFromSize(0, float64(h-1), float64(w), 1), theme.Status)
		c.Text(0, h-1, m.status(), theme.Status, w)
	}
}

func (m *Menubar) status() string {
	var st intent.Stats
	for _, b := range m.bindings {
		s := b.Stats()
		st.Started += s.Started
		st.Committed += s.Committed
		st.Abandoned += s.Abandoned
		st.Cached += s.Cached
		st.Replayed += s.Replayed
	}
	var parts []string
	if m.last != "" {
		parts = append(parts, m.last)
	}
	parts = append(parts,
		fmt.Sprintf("started %d", st.Started),
		fmt.Sprintf("committed %d", st.Committed),
		fmt.Sprintf("abandoned %d", st.Abandoned),
		fmt.Sprintf("cached %d", st.Cached),
		fmt.Sprintf("replayed %d", st.Replayed),
		"l: force leave  q: quit",
	)
	return " " + strings.Join(parts, " | ")
}
