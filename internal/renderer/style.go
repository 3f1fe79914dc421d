package renderer

// Attribute represents text attributes (bold, reverse, etc.).
type Attribute uint8

// Text attribute flags.
const (
	AttrNone      Attribute = 0
	AttrBold      Attribute = 1 << iota
	AttrDim                 // Faint text
	AttrUnderline           // Underlined text
	AttrReverse             // Reverse video
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Style represents the visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// WithForeground returns a new style with the given foreground color.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns a new style with the given background color.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Bold returns a new style with bold enabled.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Dim returns a new style with dim enabled.
func (s Style) Dim() Style {
	s.Attributes |= AttrDim
	return s
}

// Theme holds the styles the demo views draw with.
type Theme struct {
	Bar         Style
	Trigger     Style
	TriggerOpen Style
	Menu        Style
	MenuHover   Style
	Content     Style
	Status      Style

	// Aim tints cells inside the live intent triangle.
	Aim Color
}

// DefaultTheme returns the built-in dark theme.
func DefaultTheme() Theme {
	bar := DefaultStyle().WithForeground(MustHex("#D0D0D0")).WithBackground(MustHex("#303446"))
	menu := DefaultStyle().WithForeground(MustHex("#E0E0E0")).WithBackground(MustHex("#414559"))
	return Theme{
		Bar:         bar,
		Trigger:     bar,
		TriggerOpen: bar.WithBackground(MustHex("#8CAAEE")).WithForeground(ColorBlack).Bold(),
		Menu:        menu,
		MenuHover:   menu.WithBackground(MustHex("#A6D189")).WithForeground(ColorBlack),
		Content:     DefaultStyle().WithForeground(MustHex("#A5ADCE")),
		Status:      bar.Dim(),
		Aim:         MustHex("#E78284"),
	}
}
