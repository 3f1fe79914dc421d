package renderer

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/hoverintent/internal/geom"
)

// Cell is a single terminal cell.
type Cell struct {
	// Rune is the character to display.
	// A value of 0 marks the second column of a wide character.
	Rune  rune
	Style Style
}

// EmptyCell returns a blank cell with the given style.
func EmptyCell(style Style) Cell {
	return Cell{Rune: ' ', Style: style}
}

// Canvas is an off-screen grid of cells that hosts copy to the terminal.
type Canvas struct {
	width, height int
	cells         []Cell
}

// NewCanvas creates a blank canvas.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// Resize changes the dimensions and clears the canvas.
func (c *Canvas) Resize(width, height int) {
	c.width, c.height = max(width, 0), max(height, 0)
	c.cells = make([]Cell, c.width*c.height)
	c.Clear(DefaultStyle())
}

// Clear fills every cell with a blank of the given style.
func (c *Canvas) Clear(style Style) {
	for i := range c.cells {
		c.cells[i] = EmptyCell(style)
	}
}

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

// Set writes one cell. Out of range writes are ignored.
func (c *Canvas) Set(x, y int, cell Cell) {
	if c.inBounds(x, y) {
		c.cells[y*c.width+x] = cell
	}
}

// At returns the cell at x, y, or a blank default cell when out of range.
func (c *Canvas) At(x, y int) Cell {
	if !c.inBounds(x, y) {
		return EmptyCell(DefaultStyle())
	}
	return c.cells[y*c.width+x]
}

// Row returns the cells of row y. The slice aliases the canvas.
func (c *Canvas) Row(y int) []Cell {
	if y < 0 || y >= c.height {
		return nil
	}
	return c.cells[y*c.width : (y+1)*c.width]
}

// Fill paints the cells covered by r, a viewport rectangle, with blanks.
func (c *Canvas) Fill(r geom.Rect, style Style) {
	x0, y0, x1, y1 := c.clip(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c.cells[y*c.width+x] = EmptyCell(style)
		}
	}
}

// Tint blends the background of the cells covered by r toward color.
func (c *Canvas) Tint(r geom.Rect, color Color, amount float64) {
	x0, y0, x1, y1 := c.clip(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			cell := &c.cells[y*c.width+x]
			cell.Style.Background = cell.Style.Background.Blend(color, amount)
		}
	}
}

// TintFunc tints every cell whose center satisfies inside.
func (c *Canvas) TintFunc(inside func(p geom.Point) bool, color Color, amount float64) {
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			if inside(geom.Pt(float64(x)+0.5, float64(y)+0.5)) {
				cell := &c.cells[y*c.width+x]
				cell.Style.Background = cell.Style.Background.Blend(color, amount)
			}
		}
	}
}

// Text draws s starting at x, y, clipped to limit columns (no limit when
// limit <= 0). It returns the number of columns written.
func (c *Canvas) Text(x, y int, s string, style Style, limit int) int {
	col := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if w == 0 {
			continue
		}
		if limit > 0 && col+w > limit {
			break
		}
		c.Set(x+col, y, Cell{Rune: g.Runes()[0], Style: style})
		for i := 1; i < w; i++ {
			c.Set(x+col+i, y, Cell{Rune: 0, Style: style})
		}
		col += w
	}
	return col
}

// clip converts r to cell bounds [x0, x1) x [y0, y1) inside the canvas.
func (c *Canvas) clip(r geom.Rect) (x0, y0, x1, y1 int) {
	x0 = min(max(int(r.Left), 0), c.width)
	y0 = min(max(int(r.Top), 0), c.height)
	x1 = min(max(int(r.Right), 0), c.width)
	y1 = min(max(int(r.Bottom), 0), c.height)
	return x0, y0, x1, y1
}

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// Span is a run of cells in one row that share a style.
type Span struct {
	Text  string
	Style Style
}

// Spans groups row y into runs of equal style. Wide character
// continuation cells are dropped.
func (c *Canvas) Spans(y int) []Span {
	row := c.Row(y)
	var spans []Span
	var buf []rune
	var cur Style
	for i, cell := range row {
		if i > 0 && cell.Style != cur {
			spans = append(spans, Span{Text: string(buf), Style: cur})
			buf = buf[:0]
		}
		cur = cell.Style
		if cell.Rune != 0 {
			buf = append(buf, cell.Rune)
		}
	}
	if len(row) > 0 {
		spans = append(spans, Span{Text: string(buf), Style: cur})
	}
	return spans
}
