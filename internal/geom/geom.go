// Package geom provides the planar geometry used by hover-intent tracking.
//
// Coordinates are viewport coordinates: X grows to the right, Y grows down.
// Terminal hosts use cell coordinates, which convert losslessly to float64.
package geom

// Point is a planar coordinate in viewport space.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Equal returns true if two points are equal.
func (p Point) Equal(other Point) bool {
	return p.X == other.X && p.Y == other.Y
}

// Rect is an axis-aligned bounding box.
// The zero Rect is the box reported for elements that are no longer attached.
type Rect struct {
	Left   float64 // First column (inclusive)
	Top    float64 // First row (inclusive)
	Right  float64 // Last column (exclusive)
	Bottom float64 // Last row (exclusive)
}

// RectFromSize creates a rectangle from position and size.
func RectFromSize(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Right: left + width, Bottom: top + height}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	if r.Right <= r.Left {
		return 0
	}
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	if r.Bottom <= r.Top {
		return 0
	}
	return r.Bottom - r.Top
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether p lies within the rectangle.
// Left and Top edges are inclusive, Right and Bottom are exclusive, so that
// adjacent rectangles never both claim a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right &&
		p.Y >= r.Top && p.Y < r.Bottom
}

// Offset returns the rectangle translated by d.
func (r Rect) Offset(d Point) Rect {
	return Rect{
		Left:   r.Left + d.X,
		Top:    r.Top + d.Y,
		Right:  r.Right + d.X,
		Bottom: r.Bottom + d.Y,
	}
}
