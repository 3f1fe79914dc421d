package geom

// Triangle is a directed intent cone.
//
// P1 is the apex and always equals the pointer sample the triangle was built
// from. P2 and P3 are corners of the target's bounding box.
type Triangle struct {
	P1 Point
	P2 Point
	P3 Point
}

// NewTriangle builds the cone from anchor toward box.
//
// Each far corner is chosen by a fixed priority chain over the anchor's
// position relative to the box edges. The chains are order sensitive: when
// the anchor sits exactly on an edge line more than one case matches, and the
// first one wins. A degenerate box yields a degenerate triangle.
func NewTriangle(box Rect, anchor Point) Triangle {
	var p2, p3 Point

	switch {
	case anchor.X >= box.Left && anchor.Y <= box.Top:
		p2 = Point{X: box.Left, Y: box.Top}
	case anchor.X >= box.Right && anchor.Y >= box.Top:
		p2 = Point{X: box.Right, Y: box.Top}
	case anchor.X <= box.Right && anchor.Y >= box.Bottom:
		p2 = Point{X: box.Right, Y: box.Bottom}
	default:
		p2 = Point{X: box.Left, Y: box.Bottom}
	}

	switch {
	case anchor.X <= box.Right && anchor.Y <= box.Top:
		p3 = Point{X: box.Right, Y: box.Top}
	case anchor.X >= box.Right && anchor.Y <= box.Bottom:
		p3 = Point{X: box.Right, Y: box.Bottom}
	case anchor.X >= box.Left && anchor.Y >= box.Bottom:
		p3 = Point{X: box.Left, Y: box.Bottom}
	default:
		p3 = Point{X: box.Left, Y: box.Top}
	}

	return Triangle{P1: anchor, P2: p2, P3: p3}
}

// Contains reports whether p is inside the triangle or on its boundary.
//
// The three half-plane tests must agree in sign. Zero counts toward either
// side, so edge and vertex points are inside for both windings.
func (t Triangle) Contains(p Point) bool {
	d1 := sign(p, t.P1, t.P2)
	d2 := sign(p, t.P2, t.P3)
	d3 := sign(p, t.P3, t.P1)

	nonPositive := d1 <= 0 && d2 <= 0 && d3 <= 0
	nonNegative := d1 >= 0 && d2 >= 0 && d3 >= 0
	return nonPositive || nonNegative
}

// sign returns twice the signed area of (a, b, c).
func sign(a, b, c Point) float64 {
	return (a.X-c.X)*(b.Y-c.Y) - (b.X-c.X)*(a.Y-c.Y)
}
