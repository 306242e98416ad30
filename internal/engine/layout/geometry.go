package layout

import "fmt"

// Point is a position in layout units.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in layout units.
type Rect struct {
	Left, Top, Width, Height float64
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains returns true if pt lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.Left && pt.X < r.Right() && pt.Y >= r.Top && pt.Y < r.Bottom()
}

// Union returns the smallest rectangle containing both r and other.
// An empty rectangle contributes nothing.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	left := min(r.Left, other.Left)
	top := min(r.Top, other.Top)
	return Rect{
		Left:   left,
		Top:    top,
		Width:  max(r.Right(), other.Right()) - left,
		Height: max(r.Bottom(), other.Bottom()) - top,
	}
}

// Offset returns r moved by (dx, dy).
func (r Rect) Offset(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// String returns a string representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("Rect(%g,%g %gx%g)", r.Left, r.Top, r.Width, r.Height)
}
