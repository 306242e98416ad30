package cursor

import "fmt"

// Range is a half-open span [Start, Start+Count) of character indices.
type Range struct {
	Start int
	Count int
}

// Span returns the range between two positions in either order.
func Span(a, b int) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Start: a, Count: b - a}
}

// End returns the exclusive end index.
func (r Range) End() int {
	return r.Start + r.Count
}

// Contains returns true if idx is within the range.
func (r Range) Contains(idx int) bool {
	return idx >= r.Start && idx < r.End()
}

// Touches returns true if the ranges overlap or share an endpoint.
func (r Range) Touches(other Range) bool {
	return r.Start <= other.End() && other.Start <= r.End()
}

// Union returns the smallest range containing both ranges.
func (r Range) Union(other Range) Range {
	return Span(min(r.Start, other.Start), max(r.End(), other.End()))
}

// String returns a string representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End())
}
