package cursor

import "sort"

// RangeSet is an ordered set of disjoint, non-touching ranges.
// The zero value is an empty set ready to use.
type RangeSet struct {
	ranges []Range
}

// Add inserts [start, start+count) and coalesces it with every range it
// overlaps or touches. Empty ranges are ignored.
func (s *RangeSet) Add(start, count int) {
	if count <= 0 {
		return
	}
	s.ranges = append(s.ranges, Range{Start: start, Count: count})
	s.normalize()
}

// Remove deletes the range exactly matching [start, start+count).
// Partial overlaps are left alone. Returns true if a range was removed.
func (s *RangeSet) Remove(start, count int) bool {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].Start >= start
	})
	if i == len(s.ranges) || s.ranges[i].Start != start || s.ranges[i].Count != count {
		return false
	}
	s.ranges = append(s.ranges[:i], s.ranges[i+1:]...)
	return true
}

// Clear removes all ranges. Returns true if the set was non-empty.
func (s *RangeSet) Clear() bool {
	had := len(s.ranges) > 0
	s.ranges = nil
	return had
}

// Count returns the number of ranges.
func (s *RangeSet) Count() int {
	return len(s.ranges)
}

// IsEmpty returns true if nothing is selected.
func (s *RangeSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

// At returns the range at index i.
func (s *RangeSet) At(i int) Range {
	return s.ranges[i]
}

// All returns a copy of the ranges in ascending order.
func (s *RangeSet) All() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// TotalLen returns the number of selected characters.
func (s *RangeSet) TotalLen() int {
	n := 0
	for _, r := range s.ranges {
		n += r.Count
	}
	return n
}

// Bounds returns the range from the first selected character to the last.
func (s *RangeSet) Bounds() Range {
	if len(s.ranges) == 0 {
		return Range{}
	}
	return s.ranges[0].Union(s.ranges[len(s.ranges)-1])
}

// Contains returns true if idx is selected.
func (s *RangeSet) Contains(idx int) bool {
	i := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].End() > idx
	})
	return i < len(s.ranges) && s.ranges[i].Contains(idx)
}

// normalize sorts and merges overlapping or touching ranges.
func (s *RangeSet) normalize() {
	if len(s.ranges) <= 1 {
		return
	}

	sort.Slice(s.ranges, func(i, j int) bool {
		if s.ranges[i].Start != s.ranges[j].Start {
			return s.ranges[i].Start < s.ranges[j].Start
		}
		return s.ranges[i].End() > s.ranges[j].End()
	})

	merged := s.ranges[:1]
	for _, r := range s.ranges[1:] {
		last := &merged[len(merged)-1]
		if last.Touches(r) {
			*last = last.Union(r)
		} else {
			merged = append(merged, r)
		}
	}
	s.ranges = merged
}
