package engine

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/fieldedit/internal/engine/page"
)

// AddSelRange selects count characters starting at start, merging with any
// range it overlaps or touches. A negative count selects to the end.
func (e *Engine) AddSelRange(start, count int) error {
	if e.IsLocked() {
		return ErrLocked
	}
	n := e.TextLength()
	if count < 0 {
		count = n - start
	}
	if start < 0 || start > n || start+count > n {
		return ErrOutOfRange
	}
	if count == 0 {
		return nil
	}
	defer e.enter()()

	e.sel.Add(start, count)
	e.sink.OnSelChanged()
	return nil
}

// RemoveSelRange removes the selected range exactly matching start and
// count. It returns ErrOutOfRange if no such range is selected.
func (e *Engine) RemoveSelRange(start, count int) error {
	if e.IsLocked() {
		return ErrLocked
	}
	defer e.enter()()

	if !e.sel.Remove(start, count) {
		return ErrOutOfRange
	}
	e.sink.OnSelChanged()
	return nil
}

// ClearSelection deselects everything.
func (e *Engine) ClearSelection() error {
	if e.IsLocked() {
		return ErrLocked
	}
	defer e.enter()()

	e.anchor = -1
	if e.sel.Clear() {
		e.sink.OnSelChanged()
	}
	return nil
}

// SelectAll selects the whole document.
func (e *Engine) SelectAll() error {
	if e.IsLocked() {
		return ErrLocked
	}
	n := e.TextLength()
	if n == 0 {
		return nil
	}
	defer e.enter()()

	e.sel.Clear()
	e.sel.Add(0, n)
	e.sink.OnSelChanged()
	return nil
}

// CountSelRanges returns the number of selected ranges.
func (e *Engine) CountSelRanges() int {
	return e.sel.Count()
}

// SelRange returns selected range i in document order.
func (e *Engine) SelRange(i int) (Range, error) {
	if i < 0 || i >= e.sel.Count() {
		return Range{}, ErrOutOfRange
	}
	return e.sel.At(i), nil
}

// IsSelected reports whether the character at index is selected.
func (e *Engine) IsSelected(index int) bool {
	return e.sel.Contains(index)
}

// HasSelection reports whether anything is selected.
func (e *Engine) HasSelection() bool {
	return !e.sel.IsEmpty()
}

// SelectionRects returns the highlight rectangles of the selection on page
// i, one per line and range.
func (e *Engine) SelectionRects(i int) ([]Rect, error) {
	if i < 0 || i >= len(e.pages) {
		return nil, ErrOutOfRange
	}
	defer e.enter()()

	var rects []Rect
	e.withPage(i, func(pg *page.Page) {
		start := pg.CharStart()
		end := start + pg.CharCount()
		for _, r := range e.sel.All() {
			from, to := max(r.Start, start), min(r.End(), end)
			if from < to {
				rects = append(rects, pg.RangeRects(from-start, to-from)...)
			}
		}
	})
	return rects, nil
}

// WordAt returns the word holding index, using Unicode word boundaries.
// Words never extend past the paragraph terminator.
func (e *Engine) WordAt(index int) (start, count int) {
	index = min(max(index, 0), e.TextLength())
	if e.buf.CharAt(index) == '\n' {
		return index, 0
	}
	pos, text := e.paragraphText(index)
	state := -1
	for len(text) > 0 {
		var word string
		word, text, state = uniseg.FirstWordInString(text, state)
		n := len([]rune(word))
		if index < pos+n {
			return pos, n
		}
		pos += n
	}
	return index, 0
}
