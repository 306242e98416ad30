package engine

import (
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/fieldedit/internal/engine/cursor"
	"github.com/dshills/fieldedit/internal/engine/history"
	"github.com/dshills/fieldedit/internal/engine/layout"
	"github.com/dshills/fieldedit/internal/engine/paragraph"
)

// Insert inserts text at the caret, replacing the selection if there is
// one. It returns the number of characters inserted, which is less than
// the length of text when the character limit or the field area clipped
// it.
func (e *Engine) Insert(text string) (int, error) {
	if e.IsLocked() {
		return 0, ErrLocked
	}
	defer e.enter()()

	rs := e.normalizeInput(text)
	if len(rs) == 0 {
		return 0, nil
	}

	if limit := e.params.CharacterLimit; limit > 0 {
		remaining := limit - (e.TextLength() - e.sel.TotalLen())
		if remaining <= 0 {
			return e.reject("insert", ErrFull)
		}
		if len(rs) > remaining {
			rs = rs[:remaining]
		}
	}

	at := e.caret.Index
	dels := e.sel.All()
	if len(dels) > 0 {
		at = e.sel.Bounds().Start
	}

	if e.params.LimitAreaHorizontal || e.params.LimitAreaVertical {
		for len(rs) > 0 && !e.fits(e.candidate(dels, at, rs)) {
			rs = rs[:len(rs)-1]
		}
		if len(rs) == 0 {
			return e.reject("insert", ErrAreaOverflow)
		}
	}

	if err := e.validate(e.candidate(dels, at, rs)); err != nil {
		return e.reject("insert", err)
	}

	group := uuid.New()
	if len(dels) > 0 {
		e.deleteSelection(group)
	}

	e.sink.OnAddUndoRecord(history.NewInsert(group, at, string(rs)))
	prev := e.Text()
	e.rawInsert(at, rs)

	end := at + len(rs)
	if e.buf.CharAt(end-1) != '\n' {
		e.placeCaret(end-1, false)
	} else {
		e.placeCaret(end, true)
	}
	e.sink.OnCaretChanged()
	e.sink.OnTextChanged(prev)
	return len(rs), nil
}

// Delete removes the selection if there is one. Otherwise it removes one
// character, as a grapheme cluster, before the caret (backspace) or after
// it. Deleting before the start or after the end does nothing.
func (e *Engine) Delete(backspace bool) error {
	if e.IsLocked() {
		return ErrLocked
	}
	defer e.enter()()

	if dels := e.sel.All(); len(dels) > 0 {
		if err := e.validate(e.candidate(dels, dels[0].Start, nil)); err != nil {
			_, err = e.reject("delete", err)
			return err
		}
		e.deleteSelection(uuid.New())
		return nil
	}

	caret := e.caret.Index
	var start, count int
	if backspace {
		if caret == 0 {
			return nil
		}
		start = e.prevBoundary(caret)
		count = caret - start
	} else {
		if caret >= e.TextLength() {
			return nil
		}
		start = caret
		count = e.nextBoundary(caret) - caret
	}
	return e.deleteRange(start, count)
}

// DeleteRange removes count characters starting at start. A negative
// count deletes to the end. The selection is cleared first.
func (e *Engine) DeleteRange(start, count int) error {
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

	if e.sel.Clear() {
		e.sink.OnSelChanged()
	}
	return e.deleteRange(start, count)
}

// ClearText deletes the whole document as one undoable edit. An empty
// document is left alone and no record is emitted.
func (e *Engine) ClearText() error {
	return e.DeleteRange(0, -1)
}

// Replace replaces count characters at start with text as one undoable
// edit. The text is clipped to the character limit.
func (e *Engine) Replace(start, count int, text string) error {
	if e.IsLocked() {
		return ErrLocked
	}
	n := e.TextLength()
	if start < 0 || count < 0 || start+count > n {
		return ErrOutOfRange
	}
	defer e.enter()()

	rs := e.normalizeInput(text)
	if limit := e.params.CharacterLimit; limit > 0 {
		remaining := max(limit-(n-count), 0)
		if len(rs) > remaining {
			rs = rs[:remaining]
		}
	}
	if count == 0 && len(rs) == 0 {
		return nil
	}
	del := []cursor.Range{{Start: start, Count: count}}
	if err := e.validate(e.candidate(del, start, rs)); err != nil {
		_, err = e.reject("replace", err)
		return err
	}

	if e.sel.Clear() {
		e.sink.OnSelChanged()
	}
	group := uuid.New()
	prev := e.Text()
	if count > 0 {
		e.sink.OnAddUndoRecord(history.NewDelete(group, start, e.caret.Index, e.buf.RangeString(start, count), false))
		e.rawDelete(start, count)
	}
	if len(rs) > 0 {
		e.sink.OnAddUndoRecord(history.NewInsert(group, start, string(rs)))
		e.rawInsert(start, rs)
	}
	e.placeCaret(start+len(rs), true)
	e.sink.OnCaretChanged()
	e.sink.OnTextChanged(prev)
	return nil
}

// deleteRange validates, records and applies one delete, then puts the
// caret at start.
func (e *Engine) deleteRange(start, count int) error {
	del := []cursor.Range{{Start: start, Count: count}}
	if err := e.validate(e.candidate(del, start, nil)); err != nil {
		_, err = e.reject("delete", err)
		return err
	}

	text := e.buf.RangeString(start, count)
	e.sink.OnAddUndoRecord(history.NewDelete(uuid.New(), start, e.caret.Index, text, false))
	prev := e.Text()
	e.rawDelete(start, count)
	e.placeCaret(start, true)
	e.sink.OnCaretChanged()
	e.sink.OnTextChanged(prev)
	return nil
}

// deleteSelection deletes every selected range, last first, each through
// the undo-logged delete, then clears the selection and puts the caret at
// the start of the first range.
func (e *Engine) deleteSelection(group uuid.UUID) {
	ranges := e.sel.All()
	prev := e.Text()
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		text := e.buf.RangeString(r.Start, r.Count)
		e.sink.OnAddUndoRecord(history.NewDelete(group, r.Start, e.caret.Index, text, true))
		e.rawDelete(r.Start, r.Count)
	}
	e.sel.Clear()
	e.sink.OnTextChanged(prev)
	e.sink.OnSelChanged()
	e.placeCaret(ranges[0].Start, true)
	e.sink.OnCaretChanged()
}

// reject logs a refused edit.
func (e *Engine) reject(op string, err error) (int, error) {
	e.logger.Debug("edit rejected", zap.String("op", op), zap.Error(err))
	return 0, err
}

// candidate builds the whole document that would result from deleting
// dels and then inserting ins at at. The copy costs O(document length).
func (e *Engine) candidate(dels []cursor.Range, at int, ins []rune) []rune {
	text := e.rawText()
	for i := len(dels) - 1; i >= 0; i-- {
		text = slices.Delete(text, dels[i].Start, dels[i].End())
	}
	return slices.Insert(text, at, ins...)
}

// validate asks the host to accept a candidate document.
func (e *Engine) validate(candidate []rune) error {
	if !e.params.Validate {
		return nil
	}
	if !e.sink.OnValidate(e.endings.Denormalize(string(candidate))) {
		return ErrInvalidated
	}
	return nil
}

// fits reports whether a candidate document stays inside the field box.
func (e *Engine) fits(candidate []rune) bool {
	if e.params.Password {
		candidate = e.alias(candidate)
	}
	width, lines := layout.Measure(e.lb, string(candidate))
	if e.params.LimitAreaHorizontal && width > e.params.PlateWidth {
		return false
	}
	if e.params.LimitAreaVertical &&
		float64(lines)*e.params.LineSpace > e.params.LineSpace*float64(e.params.LinesPerPage) {
		return false
	}
	return true
}

// rawInsert inserts text at at and splits the paragraph under at at every
// terminator in text. It neither validates nor records.
func (e *Engine) rawInsert(at int, text []rune) {
	if len(text) == 0 {
		return
	}
	e.releasePages()

	pi := e.paraIndexOf(at)
	oldLines := e.linesIn(pi, pi+1)
	p := &e.paras[pi]
	head := at - p.Start()
	tail := p.Len() - head

	var added []paragraph.Paragraph
	segStart := 0
	next := p.Start()
	first := true
	for i, r := range text {
		if r != '\n' {
			continue
		}
		if first {
			p.SetLength(head + i + 1)
			next = p.End()
			first = false
		} else {
			np := paragraph.New(next, i-segStart+1)
			added = append(added, np)
			next = np.End()
		}
		segStart = i + 1
	}
	if first {
		p.SetLength(p.Len() + len(text))
	} else {
		added = append(added, paragraph.New(next, len(text)-segStart+tail))
	}

	for i := pi + 1; i < len(e.paras); i++ {
		e.paras[i].IncrementStart(len(text))
	}
	e.paras = slices.Insert(e.paras, pi+1, added...)
	e.buf.Insert(at, text)

	e.lineCount += e.linesIn(pi, pi+1+len(added)) - oldLines
	e.updatePages()
}

// rawDelete removes count characters at at, merging the paragraphs the
// range spans. It neither validates nor records. The sentinel is never
// part of the range.
func (e *Engine) rawDelete(at, count int) {
	if count == 0 {
		return
	}
	e.releasePages()

	end := at + count
	bi := e.paraIndexOf(at)
	ei := e.paraIndexOf(end - 1)
	if e.paras[ei].End() == end {
		// The range swallows a terminator, so the following paragraph
		// joins the first one.
		ei++
	}
	oldLines := e.linesIn(bi, ei+1)

	head := at - e.paras[bi].Start()
	rest := e.paras[ei].End() - end
	e.paras[bi].SetLength(head + rest)
	e.paras = slices.Delete(e.paras, bi+1, ei+1)
	for i := bi + 1; i < len(e.paras); i++ {
		e.paras[i].DecrementStart(count)
	}
	e.buf.Delete(at, count)

	e.lineCount += e.linesIn(bi, bi+1) - oldLines
	e.updatePages()
}
