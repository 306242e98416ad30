package engine

import (
	"github.com/rivo/uniseg"
	"go.uber.org/zap"

	"github.com/dshills/fieldedit/internal/engine/cursor"
	"github.com/dshills/fieldedit/internal/engine/layout"
	"github.com/dshills/fieldedit/internal/engine/page"
)

// Direction is a caret movement.
type Direction uint8

const (
	Left Direction = iota
	Right
	Up
	Down
	LineStart
	LineEnd
	ParagraphStart
	ParagraphEnd
	DocumentStart
	DocumentEnd
)

var directionNames = [...]string{
	Left:           "left",
	Right:          "right",
	Up:             "up",
	Down:           "down",
	LineStart:      "line start",
	LineEnd:        "line end",
	ParagraphStart: "paragraph start",
	ParagraphEnd:   "paragraph end",
	DocumentStart:  "document start",
	DocumentEnd:    "document end",
}

// String returns the name of the direction.
func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}

// Caret returns the caret in canonical form.
func (e *Engine) Caret() Caret {
	return e.caret
}

// CaretRect returns the caret rectangle on CaretPage, one unit wide.
func (e *Engine) CaretRect() Rect {
	return e.caretRect
}

// CaretPage returns the page holding the caret.
func (e *Engine) CaretPage() int {
	return e.caretPage
}

// SetCaretPos moves the caret to index. before associates the caret with
// the character at index rather than the one preceding it. Indices outside
// the document are clamped.
func (e *Engine) SetCaretPos(index int, before bool) error {
	if e.IsLocked() {
		return ErrLocked
	}
	defer e.enter()()

	if n := e.TextLength(); index < 0 || index > n {
		e.logger.Warn("caret index clamped",
			zap.Int("index", index),
			zap.Int("length", n))
	}
	e.placeCaret(index, before)
	e.anchor = -1
	e.sink.OnCaretChanged()
	return nil
}

// MoveCaretPos moves the caret one step in dir. Any selection is cleared;
// with extend the selection then spans from where extending began to the
// new caret.
func (e *Engine) MoveCaretPos(dir Direction, extend bool) error {
	if e.IsLocked() {
		return ErrLocked
	}
	defer e.enter()()

	selChanged := e.sel.Clear()
	if !extend {
		e.anchor = -1
	} else if e.anchor < 0 {
		e.anchor = e.caret.Index
	}

	e.move(dir)

	if extend && e.anchor != e.caret.Index {
		r := cursor.Span(e.anchor, e.caret.Index)
		e.sel.Add(r.Start, r.Count)
		selChanged = true
	}
	e.sink.OnCaretChanged()
	if selChanged {
		e.sink.OnSelChanged()
	}
	return nil
}

func (e *Engine) move(dir Direction) {
	idx := e.caret.Index
	switch dir {
	case Left:
		if idx > 0 {
			e.placeCaret(e.prevBoundary(idx), true)
		}
	case Right:
		if idx < e.TextLength() {
			e.placeCaret(e.nextBoundary(idx), true)
		}
	case Up, Down:
		e.moveVertical(dir == Up)
	case LineStart, LineEnd:
		start, count := e.lineSpan(idx)
		if dir == LineStart {
			e.placeCaret(start, true)
			return
		}
		last := start + count - 1
		if e.buf.CharAt(last) == '\n' {
			e.placeCaret(last, true)
		} else {
			e.placeCaret(last, false)
		}
	case ParagraphStart:
		e.placeCaret(e.paras[e.paraIndexOf(idx)].Start(), true)
	case ParagraphEnd:
		e.placeCaret(e.paras[e.paraIndexOf(idx)].End()-1, true)
	case DocumentStart:
		e.placeCaret(0, true)
	case DocumentEnd:
		e.placeCaret(e.TextLength(), true)
	}
}

// moveVertical moves the caret one line up or down, keeping the
// horizontal position the caret had before the first vertical move.
func (e *Engine) moveVertical(up bool) {
	reserve := e.posReserve
	step := e.params.LineSpace
	y := e.caretRect.Top + e.caretRect.Height/2
	if up {
		y -= step
	} else {
		y += step
	}

	pi := e.caretPage
	var box layout.Rect
	e.withPage(pi, func(pg *page.Page) { box = pg.ContentBox() })
	switch {
	case y < box.Top:
		if pi == 0 {
			return
		}
		pi--
		e.withPage(pi, func(pg *page.Page) { y = pg.ContentBox().Bottom() - step/2 })
	case y >= box.Bottom():
		if pi >= len(e.pages)-1 {
			return
		}
		pi++
		y = step / 2
	}

	var (
		idx    int
		before bool
	)
	e.withPage(pi, func(pg *page.Page) {
		idx, before = pg.CharIndexAt(layout.Point{X: reserve, Y: y})
		idx += pg.CharStart()
	})
	e.placeCaret(idx, before)
	e.posReserve = reserve
}

// lineSpan returns the visual line holding document index idx.
func (e *Engine) lineSpan(idx int) (start, count int) {
	p := &e.paras[e.paraIndexOf(idx)]
	p.Load(e.textSource(), e.lb)
	start, count = p.LineRange(p.LineIndexOf(idx))
	p.Unload()
	return start, count
}

// placeCaret moves the caret and recomputes its page and rectangle. It
// does not notify the sink.
func (e *Engine) placeCaret(index int, before bool) {
	n := e.TextLength()
	index = min(max(index, 0), n)

	perPage := max(e.params.LinesPerPage, 1)
	pi := min(e.lineOfChar(index)/perPage, len(e.pages)-1)

	var (
		rect  layout.Rect
		level int
		assoc = before
	)
	comb := e.params.CombText
	e.withPage(pi, func(pg *page.Page) {
		rel := index - pg.CharStart()
		if comb && assoc && rel > 0 {
			// A comb caret sits on the right edge of the previous cell.
			rel--
			assoc = false
		}
		rect, level = pg.CharRect(rel, comb)
	})

	if (level%2 == 1) == assoc {
		rect.Left += rect.Width - 1
	}
	if rect.Width == 0 && rect.Left > 1 {
		rect.Left--
	}
	rect.Width = 1

	e.caret = cursor.Caret{Index: index, Before: before}.Normalize().Clamp(n)
	e.caretPage = pi
	e.caretRect = rect
	e.posReserve = rect.Left
}

// paragraphText returns the paragraph holding idx and its text.
func (e *Engine) paragraphText(idx int) (start int, text string) {
	p := &e.paras[e.paraIndexOf(idx)]
	return p.Start(), e.buf.RangeString(p.Start(), p.Len())
}

// prevBoundary returns the start of the grapheme cluster ending at idx.
// Clusters never span paragraphs.
func (e *Engine) prevBoundary(idx int) int {
	start, text := e.paragraphText(idx - 1)
	pos, prev := start, start
	state := -1
	for len(text) > 0 && pos < idx {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		prev = pos
		pos += len([]rune(cluster))
	}
	return prev
}

// nextBoundary returns the end of the grapheme cluster starting at idx.
func (e *Engine) nextBoundary(idx int) int {
	start, text := e.paragraphText(idx)
	pos := start
	state := -1
	for len(text) > 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		pos += len([]rune(cluster))
		if pos > idx {
			return pos
		}
	}
	return idx + 1
}
