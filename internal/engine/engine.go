package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/dshills/fieldedit/internal/engine/buffer"
	"github.com/dshills/fieldedit/internal/engine/cursor"
	"github.com/dshills/fieldedit/internal/engine/history"
	"github.com/dshills/fieldedit/internal/engine/layout"
	"github.com/dshills/fieldedit/internal/engine/page"
	"github.com/dshills/fieldedit/internal/engine/paragraph"
)

// Re-export commonly used types for convenience.
type (
	// Caret is an insertion point with its character association.
	Caret = cursor.Caret

	// Range is a span of character indices.
	Range = cursor.Range

	// Record is an undo record.
	Record = history.Record

	// Rect is a rectangle in layout units.
	Rect = layout.Rect

	// Point is a position in layout units.
	Point = layout.Point
)

// sentinel terminates the buffer so that every paragraph, including the
// last, ends in a terminator.
const sentinel = '\n'

// Engine is a single field's editing engine. It is not safe for
// concurrent use.
type Engine struct {
	params     Params
	initParams *Params
	sink       EventSink
	logger     *zap.Logger
	lb         layout.LineBreaker
	chunkSize  int

	buf       *buffer.Buffer
	endings   buffer.Normalizer
	paras     []paragraph.Paragraph
	pages     []*page.Page
	lineCount int

	state State

	caret      cursor.Caret
	caretPage  int
	caretRect  layout.Rect
	posReserve float64
	anchor     int
	sel        cursor.RangeSet
}

// New creates an engine holding an empty document.
func New(opts ...Option) *Engine {
	e := &Engine{
		params:    DefaultParams(),
		sink:      NopSink{},
		logger:    zap.NewNop(),
		lb:        layout.NewCellBreaker(),
		chunkSize: buffer.DefaultChunkSize,
		anchor:    -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.initParams != nil {
		if err := e.initParams.Check(); err != nil {
			e.logger.Warn("ignoring initial params", zap.Error(err))
		} else {
			e.params = *e.initParams
		}
		e.initParams = nil
	}
	if e.params.AliasChar == 0 {
		e.params.AliasChar = DefaultAliasChar
	}

	e.buf = buffer.New(buffer.WithChunkSize(e.chunkSize))
	e.lb.Configure(e.params.style())
	e.reset(nil)
	return e
}

// Params returns the current parameters.
func (e *Engine) Params() Params {
	return e.params
}

// SetParams reconfigures the engine and lays the document out again.
func (e *Engine) SetParams(p Params) error {
	if e.IsLocked() {
		return ErrLocked
	}
	if err := p.Check(); err != nil {
		return err
	}
	defer e.enter()()

	if p.AliasChar == 0 {
		p.AliasChar = DefaultAliasChar
	}
	e.params = p
	e.lb.Configure(p.style())
	e.relayout()
	return nil
}

// Layout discards all pages, recounts every paragraph's lines, rebuilds
// the pages and clamps the caret into the text.
func (e *Engine) Layout() error {
	if e.IsLocked() {
		return ErrLocked
	}
	defer e.enter()()

	e.relayout()
	e.logger.Debug("layout",
		zap.Int("paragraphs", len(e.paras)),
		zap.Int("lines", e.lineCount),
		zap.Int("pages", len(e.pages)))
	return nil
}

// relayout rebuilds every line count and page, then the caret geometry.
func (e *Engine) relayout() {
	e.removePages()
	for i := range e.paras {
		e.paras[i].MarkDirty()
	}
	e.updateLineCounts()
	e.updatePages()
	e.placeCaret(min(e.caret.Index, e.TextLength()), true)
}

// reset replaces the whole document with text, which must already be
// normalized and limited.
func (e *Engine) reset(text []rune) {
	e.removePages()

	all := make([]rune, 0, len(text)+1)
	all = append(all, text...)
	all = append(all, sentinel)
	e.buf.SetText(all)

	e.paras = e.paras[:0]
	start := 0
	for i, r := range all {
		if r == '\n' {
			e.paras = append(e.paras, paragraph.New(start, i-start+1))
			start = i + 1
		}
	}

	e.sel.Clear()
	e.anchor = -1
	e.updateLineCounts()
	e.updatePages()
	e.placeCaret(0, true)
}

// SetText replaces the document. Line endings are normalized and the
// style of the first one is remembered for GetText. The text is truncated
// to the character limit. The caret moves to 0 and the selection is
// cleared; no undo record is emitted.
func (e *Engine) SetText(s string) error {
	if e.IsLocked() {
		return ErrLocked
	}
	defer e.enter()()

	e.endings.Reset()
	text := e.normalizeInput(s)
	if limit := e.params.CharacterLimit; limit > 0 && len(text) > limit {
		text = text[:limit]
	}
	e.reset(text)
	return nil
}

// TextLength returns the number of characters in the document.
func (e *Engine) TextLength() int {
	return e.buf.Len() - 1
}

// Text returns the whole document with its original line endings.
func (e *Engine) Text() string {
	return e.GetText(0, -1)
}

// GetText returns count characters starting at start with '\n' converted
// back to the remembered line ending style. A negative count reads to the
// end. The range is clamped to the document.
func (e *Engine) GetText(start, count int) string {
	n := e.TextLength()
	start = min(max(start, 0), n)
	if count < 0 || start+count > n {
		count = n - start
	}
	return e.endings.Denormalize(e.buf.RangeString(start, count))
}

// DisplayText is GetText as the field displays it: password fields show
// the alias character in place of everything but line terminators.
func (e *Engine) DisplayText(start, count int) string {
	if !e.params.Password {
		return e.GetText(start, count)
	}
	n := e.TextLength()
	start = min(max(start, 0), n)
	if count < 0 || start+count > n {
		count = n - start
	}
	return string(e.alias(e.buf.Range(start, count)))
}

// rawText returns the document in internal form.
func (e *Engine) rawText() []rune {
	return e.buf.Range(0, e.TextLength())
}

// alias replaces every non-terminator in rs, in place, with the alias
// character.
func (e *Engine) alias(rs []rune) []rune {
	for i, r := range rs {
		if r != '\n' {
			rs[i] = e.params.AliasChar
		}
	}
	return rs
}

// normalizeInput converts host text to internal form.
func (e *Engine) normalizeInput(s string) []rune {
	rs := []rune(e.endings.Normalize(s))
	if e.params.Multiline {
		return rs
	}
	out := rs[:0]
	for _, r := range rs {
		if r != '\n' {
			out = append(out, r)
		}
	}
	return out
}

// LineEnding returns the line ending style GetText restores.
func (e *Engine) LineEnding() buffer.LineEnding {
	return e.endings.First()
}

// CountParagraphs returns the number of paragraphs, including the final
// one holding the end-of-text sentinel.
func (e *Engine) CountParagraphs() int {
	return len(e.paras)
}

// Paragraph returns the document span of paragraph i, terminator included.
func (e *Engine) Paragraph(i int) (Range, error) {
	if i < 0 || i >= len(e.paras) {
		return Range{}, ErrOutOfRange
	}
	p := &e.paras[i]
	return Range{Start: p.Start(), Count: p.Len()}, nil
}

// LineCount returns the total number of visual lines.
func (e *Engine) LineCount() int {
	return e.lineCount
}

// ChunkCount returns the number of text buffer chunks.
func (e *Engine) ChunkCount() int {
	return e.buf.ChunkCount()
}

// Compact packs the text buffer into as few chunks as possible.
func (e *Engine) Compact() {
	e.buf.Compact()
}

// paraIndexOf returns the paragraph containing document index idx.
func (e *Engine) paraIndexOf(idx int) int {
	i := sort.Search(len(e.paras), func(i int) bool {
		return e.paras[i].End() > idx
	})
	return min(i, len(e.paras)-1)
}

// updateLineCounts recomputes dirty paragraphs and the total line count.
func (e *Engine) updateLineCounts() {
	src := e.textSource()
	total := 0
	for i := range e.paras {
		e.paras[i].CalcLines(src, e.lb)
		total += e.paras[i].LineCount()
	}
	e.lineCount = total
}

// linesIn sums the line counts of paragraphs [from, to).
func (e *Engine) linesIn(from, to int) int {
	src := e.textSource()
	total := 0
	for i := from; i < to; i++ {
		e.paras[i].CalcLines(src, e.lb)
		total += e.paras[i].LineCount()
	}
	return total
}

// lineOfChar returns the global visual line holding document index idx.
func (e *Engine) lineOfChar(idx int) int {
	pi := e.paraIndexOf(idx)
	line := e.linesIn(0, pi)
	p := &e.paras[pi]
	p.Load(e.textSource(), e.lb)
	defer p.Unload()
	return line + p.LineIndexOf(idx)
}
