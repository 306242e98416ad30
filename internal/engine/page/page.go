// Package page maps fixed windows of visual lines to character geometry.
//
// A Page covers lines [Index*LinesPerPage, (Index+1)*LinesPerPage) of the
// document. While loaded it holds the paragraphs under those lines
// resident and answers character rectangle and hit-test queries in
// page-local coordinates: the first line starts at y=0 and each further
// line is LineSpace lower.
package page

import (
	"github.com/dshills/fieldedit/internal/engine/layout"
	"github.com/dshills/fieldedit/internal/engine/paragraph"
)

// hitTolerance keeps a clamped point strictly inside the content box.
const hitTolerance = 0.1

// Metrics is the page geometry shared by all pages of an engine.
type Metrics struct {
	LinesPerPage int
	PlateWidth   float64
	LineSpace    float64
	FontSize     float64
	CombWidth    float64
	Alignment    layout.Alignment
}

// Source is the document a page reads from.
type Source interface {
	paragraph.TextSource
	CharAt(idx int) rune
	ParagraphCount() int
	Paragraph(i int) *paragraph.Paragraph
	Breaker() layout.LineBreaker
	Metrics() Metrics
}

// Line is a visual line placed on a page.
type Line struct {
	// Start and Count locate the line in the document.
	Start int
	Count int
	// ParaStart is the document index of the paragraph owning the line;
	// piece indices in Layout are relative to it.
	ParaStart int
	Rect      layout.Rect
	Layout    layout.Line
}

// Page is one pagination unit.
type Page struct {
	index int
	src   Source

	refs   int
	loaded bool
	first  int
	last   int

	lines     []Line
	charStart int
	charCount int
	box       layout.Rect
}

// New creates an unloaded page.
func New(src Source, index int) *Page {
	return &Page{index: index, src: src}
}

// Index returns the page number.
func (pg *Page) Index() int { return pg.index }

// IsLoaded reports whether the page's line data is resident.
func (pg *Page) IsLoaded() bool { return pg.loaded }

// Load makes the page resident until the matching Unload.
func (pg *Page) Load() {
	pg.refs++
	pg.ensure()
}

// Unload releases one Load.
func (pg *Page) Unload() {
	if pg.refs == 0 {
		return
	}
	pg.refs--
	if pg.refs == 0 {
		pg.Release()
	}
}

// Release drops resident data without touching the load count. The
// engine calls it before changing the paragraph list; the next query
// rebuilds the page.
func (pg *Page) Release() {
	if !pg.loaded {
		return
	}
	for i := pg.first; i <= pg.last && i < pg.src.ParagraphCount(); i++ {
		pg.src.Paragraph(i).Unload()
	}
	pg.loaded = false
	pg.lines = nil
}

// hold keeps the page resident for the duration of one query.
func (pg *Page) hold() func() {
	pg.Load()
	return pg.Unload
}

// CharStart returns the document index of the page's first character.
func (pg *Page) CharStart() int {
	defer pg.hold()()
	return pg.charStart
}

// CharCount returns the number of characters on the page.
func (pg *Page) CharCount() int {
	defer pg.hold()()
	return pg.charCount
}

// ContentBox returns the rectangle enclosing the page's lines.
func (pg *Page) ContentBox() layout.Rect {
	defer pg.hold()()
	return pg.box
}

// Lines returns the placed lines of the page.
func (pg *Page) Lines() []Line {
	defer pg.hold()()
	out := make([]Line, len(pg.lines))
	copy(out, pg.lines)
	return out
}

// LineCount returns the number of visual lines on the page.
func (pg *Page) LineCount() int {
	defer pg.hold()()
	return len(pg.lines)
}

// ensure builds the page from the paragraphs under its line window.
func (pg *Page) ensure() {
	if pg.loaded {
		return
	}
	m := pg.src.Metrics()
	lb := pg.src.Breaker()
	perPage := max(m.LinesPerPage, 1)
	lineStart := pg.index * perPage

	pg.lines = pg.lines[:0]
	pg.first, pg.last = -1, -1
	seen := 0
	n := pg.src.ParagraphCount()
	for i := 0; i < n && len(pg.lines) < perPage; i++ {
		para := pg.src.Paragraph(i)
		para.CalcLines(pg.src, lb)
		count := para.LineCount()
		if seen+count <= lineStart {
			seen += count
			continue
		}
		para.Load(pg.src, lb)
		if pg.first < 0 {
			pg.first = i
		}
		pg.last = i
		for li := max(lineStart-seen, 0); li < count && len(pg.lines) < perPage; li++ {
			ln := para.Line(li)
			row := float64(len(pg.lines))
			pg.lines = append(pg.lines, Line{
				Start:     para.Start() + ln.Start,
				Count:     ln.Count,
				ParaStart: para.Start(),
				Rect: layout.Rect{
					Left:   m.Alignment.Offset(ln.Width, m.PlateWidth),
					Top:    row * m.LineSpace,
					Width:  ln.Width,
					Height: m.LineSpace,
				},
				Layout: ln,
			})
		}
		seen += count
	}
	if pg.first < 0 {
		pg.first = n
	}

	pg.charStart, pg.charCount = 0, 0
	pg.box = layout.Rect{}
	if len(pg.lines) > 0 {
		first, last := pg.lines[0], pg.lines[len(pg.lines)-1]
		pg.charStart = first.Start
		pg.charCount = last.Start + last.Count - first.Start
		width := m.PlateWidth
		for _, ln := range pg.lines {
			width = max(width, ln.Rect.Right())
		}
		pg.box = layout.Rect{Width: width, Height: float64(len(pg.lines)) * m.LineSpace}
	}
	pg.loaded = true
}

// lineOf returns the position in pg.lines of the line holding the
// document index idx, or the last line if none does.
func (pg *Page) lineOf(idx int) int {
	for i, ln := range pg.lines {
		if idx < ln.Start+ln.Count {
			return i
		}
	}
	return len(pg.lines) - 1
}

// CharRect returns the box and bidi level of the character idx positions
// after CharStart. In comb mode every character occupies one CombWidth
// cell counted from the line start.
func (pg *Page) CharRect(idx int, comb bool) (layout.Rect, int) {
	defer pg.hold()()
	if len(pg.lines) == 0 {
		return layout.Rect{}, 0
	}
	m := pg.src.Metrics()
	abs := pg.charStart + idx
	ln := pg.lines[pg.lineOf(abs)]

	x, w, level, ok := ln.Layout.CharBox(abs - ln.ParaStart)
	if !ok {
		x, w = ln.Layout.Width, 0
	}
	if comb && m.CombWidth > 0 {
		x = float64(abs-ln.Start) * m.CombWidth
		w = m.CombWidth
	}
	return layout.Rect{
		Left:   ln.Rect.Left + x,
		Top:    ln.Rect.Top,
		Width:  w,
		Height: m.FontSize,
	}, level
}

// CharIndexAt returns the character under pt, relative to CharStart, and
// whether the caret belongs before it. Points outside the content box are
// clamped onto it.
func (pg *Page) CharIndexAt(pt layout.Point) (int, bool) {
	defer pg.hold()()
	if len(pg.lines) == 0 {
		return 0, true
	}
	m := pg.src.Metrics()

	x := clamp(pt.X, pg.box.Left, pg.box.Right()-hitTolerance)
	y := clamp(pt.Y, pg.box.Top, pg.box.Bottom()-hitTolerance)
	row := 0
	if m.LineSpace > 0 {
		row = int(y / m.LineSpace)
	}
	row = min(max(row, 0), len(pg.lines)-1)
	ln := pg.lines[row]

	lx := x - ln.Rect.Left
	rel := ln.Layout.CharAt(lx)
	abs := ln.ParaStart + rel
	if r := pg.src.CharAt(abs); r == '\n' || r == '\r' {
		return abs - pg.charStart, true
	}

	cx, cw, level, _ := ln.Layout.CharBox(rel)
	before := lx < cx+cw/2
	if level%2 == 1 {
		before = !before
	}
	return abs - pg.charStart, before
}

// RangeRects returns one rectangle per line covering count characters
// starting idx positions after CharStart.
func (pg *Page) RangeRects(idx, count int) []layout.Rect {
	defer pg.hold()()
	var rects []layout.Rect
	start := pg.charStart + idx
	end := start + count
	for _, ln := range pg.lines {
		from := max(start, ln.Start)
		to := min(end, ln.Start+ln.Count)
		if from >= to {
			continue
		}
		var r layout.Rect
		for i := from; i < to; i++ {
			cr, _ := pg.CharRect(i-pg.charStart, false)
			if cr.Width == 0 {
				cr.Width = 1
			}
			cr.Height = ln.Rect.Height
			r = r.Union(cr)
		}
		rects = append(rects, r)
	}
	return rects
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
