package engine

import (
	"github.com/dshills/fieldedit/internal/engine/layout"
	"github.com/dshills/fieldedit/internal/engine/page"
	"github.com/dshills/fieldedit/internal/engine/paragraph"
)

// displaySource feeds layout the characters as displayed, so that password
// fields are measured by their alias characters.
type displaySource struct {
	e *Engine
}

func (s displaySource) Range(pos, count int) []rune {
	rs := s.e.buf.Range(pos, count)
	if s.e.params.Password {
		return s.e.alias(rs)
	}
	return rs
}

// pageSource adapts the engine to page.Source.
type pageSource struct {
	displaySource
}

func (s pageSource) CharAt(idx int) rune { return s.e.buf.CharAt(idx) }

func (s pageSource) ParagraphCount() int { return len(s.e.paras) }

func (s pageSource) Paragraph(i int) *paragraph.Paragraph { return &s.e.paras[i] }

func (s pageSource) Breaker() layout.LineBreaker { return s.e.lb }

func (s pageSource) Metrics() page.Metrics {
	p := s.e.params
	return page.Metrics{
		LinesPerPage: p.LinesPerPage,
		PlateWidth:   p.PlateWidth,
		LineSpace:    p.LineSpace,
		FontSize:     p.FontSize,
		CombWidth:    p.combWidth(),
		Alignment:    p.Alignment,
	}
}

func (e *Engine) textSource() displaySource {
	return displaySource{e: e}
}

// CountPages returns the number of pages.
func (e *Engine) CountPages() int {
	return len(e.pages)
}

// Page returns page i. Queries on a page the host has not loaded compute
// its lines for that query only; use WithPage to keep it resident.
func (e *Engine) Page(i int) (*page.Page, error) {
	if i < 0 || i >= len(e.pages) {
		return nil, ErrOutOfRange
	}
	return e.pages[i], nil
}

// WithPage loads page i, notifies the sink, runs fn, then unloads it.
// The engine is locked while fn runs.
func (e *Engine) WithPage(i int, fn func(pg *page.Page)) error {
	if i < 0 || i >= len(e.pages) {
		return ErrOutOfRange
	}
	defer e.enter()()
	e.withPage(i, fn)
	return nil
}

func (e *Engine) withPage(i int, fn func(pg *page.Page)) {
	pg := e.pages[i]
	e.sink.OnPageLoad(i)
	pg.Load()
	defer func() {
		pg.Unload()
		e.sink.OnPageUnload(i)
	}()
	fn(pg)
}

// updatePages resizes the page list to ceil(lines / linesPerPage).
// Surviving pages keep their identity.
func (e *Engine) updatePages() {
	perPage := max(e.params.LinesPerPage, 1)
	want := (e.lineCount + perPage - 1) / perPage
	if want < 1 {
		want = 1
	}
	if len(e.pages) > want {
		for _, pg := range e.pages[want:] {
			pg.Release()
		}
		e.pages = e.pages[:want]
		return
	}
	src := pageSource{displaySource{e: e}}
	for i := len(e.pages); i < want; i++ {
		e.pages = append(e.pages, page.New(src, i))
	}
}

// releasePages drops resident page data before the paragraph list changes.
func (e *Engine) releasePages() {
	for _, pg := range e.pages {
		pg.Release()
	}
}

// removePages destroys every page.
func (e *Engine) removePages() {
	e.releasePages()
	e.pages = nil
}
