// Package paragraph holds the lazily laid-out paragraphs of an edit engine.
//
// A Paragraph is a span of the document ending in, and including, one '\n'.
// Its visual lines are computed on demand by a layout.LineBreaker and kept
// only while the paragraph is loaded. The line count survives unloading so
// that pagination does not need the lines themselves.
package paragraph

import (
	"fmt"

	"github.com/dshills/fieldedit/internal/engine/layout"
)

// TextSource reads characters from the document.
type TextSource interface {
	Range(pos, count int) []rune
}

// Paragraph is one buffer span and its cached layout.
type Paragraph struct {
	start     int
	length    int
	lineCount int
	lines     []layout.Line
	refs      int
}

// New creates a dirty paragraph covering [start, start+length).
func New(start, length int) Paragraph {
	return Paragraph{start: start, length: length, lineCount: -1}
}

// Start returns the document index of the first character.
func (p *Paragraph) Start() int { return p.start }

// Len returns the number of characters, including the terminator.
func (p *Paragraph) Len() int { return p.length }

// End returns the document index just past the terminator.
func (p *Paragraph) End() int { return p.start + p.length }

// IsDirty reports whether the line count must be recomputed.
func (p *Paragraph) IsDirty() bool { return p.lineCount < 0 }

// IsLoaded reports whether line data is resident.
func (p *Paragraph) IsLoaded() bool { return p.refs > 0 }

// CalcLines recomputes the line count if it is dirty. Line data is kept
// only when the paragraph is loaded.
func (p *Paragraph) CalcLines(src TextSource, lb layout.LineBreaker) {
	if !p.IsDirty() {
		return
	}
	lines := lb.Break(src.Range(p.start, p.length))
	p.lineCount = len(lines)
	if p.refs > 0 {
		p.lines = lines
	}
}

// Load makes line data resident until the matching Unload.
func (p *Paragraph) Load(src TextSource, lb layout.LineBreaker) {
	p.refs++
	if p.lines == nil || p.IsDirty() {
		p.lines = lb.Break(src.Range(p.start, p.length))
		p.lineCount = len(p.lines)
	}
}

// Unload releases one Load. Line data is dropped when none remain.
func (p *Paragraph) Unload() {
	if p.refs == 0 {
		return
	}
	p.refs--
	if p.refs == 0 {
		p.lines = nil
	}
}

// LineCount returns the number of visual lines. The paragraph must not be dirty.
func (p *Paragraph) LineCount() int {
	if p.lineCount < 0 {
		panic("paragraph: line count read while dirty")
	}
	return p.lineCount
}

// Lines returns the resident lines. The paragraph must be loaded.
func (p *Paragraph) Lines() []layout.Line {
	if p.lines == nil {
		panic("paragraph: lines read while unloaded")
	}
	return p.lines
}

// Line returns visual line i. The paragraph must be loaded.
func (p *Paragraph) Line(i int) layout.Line {
	return p.Lines()[i]
}

// LineRange returns the document index and length of visual line i.
func (p *Paragraph) LineRange(i int) (start, count int) {
	ln := p.Line(i)
	return p.start + ln.Start, ln.Count
}

// LineIndexOf returns the visual line holding the document index idx.
func (p *Paragraph) LineIndexOf(idx int) int {
	rel := idx - p.start
	lines := p.Lines()
	for i, ln := range lines {
		if rel < ln.End() {
			return i
		}
	}
	return len(lines) - 1
}

// IncrementStart shifts the paragraph right by delta.
func (p *Paragraph) IncrementStart(delta int) { p.start += delta }

// DecrementStart shifts the paragraph left by delta.
func (p *Paragraph) DecrementStart(delta int) { p.start -= delta }

// SetLength changes the span length and marks the layout dirty.
func (p *Paragraph) SetLength(n int) {
	p.length = n
	p.MarkDirty()
}

// MarkDirty discards the line count and any resident lines. A loaded
// paragraph recomputes its lines on the next Load.
func (p *Paragraph) MarkDirty() {
	p.lineCount = -1
	p.lines = nil
}

// String returns a string representation of the paragraph.
func (p *Paragraph) String() string {
	return fmt.Sprintf("Paragraph[%d, %d) lines=%d refs=%d", p.start, p.End(), p.lineCount, p.refs)
}
