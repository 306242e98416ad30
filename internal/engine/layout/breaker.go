package layout

import (
	"math"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/bidi"
)

// MaxLineWidth is the line width used when wrapping is off.
const MaxLineWidth = 65535

// LineBreaker splits a paragraph into visual lines.
type LineBreaker interface {
	// Configure replaces the layout style used by subsequent calls.
	Configure(s Style)

	// Break lays out one paragraph, including its trailing terminator.
	// It returns at least one line; lines cover text contiguously.
	Break(text []rune) []Line
}

// CellBreaker is a LineBreaker over fixed-width cells.
type CellBreaker struct {
	style Style
}

// NewCellBreaker creates a CellBreaker with a 10 unit font.
func NewCellBreaker() *CellBreaker {
	return &CellBreaker{style: Style{FontSize: 10}}
}

// Configure implements LineBreaker.
func (b *CellBreaker) Configure(s Style) {
	b.style = s
}

// Style returns the current style.
func (b *CellBreaker) Style() Style {
	return b.style
}

// Break implements LineBreaker.
func (b *CellBreaker) Break(text []rune) []Line {
	limit := b.lineLimit()
	lines := make([]Line, 0, 1)
	cur := lineBuilder{}

	flush := func(next int) {
		lines = append(lines, b.finish(text, cur))
		cur = lineBuilder{start: next}
	}

	s := string(text)
	pos := 0
	state := -1
	for len(s) > 0 {
		var seg string
		var mustBreak bool
		seg, s, mustBreak, state = uniseg.FirstLineSegmentInString(s, state)
		segRunes := []rune(seg)

		_, fit := b.measure(segRunes, cur.x)
		if len(cur.widths) > 0 && cur.x+fit > limit {
			flush(pos)
			_, fit = b.measure(segRunes, 0)
		}
		if fit > limit {
			b.appendClusters(&cur, seg, limit, flush, pos)
		} else {
			b.append(&cur, segRunes)
		}
		pos += len(segRunes)

		if mustBreak && len(s) > 0 {
			flush(pos)
		}
	}
	if len(cur.widths) > 0 || len(lines) == 0 {
		lines = append(lines, b.finish(text, cur))
	}
	return lines
}

// Advance returns the width of r placed at horizontal offset x.
func (b *CellBreaker) Advance(r rune, x float64) float64 {
	switch {
	case r == '\n' || r == '\r':
		return 0
	case b.style.Comb:
		return b.style.CombWidth
	case r == '\t':
		tab := b.style.TabWidth
		if tab <= 0 {
			return b.style.CellWidth()
		}
		return tab - math.Mod(x, tab)
	default:
		return float64(runewidth.RuneWidth(r)) * b.style.CellWidth()
	}
}

type lineBuilder struct {
	start  int
	x      float64
	widths []float64
}

func (b *CellBreaker) lineLimit() float64 {
	if !b.style.Wrap || b.style.LineWidth <= 0 {
		return MaxLineWidth
	}
	return b.style.LineWidth
}

// measure returns the total advance of rs starting at x, and the advance
// without trailing whitespace, which is allowed to hang past the limit.
func (b *CellBreaker) measure(rs []rune, x float64) (total, fit float64) {
	start := x
	for _, r := range rs {
		x += b.Advance(r, x)
		if !unicode.IsSpace(r) {
			fit = x - start
		}
	}
	return x - start, fit
}

func (b *CellBreaker) append(cur *lineBuilder, rs []rune) {
	for _, r := range rs {
		w := b.Advance(r, cur.x)
		cur.widths = append(cur.widths, w)
		cur.x += w
	}
}

// appendClusters places a segment too wide for any line one grapheme
// cluster at a time.
func (b *CellBreaker) appendClusters(cur *lineBuilder, seg string, limit float64, flush func(int), pos int) {
	state := -1
	for len(seg) > 0 {
		var cluster string
		cluster, seg, _, state = uniseg.FirstGraphemeClusterInString(seg, state)
		rs := []rune(cluster)
		w, _ := b.measure(rs, cur.x)
		if len(cur.widths) > 0 && cur.x+w > limit {
			flush(pos)
		}
		b.append(cur, rs)
		pos += len(rs)
	}
}

// finish converts a builder into a Line with bidi pieces.
func (b *CellBreaker) finish(text []rune, cur lineBuilder) Line {
	n := len(cur.widths)
	ln := Line{Start: cur.start, Count: n}
	for _, w := range cur.widths {
		ln.Width += w
	}
	if n == 0 {
		return ln
	}
	runes := text[cur.start : cur.start+n]
	if !hasRTL(runes) {
		ln.Pieces = []Piece{{Start: cur.start, Count: n, Widths: cur.widths}}
		return ln
	}
	ln.Pieces = bidiPieces(runes, cur.start, cur.widths)
	return ln
}

func hasRTL(rs []rune) bool {
	for _, r := range rs {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.R, bidi.AL:
			return true
		}
	}
	return false
}

// bidiPieces splits a line into runs of equal direction. Runs are kept in
// logical order; only the characters inside a right-to-left run are
// mirrored.
func bidiPieces(runes []rune, start int, widths []float64) []Piece {
	body := runes
	if last := body[len(body)-1]; last == '\n' {
		body = body[:len(body)-1]
	}

	var pieces []Piece
	x := 0.0
	add := func(from, to, level int) {
		p := Piece{Start: start + from, Count: to - from, Level: level, X: x, Widths: widths[from:to]}
		x += p.Width()
		pieces = append(pieces, p)
	}

	covered := 0
	var p bidi.Paragraph
	if _, err := p.SetString(string(body)); err == nil {
		if o, err := p.Order(); err == nil {
			for i := 0; i < o.NumRuns(); i++ {
				r := o.Run(i)
				from, to := r.Pos()
				level := 0
				if r.Direction() == bidi.RightToLeft {
					level = 1
				}
				add(from, to+1, level)
				covered = to + 1
			}
		}
	}
	if covered < len(runes) {
		add(covered, len(runes), 0)
	}
	return pieces
}

// Measure lays out text, which may hold several '\n' separated paragraphs,
// and returns its widest line and total line count.
func Measure(lb LineBreaker, text string) (width float64, lines int) {
	rs := []rune(text)
	start := 0
	for i := 0; i <= len(rs); i++ {
		if i < len(rs) && rs[i] != '\n' {
			continue
		}
		para := make([]rune, 0, i-start+1)
		para = append(para, rs[start:i]...)
		para = append(para, '\n')
		for _, ln := range lb.Break(para) {
			width = max(width, ln.Width)
			lines++
		}
		start = i + 1
	}
	return width, lines
}
