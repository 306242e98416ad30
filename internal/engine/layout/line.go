package layout

// Piece is a run of characters in one line sharing a bidi level.
// Start is relative to the paragraph; X is relative to the line start.
type Piece struct {
	Start  int
	Count  int
	Level  int
	X      float64
	Widths []float64
}

// End returns the paragraph-relative index just past the piece.
func (p Piece) End() int { return p.Start + p.Count }

// Width returns the total advance of the piece.
func (p Piece) Width() float64 {
	w := 0.0
	for _, cw := range p.Widths {
		w += cw
	}
	return w
}

// IsRTL reports whether the piece runs right to left.
func (p Piece) IsRTL() bool { return p.Level%2 == 1 }

// CharBox returns the x offset and advance of the character at
// paragraph-relative index idx, which must lie inside the piece.
func (p Piece) CharBox(idx int) (x, w float64) {
	k := idx - p.Start
	off := 0.0
	for _, cw := range p.Widths[:k] {
		off += cw
	}
	w = p.Widths[k]
	if p.IsRTL() {
		return p.X + p.Width() - off - w, w
	}
	return p.X + off, w
}

// Line is one visual line of a paragraph.
type Line struct {
	Start  int
	Count  int
	Width  float64
	Pieces []Piece
}

// End returns the paragraph-relative index just past the line.
func (l Line) End() int { return l.Start + l.Count }

// Contains returns true if the paragraph-relative index idx is on the line.
func (l Line) Contains(idx int) bool {
	return idx >= l.Start && idx < l.End()
}

// CharBox returns the x offset, advance and bidi level of the character at
// paragraph-relative index idx. ok is false if idx is not on the line.
func (l Line) CharBox(idx int) (x, w float64, level int, ok bool) {
	for _, p := range l.Pieces {
		if idx >= p.Start && idx < p.End() {
			x, w = p.CharBox(idx)
			return x, w, p.Level, true
		}
	}
	return 0, 0, 0, false
}

// CharAt returns the paragraph-relative index of the character whose box
// covers x, clamping to the first or last character.
func (l Line) CharAt(x float64) int {
	if l.Count == 0 {
		return l.Start
	}
	best, bestDist := l.Start, -1.0
	for _, p := range l.Pieces {
		for i := p.Start; i < p.End(); i++ {
			cx, cw := p.CharBox(i)
			if x >= cx && x < cx+cw {
				return i
			}
			d := distance(x, cx, cx+cw)
			if bestDist < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	return best
}

func distance(x, lo, hi float64) float64 {
	switch {
	case x < lo:
		return lo - x
	case x > hi:
		return x - hi
	default:
		return 0
	}
}
