// Package layout defines the line-breaking collaborator of the edit engine
// and the geometry it produces.
//
// The engine never measures glyphs itself. It hands each paragraph's
// characters to a LineBreaker configured with a Style and receives Lines
// back. A Line is split into Pieces, each a run of characters sharing one
// bidi embedding level, with a per-character advance.
//
// # CellBreaker
//
// CellBreaker is the default LineBreaker. It treats the font as a grid of
// cells: each character advances by its terminal cell width (go-runewidth)
// times half the font size. Wrapping follows UAX #14 break opportunities
// (uniseg), falling back to grapheme clusters when a single word does not
// fit. Bidi levels come from golang.org/x/text/unicode/bidi and are only
// computed for lines that contain right-to-left characters.
//
//	lb := layout.NewCellBreaker()
//	lb.Configure(layout.Style{FontSize: 10, Wrap: true, LineWidth: 100})
//	lines := lb.Break([]rune("hello world\n"))
package layout
