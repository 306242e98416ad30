package layout

import "fmt"

// Alignment is the horizontal placement of a line within the plate.
type Alignment uint8

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
	AlignJustified
)

// String returns the name of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignStart:
		return "start"
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	case AlignJustified:
		return "justified"
	default:
		return fmt.Sprintf("Alignment(%d)", uint8(a))
	}
}

// ParseAlignment converts a name produced by String back to an Alignment.
func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case "", "start", "left":
		return AlignStart, nil
	case "center":
		return AlignCenter, nil
	case "end", "right":
		return AlignEnd, nil
	case "justified":
		return AlignJustified, nil
	default:
		return AlignStart, fmt.Errorf("unknown alignment %q", s)
	}
}

// Offset returns how far a line of width lineWidth is shifted right inside
// a box of width boxWidth. Justified lines are placed at the start.
func (a Alignment) Offset(lineWidth, boxWidth float64) float64 {
	slack := boxWidth - lineWidth
	if slack <= 0 {
		return 0
	}
	switch a {
	case AlignCenter:
		return slack / 2
	case AlignEnd:
		return slack
	default:
		return 0
	}
}

// Style is the configuration a LineBreaker lays text out under.
type Style struct {
	Font     string
	FontSize float64
	TabWidth float64

	// Wrap breaks lines longer than LineWidth.
	Wrap      bool
	LineWidth float64

	// Comb gives every character the same advance, CombWidth.
	Comb      bool
	CombWidth float64
}

// CellWidth returns the advance of a single-cell character.
func (s Style) CellWidth() float64 {
	return s.FontSize / 2
}
