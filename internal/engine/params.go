package engine

import (
	"fmt"

	"github.com/dshills/fieldedit/internal/engine/layout"
)

// Default parameter values.
const (
	DefaultFontSize     = 10
	DefaultLineSpace    = 10
	DefaultTabWidth     = 36
	DefaultLinesPerPage = 20
	DefaultAliasChar    = '*'
)

// Params configures field behavior and layout.
type Params struct {
	// Multiline allows line terminators. Single-line fields drop them
	// from inserted text.
	Multiline    bool
	AutoLineWrap bool
	// CombText lays every character in an equal cell of
	// PlateWidth/CharacterLimit.
	CombText bool
	// Password lays out and measures AliasChar in place of each character.
	Password  bool
	AliasChar rune
	// Validate enables the OnValidate callback.
	Validate bool

	LimitAreaHorizontal bool
	LimitAreaVertical   bool

	Alignment    layout.Alignment
	Font         string
	FontSize     float64
	LineSpace    float64
	TabWidth     float64
	LinesPerPage int
	PlateWidth   float64
	PlateHeight  float64

	// CharacterLimit bounds the text length. Zero means unlimited.
	CharacterLimit int
}

// DefaultParams returns a multi-line, unlimited field.
func DefaultParams() Params {
	return Params{
		Multiline:    true,
		AliasChar:    DefaultAliasChar,
		FontSize:     DefaultFontSize,
		LineSpace:    DefaultLineSpace,
		TabWidth:     DefaultTabWidth,
		LinesPerPage: DefaultLinesPerPage,
	}
}

// Check reports whether the parameters are usable.
func (p Params) Check() error {
	switch {
	case p.LinesPerPage < 1:
		return fmt.Errorf("%w: lines per page must be at least 1, got %d", ErrInvalidParams, p.LinesPerPage)
	case p.FontSize <= 0:
		return fmt.Errorf("%w: font size must be positive, got %g", ErrInvalidParams, p.FontSize)
	case p.LineSpace <= 0:
		return fmt.Errorf("%w: line space must be positive, got %g", ErrInvalidParams, p.LineSpace)
	case p.TabWidth < 0:
		return fmt.Errorf("%w: tab width must not be negative, got %g", ErrInvalidParams, p.TabWidth)
	case p.PlateWidth < 0 || p.PlateHeight < 0:
		return fmt.Errorf("%w: plate size must not be negative", ErrInvalidParams)
	case p.CharacterLimit < 0:
		return fmt.Errorf("%w: character limit must not be negative, got %d", ErrInvalidParams, p.CharacterLimit)
	case p.AutoLineWrap && p.PlateWidth == 0:
		return fmt.Errorf("%w: line wrap needs a plate width", ErrInvalidParams)
	}
	return nil
}

// combWidth returns the comb cell width.
func (p Params) combWidth() float64 {
	if p.CharacterLimit > 0 {
		return p.PlateWidth / float64(p.CharacterLimit)
	}
	return p.PlateWidth
}

// style converts the parameters into a LineBreaker style.
func (p Params) style() layout.Style {
	s := layout.Style{
		Font:      p.Font,
		FontSize:  p.FontSize,
		TabWidth:  p.TabWidth,
		Wrap:      p.AutoLineWrap && p.Multiline,
		LineWidth: layout.MaxLineWidth,
		Comb:      p.CombText,
	}
	if s.Wrap {
		s.LineWidth = p.PlateWidth
	}
	if p.CombText {
		s.CombWidth = p.combWidth()
	}
	return s
}
