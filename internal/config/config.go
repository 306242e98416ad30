package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/fieldedit/internal/engine"
	"github.com/dshills/fieldedit/internal/engine/layout"
)

// File is the decoded settings file.
type File struct {
	Field  FieldSection  `toml:"field"`
	Layout LayoutSection `toml:"layout"`
	Log    LogSection    `toml:"log"`
	Script ScriptSection `toml:"script"`

	// Path is the file the settings were read from.
	Path string `toml:"-"`
}

// FieldSection holds field behavior.
type FieldSection struct {
	// Multiline defaults to true when absent.
	Multiline           *bool  `toml:"multiline"`
	AutoLineWrap        bool   `toml:"auto_line_wrap"`
	CombText            bool   `toml:"comb_text"`
	Password            bool   `toml:"password"`
	AliasChar           string `toml:"alias_char"`
	Validate            bool   `toml:"validate"`
	LimitAreaHorizontal bool   `toml:"limit_area_horizontal"`
	LimitAreaVertical   bool   `toml:"limit_area_vertical"`
	CharacterLimit      int    `toml:"character_limit"`
}

// LayoutSection holds geometry. Zero values keep the engine defaults.
type LayoutSection struct {
	Alignment    string  `toml:"alignment"`
	Font         string  `toml:"font"`
	FontSize     float64 `toml:"font_size"`
	LineSpace    float64 `toml:"line_space"`
	TabWidth     float64 `toml:"tab_width"`
	LinesPerPage int     `toml:"lines_per_page"`
	PlateWidth   float64 `toml:"plate_width"`
	PlateHeight  float64 `toml:"plate_height"`
}

// LogSection configures logging.
type LogSection struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// ScriptSection names an optional Lua validation script.
type ScriptSection struct {
	Validate string `toml:"validate"`
}

// Load reads and decodes the settings file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	f, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// Parse decodes settings from data. source names the data in errors.
func Parse(source string, data []byte) (*File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		var se *toml.StrictMissingError
		if errors.As(err, &se) {
			pe.Message = se.String()
		}
		return nil, pe
	}
	return &f, nil
}

// Params converts the settings into engine parameters, starting from
// engine.DefaultParams.
func (f *File) Params() (engine.Params, error) {
	p := engine.DefaultParams()

	fs := f.Field
	if fs.Multiline != nil {
		p.Multiline = *fs.Multiline
	}
	p.AutoLineWrap = fs.AutoLineWrap
	p.CombText = fs.CombText
	p.Password = fs.Password
	p.Validate = fs.Validate
	p.LimitAreaHorizontal = fs.LimitAreaHorizontal
	p.LimitAreaVertical = fs.LimitAreaVertical
	p.CharacterLimit = fs.CharacterLimit
	if fs.AliasChar != "" {
		r, size := utf8.DecodeRuneInString(fs.AliasChar)
		if size != len(fs.AliasChar) {
			return p, fmt.Errorf("%w: field.alias_char must be one character, got %q", ErrInvalidValue, fs.AliasChar)
		}
		p.AliasChar = r
	}

	ls := f.Layout
	if ls.Alignment != "" {
		a, err := layout.ParseAlignment(ls.Alignment)
		if err != nil {
			return p, fmt.Errorf("%w: layout.alignment: %w", ErrInvalidValue, err)
		}
		p.Alignment = a
	}
	p.Font = ls.Font
	if ls.FontSize != 0 {
		p.FontSize = ls.FontSize
	}
	if ls.LineSpace != 0 {
		p.LineSpace = ls.LineSpace
	}
	if ls.TabWidth != 0 {
		p.TabWidth = ls.TabWidth
	}
	if ls.LinesPerPage != 0 {
		p.LinesPerPage = ls.LinesPerPage
	}
	p.PlateWidth = ls.PlateWidth
	p.PlateHeight = ls.PlateHeight

	if err := p.Check(); err != nil {
		return p, err
	}
	return p, nil
}

// ZapLevel returns the configured log level, Info when unset.
func (l LogSection) ZapLevel() (zapcore.Level, error) {
	if l.Level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%w: log.level: %w", ErrInvalidValue, err)
	}
	return lvl, nil
}
