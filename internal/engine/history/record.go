package history

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Kind identifies the edit a Record describes.
type Kind uint8

const (
	KindInsert Kind = iota
	KindDelete
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Target is the raw editing surface a Record replays against.
// None of these methods validate input or emit records.
type Target interface {
	// Text returns the whole document.
	Text() string
	RawInsert(at int, text string)
	RawDelete(at, count int)
	ClearSelection()
	Select(start, count int)
	Deselect(start, count int)
	PlaceCaret(index int, before bool)
	// TextChanged reports that the document changed from prev.
	TextChanged(prev string)
}

// Record is one committed edit.
type Record struct {
	id       uuid.UUID
	group    uuid.UUID
	kind     Kind
	at       int
	caret    int
	text     string
	selected bool
}

// NewInsert creates a record for text inserted at index at.
func NewInsert(group uuid.UUID, at int, text string) Record {
	return Record{
		id:    uuid.New(),
		group: group,
		kind:  KindInsert,
		at:    at,
		caret: at,
		text:  text,
	}
}

// NewDelete creates a record for text removed at index at. caret is the
// caret index before the delete; selected reports whether text was a
// selected range.
func NewDelete(group uuid.UUID, at, caret int, text string, selected bool) Record {
	return Record{
		id:       uuid.New(),
		group:    group,
		kind:     KindDelete,
		at:       at,
		caret:    caret,
		text:     text,
		selected: selected,
	}
}

// ID returns the unique record ID.
func (r Record) ID() uuid.UUID { return r.id }

// Group returns the ID of the edit this record belongs to.
func (r Record) Group() uuid.UUID { return r.group }

// Kind returns the record kind.
func (r Record) Kind() Kind { return r.kind }

// At returns the index the edit applied at.
func (r Record) At() int { return r.at }

// Caret returns the caret index before the edit.
func (r Record) Caret() int { return r.caret }

// Text returns the inserted or deleted text.
func (r Record) Text() string { return r.text }

// Len returns the edit length in characters.
func (r Record) Len() int { return utf8.RuneCountInString(r.text) }

// Selected reports whether a Delete removed a selected range.
func (r Record) Selected() bool { return r.selected }

// Undo reverts the edit on t and restores the caret and selection that
// preceded it. Undoing a deleted selection adds to the current selection so
// that every range of a multi-range delete comes back.
func (r Record) Undo(t Target) {
	prev := t.Text()
	if !r.selected {
		t.ClearSelection()
	}
	switch r.kind {
	case KindInsert:
		t.RawDelete(r.at, r.Len())
		t.TextChanged(prev)
		t.PlaceCaret(r.at, true)
	case KindDelete:
		t.RawInsert(r.at, r.text)
		if r.selected {
			t.Select(r.at, r.Len())
		}
		t.TextChanged(prev)
		t.PlaceCaret(r.caret, true)
	}
}

// Redo re-applies the edit on t and leaves the caret where the original
// edit left it.
func (r Record) Redo(t Target) {
	prev := t.Text()
	if !r.selected {
		t.ClearSelection()
	}
	switch r.kind {
	case KindInsert:
		t.RawInsert(r.at, r.text)
		t.TextChanged(prev)
		t.PlaceCaret(r.at+r.Len(), true)
	case KindDelete:
		t.RawDelete(r.at, r.Len())
		if r.selected {
			t.Deselect(r.at, r.Len())
		}
		t.TextChanged(prev)
		t.PlaceCaret(r.at, true)
	}
}

// String returns a string representation of the record.
func (r Record) String() string {
	switch r.kind {
	case KindInsert:
		return fmt.Sprintf("insert %q at %d", r.text, r.at)
	default:
		return fmt.Sprintf("delete %q at %d (caret %d, selected %v)", r.text, r.at, r.caret, r.selected)
	}
}
