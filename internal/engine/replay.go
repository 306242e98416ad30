package engine

import (
	"github.com/dshills/fieldedit/internal/engine/history"
)

// replayTarget exposes the engine's raw primitives to undo records.
type replayTarget struct {
	e *Engine
}

var _ history.Target = replayTarget{}

func (t replayTarget) Text() string { return t.e.Text() }

func (t replayTarget) RawInsert(at int, text string) {
	t.e.rawInsert(at, []rune(text))
}

func (t replayTarget) RawDelete(at, count int) { t.e.rawDelete(at, count) }

func (t replayTarget) ClearSelection() {
	t.e.anchor = -1
	if t.e.sel.Clear() {
		t.e.sink.OnSelChanged()
	}
}

func (t replayTarget) Select(start, count int) {
	t.e.sel.Add(start, count)
	t.e.sink.OnSelChanged()
}

func (t replayTarget) Deselect(start, count int) {
	if t.e.sel.Remove(start, count) {
		t.e.sink.OnSelChanged()
	}
}

func (t replayTarget) PlaceCaret(index int, before bool) {
	t.e.placeCaret(index, before)
	t.e.anchor = -1
	t.e.sink.OnCaretChanged()
}

func (t replayTarget) TextChanged(prev string) { t.e.sink.OnTextChanged(prev) }

// Undo reverts rec. Records must be undone in the reverse order they were
// emitted, so that the document matches the state each record captured.
func (e *Engine) Undo(rec Record) error {
	if e.IsLocked() {
		return ErrLocked
	}
	if err := e.checkRecord(rec, true); err != nil {
		return err
	}
	defer e.enter()()

	rec.Undo(replayTarget{e: e})
	return nil
}

// Redo re-applies rec after it was undone.
func (e *Engine) Redo(rec Record) error {
	if e.IsLocked() {
		return ErrLocked
	}
	if err := e.checkRecord(rec, false); err != nil {
		return err
	}
	defer e.enter()()

	rec.Redo(replayTarget{e: e})
	return nil
}

// checkRecord rejects a record that does not fit the current document.
func (e *Engine) checkRecord(rec Record, undo bool) error {
	n := e.TextLength()
	removes := (rec.Kind() == history.KindInsert) == undo
	if rec.At() < 0 || rec.At() > n || (removes && rec.At()+rec.Len() > n) {
		return ErrOutOfRange
	}
	return nil
}

var _ history.Applier = (*Engine)(nil)
