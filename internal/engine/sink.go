package engine

import "github.com/dshills/fieldedit/internal/engine/history"

// EventSink receives notifications from the engine. Every method is called
// synchronously from inside an engine call.
type EventSink interface {
	// OnTextChanged reports that the document changed; prev is the whole
	// document before the change.
	OnTextChanged(prev string)
	OnCaretChanged()
	OnSelChanged()
	// OnPageLoad and OnPageUnload bracket every use of a page. Line data
	// for the page is resident between them.
	OnPageLoad(page int)
	OnPageUnload(page int)
	// OnAddUndoRecord hands a committed edit to the host's undo stack.
	OnAddUndoRecord(rec history.Record)
	// OnValidate returns false to reject the candidate document.
	OnValidate(candidate string) bool
}

// NopSink ignores every notification and accepts every edit.
// Embed it to implement only part of EventSink.
type NopSink struct{}

func (NopSink) OnTextChanged(string)           {}
func (NopSink) OnCaretChanged()                {}
func (NopSink) OnSelChanged()                  {}
func (NopSink) OnPageLoad(int)                 {}
func (NopSink) OnPageUnload(int)               {}
func (NopSink) OnAddUndoRecord(history.Record) {}
func (NopSink) OnValidate(string) bool         { return true }
