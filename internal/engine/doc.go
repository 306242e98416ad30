// Package engine provides the text editing engine behind an interactive
// form field.
//
// The engine owns the document text, its decomposition into paragraphs and
// visual lines, the caret, the selection, and pagination. It emits an undo
// record for every committed edit and replays whichever record the host
// hands back; the undo stack itself belongs to the host.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: chunked character storage and line ending normalization
//   - layout: the LineBreaker collaborator and layout geometry
//   - paragraph: per-paragraph visual lines, loaded on demand
//   - page: fixed windows of lines for hit-testing and rendering
//   - cursor: caret and selection ranges
//   - history: undo records and a host-side undo stack
//
// # Lock State
//
// The engine is single-threaded. It is Idle between calls and LayingOut
// while a mutating call or Layout runs. Host callbacks fired from inside a
// mutating call see the engine LayingOut, so any mutating call they make
// returns ErrLocked. Reads are always allowed.
//
// # Basic Usage
//
//	e := engine.New(engine.WithSink(sink))
//	e.SetText("hello")
//	e.MoveCaretPos(engine.DocumentEnd, false)
//	e.Insert(" world")     // caret 11
//	e.Delete(true)         // "hello worl"
//
// # Edits and Validation
//
// Insert clips its text to the character limit and, in constrained-area
// modes, to the field box, then asks the host to validate the whole
// resulting document before anything changes. Validation sees a full copy
// of the candidate document on every edit, so its cost grows with the
// document length.
//
// # Line Endings
//
// Input may use CR, LF, or CRLF. Internally every terminator is '\n'. The
// style of the first terminator seen after SetText is used for all text
// handed back by GetText, even if the input mixed styles.
package engine
