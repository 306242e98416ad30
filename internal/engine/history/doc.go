// Package history provides undo/redo records for the edit engine and a
// host-side stack that stores them.
//
// # Records
//
// A Record describes one committed edit. There are exactly two kinds:
//   - Insert: text inserted at an index
//   - Delete: text removed from an index, with the caret position before
//     the delete and whether the removed text was a selection
//
// Records are immutable. The engine creates them and hands them to the
// host; the host hands them back to replay. Replay goes through the Target
// interface, which exposes the engine's raw mutation primitives so that
// replaying never validates, clips, or emits further records.
//
// # Groups
//
// Every record carries the ID of the edit that produced it. An insert that
// replaces a selection produces a Delete and an Insert sharing one group,
// and Stack undoes and redoes them as a unit.
//
// # Stack
//
//	stack := history.NewStack(100)
//	stack.Push(rec)          // from the engine's undo record callback
//	stack.Undo(engine)       // replays the newest group backwards
//	stack.Redo(engine)
package history
