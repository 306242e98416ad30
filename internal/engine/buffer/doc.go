// Package buffer provides the character store behind an edit engine.
//
// A Buffer holds runes in fixed-capacity chunks so that positional inserts
// and deletes only touch the chunks around the edit point. Positions are
// character (rune) indices, not byte offsets.
//
// Basic usage:
//
//	buf := buffer.New(buffer.WithChunkSize(64))
//	buf.Insert(0, []rune("Hello, World!"))
//	buf.Delete(5, 7)          // "Hello!"
//	r := buf.CharAt(0)        // 'H'
//	s := buf.RangeString(0, 5) // "Hello"
//
// # Bounds
//
// Buffer methods do not return errors. Callers validate positions before
// calling; an out-of-range position is a programming error and panics.
//
// # Line Endings
//
// The buffer itself stores only '\n' terminators. A Normalizer converts CR,
// LF and CRLF input to '\n' and remembers the first style it encountered so
// that text can be handed back in that style with Denormalize.
//
// Thread Safety:
//
// A Buffer is not safe for concurrent use. It is owned by a single engine,
// which serializes access.
package buffer
