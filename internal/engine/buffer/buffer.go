package buffer

import (
	"fmt"
	"strings"
)

// Buffer is a chunked rune sequence.
// Each chunk holds at most chunkSize runes; chunks are never empty.
type Buffer struct {
	chunks    [][]rune
	chunkSize int
	length    int
}

// New creates an empty buffer.
func New(opts ...Option) *Buffer {
	b := &Buffer{
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromString creates a buffer holding s.
func NewFromString(s string, opts ...Option) *Buffer {
	b := New(opts...)
	b.SetText([]rune(s))
	return b
}

// Len returns the number of runes in the buffer.
func (b *Buffer) Len() int {
	return b.length
}

// ChunkSize returns the configured chunk capacity.
func (b *Buffer) ChunkSize() int {
	return b.chunkSize
}

// ChunkCount returns the number of chunks currently allocated.
func (b *Buffer) ChunkCount() int {
	return len(b.chunks)
}

// Clear removes all content.
func (b *Buffer) Clear() {
	b.chunks = nil
	b.length = 0
}

// SetText replaces the content with text.
func (b *Buffer) SetText(text []rune) {
	b.Clear()
	b.chunks = b.split(text)
	b.length = len(text)
}

// CharAt returns the rune at idx.
func (b *Buffer) CharAt(idx int) rune {
	if idx < 0 || idx >= b.length {
		panic(fmt.Sprintf("buffer: index %d out of range [0,%d)", idx, b.length))
	}
	for _, c := range b.chunks {
		if idx < len(c) {
			return c[idx]
		}
		idx -= len(c)
	}
	panic("buffer: chunk lengths disagree with buffer length")
}

// Range returns a copy of count runes starting at pos.
func (b *Buffer) Range(pos, count int) []rune {
	b.checkRange(pos, count)
	out := make([]rune, 0, count)
	for _, c := range b.chunks {
		if count == 0 {
			break
		}
		if pos >= len(c) {
			pos -= len(c)
			continue
		}
		n := min(len(c)-pos, count)
		out = append(out, c[pos:pos+n]...)
		count -= n
		pos = 0
	}
	return out
}

// RangeString returns count runes starting at pos as a string.
func (b *Buffer) RangeString(pos, count int) string {
	return string(b.Range(pos, count))
}

// String returns the full content.
func (b *Buffer) String() string {
	var sb strings.Builder
	for _, c := range b.chunks {
		sb.WriteString(string(c))
	}
	return sb.String()
}

// Insert inserts text before the rune at pos. pos may equal Len.
func (b *Buffer) Insert(pos int, text []rune) {
	if pos < 0 || pos > b.length {
		panic(fmt.Sprintf("buffer: insert position %d out of range [0,%d]", pos, b.length))
	}
	if len(text) == 0 {
		return
	}
	if len(b.chunks) == 0 {
		b.chunks = b.split(text)
		b.length = len(text)
		return
	}

	ci, off := b.locate(pos)
	c := b.chunks[ci]
	if len(c)+len(text) <= b.chunkSize {
		grown := make([]rune, 0, b.chunkSize)
		grown = append(grown, c[:off]...)
		grown = append(grown, text...)
		grown = append(grown, c[off:]...)
		b.chunks[ci] = grown
		b.length += len(text)
		return
	}

	// Overflow: the chunk keeps its head, and text plus the old tail are
	// packed into fresh chunks placed right after it.
	rest := make([]rune, 0, len(text)+len(c)-off)
	rest = append(rest, text...)
	rest = append(rest, c[off:]...)

	head := c[:off:off]
	room := b.chunkSize - len(head)
	fill := min(room, len(rest))
	head = append(head, rest[:fill]...)
	b.chunks[ci] = head

	tail := b.split(rest[fill:])
	if len(tail) > 0 {
		b.chunks = append(b.chunks[:ci+1], append(tail, b.chunks[ci+1:]...)...)
	}
	b.length += len(text)
}

// Delete removes count runes starting at pos.
func (b *Buffer) Delete(pos, count int) {
	b.checkRange(pos, count)
	if count == 0 {
		return
	}
	b.length -= count

	ci, off := b.locate(pos)
	if off == len(b.chunks[ci]) {
		ci++
		off = 0
	}
	for count > 0 {
		c := b.chunks[ci]
		n := min(len(c)-off, count)
		c = append(c[:off], c[off+n:]...)
		count -= n
		if len(c) == 0 {
			b.chunks = append(b.chunks[:ci], b.chunks[ci+1:]...)
			off = 0
			continue
		}
		b.chunks[ci] = c
		ci++
		off = 0
	}
}

// Compact merges under-filled chunks so that every chunk but the last is full.
func (b *Buffer) Compact() {
	if len(b.chunks) < 2 {
		return
	}
	all := make([]rune, 0, b.length)
	for _, c := range b.chunks {
		all = append(all, c...)
	}
	b.chunks = b.split(all)
}

// locate returns the chunk index and offset for an insertion at pos.
// A position on a chunk boundary resolves to the end of the earlier chunk.
func (b *Buffer) locate(pos int) (int, int) {
	for i, c := range b.chunks {
		if pos <= len(c) {
			return i, pos
		}
		pos -= len(c)
	}
	last := len(b.chunks) - 1
	return last, len(b.chunks[last])
}

// split packs text into new chunks of at most chunkSize runes.
func (b *Buffer) split(text []rune) [][]rune {
	var chunks [][]rune
	for len(text) > 0 {
		n := min(b.chunkSize, len(text))
		c := make([]rune, n, b.chunkSize)
		copy(c, text[:n])
		chunks = append(chunks, c)
		text = text[n:]
	}
	return chunks
}

func (b *Buffer) checkRange(pos, count int) {
	if pos < 0 || count < 0 || pos+count > b.length {
		panic(fmt.Sprintf("buffer: range [%d,%d) out of range [0,%d]", pos, pos+count, b.length))
	}
}
