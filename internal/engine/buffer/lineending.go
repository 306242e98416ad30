package buffer

import "strings"

// LineEnding specifies a line terminator style.
type LineEnding uint8

const (
	LineEndingAuto LineEnding = iota // no terminator seen yet
	LineEndingLF                     // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingLF:
		return "\\n"
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "auto"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Normalizer rewrites line terminators to '\n' and remembers the style of the
// first terminator it ever saw. That single style is what Denormalize
// restores, even for text that originally mixed styles.
type Normalizer struct {
	first LineEnding
}

// First returns the remembered style, or LineEndingAuto if none was seen.
func (n *Normalizer) First() LineEnding {
	return n.first
}

// Reset forgets the remembered style.
func (n *Normalizer) Reset() {
	n.first = LineEndingAuto
}

// Normalize converts every CR, LF and CRLF in s to a single '\n'.
func (n *Normalizer) Normalize(s string) string {
	if n.first == LineEndingAuto {
		n.first = DetectLineEnding(s)
	}
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Denormalize converts '\n' in s back to the remembered style.
func (n *Normalizer) Denormalize(s string) string {
	switch n.first {
	case LineEndingCRLF, LineEndingCR:
		return strings.ReplaceAll(s, "\n", n.first.Sequence())
	default:
		return s
	}
}
