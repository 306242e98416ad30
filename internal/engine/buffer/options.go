package buffer

// DefaultChunkSize is the number of runes stored per chunk when no option is given.
const DefaultChunkSize = 256

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithChunkSize sets the chunk capacity. Values below 1 are ignored.
func WithChunkSize(size int) Option {
	return func(b *Buffer) {
		if size > 0 {
			b.chunkSize = size
		}
	}
}

// DetectLineEnding returns the style of the first line terminator in text.
// Returns LineEndingAuto if text contains none.
func DetectLineEnding(text string) LineEnding {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			return LineEndingLF
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				return LineEndingCRLF
			}
			return LineEndingCR
		}
	}
	return LineEndingAuto
}
