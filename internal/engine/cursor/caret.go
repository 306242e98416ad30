package cursor

import "fmt"

// Caret is an insertion point with its character association.
// Caret is an immutable value type.
type Caret struct {
	Index  int
	Before bool
}

// Normalize returns the canonical form: an after-association becomes a
// before-association on the next index.
func (c Caret) Normalize() Caret {
	if !c.Before {
		return Caret{Index: c.Index + 1, Before: true}
	}
	return c
}

// Clamp returns a caret whose index lies in [0, maxIndex].
func (c Caret) Clamp(maxIndex int) Caret {
	if c.Index < 0 {
		return Caret{Index: 0, Before: c.Before}
	}
	if c.Index > maxIndex {
		return Caret{Index: maxIndex, Before: c.Before}
	}
	return c
}

// String returns a string representation of the caret.
func (c Caret) String() string {
	if c.Before {
		return fmt.Sprintf("Caret(%d)", c.Index)
	}
	return fmt.Sprintf("Caret(%d after)", c.Index)
}
