package engine

import (
	"errors"
	"fmt"
)

// Errors returned by engine operations.
var (
	// ErrLocked indicates a mutation was attempted while the engine was
	// laying out or dispatching a host callback.
	ErrLocked = errors.New("engine is locked")

	// ErrInvalidated indicates the host's validate callback rejected an edit.
	ErrInvalidated = errors.New("edit rejected by validation")

	// ErrFull indicates there is no room left under the character limit.
	ErrFull = errors.New("field is full")

	// ErrAreaOverflow indicates the edit does not fit the field box at all.
	// It wraps ErrFull.
	ErrAreaOverflow = fmt.Errorf("%w: text does not fit the field area", ErrFull)

	// ErrOutOfRange indicates an index or range outside the document.
	ErrOutOfRange = errors.New("index out of range")

	// ErrInvalidParams indicates a rejected parameter set.
	ErrInvalidParams = errors.New("invalid parameters")
)
