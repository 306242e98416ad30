package history

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds a Stack created with a non-positive limit.
const DefaultMaxEntries = 1000

// Applier replays records. The edit engine implements it.
type Applier interface {
	Undo(rec Record) error
	Redo(rec Record) error
}

// entry is one undo unit: every record of one edit, in commit order.
type entry struct {
	records   []Record
	timestamp time.Time
}

// Stack holds undo and redo entries on behalf of a host.
// It is safe for concurrent use.
type Stack struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	maxEntries int
}

// NewStack creates a stack holding at most maxEntries undo units.
func NewStack(maxEntries int) *Stack {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Stack{
		maxEntries: maxEntries,
	}
}

// Push adds a record. A record sharing the group of the newest entry joins
// that entry. Clears the redo stack.
func (s *Stack) Push(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.redoStack = nil

	if n := len(s.undoStack); n > 0 {
		top := s.undoStack[n-1]
		if top.records[0].Group() == rec.Group() {
			top.records = append(top.records, rec)
			return
		}
	}

	s.undoStack = append(s.undoStack, &entry{
		records:   []Record{rec},
		timestamp: time.Now(),
	})

	if len(s.undoStack) > s.maxEntries {
		excess := len(s.undoStack) - s.maxEntries
		s.undoStack = s.undoStack[excess:]
	}
}

// Undo reverts the newest entry, last record first. If the applier
// rejects a record, the records already reverted are re-applied and the
// entry stays on the undo stack.
func (s *Stack) Undo(a Applier) error {
	s.mu.Lock()
	if len(s.undoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	e := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.mu.Unlock()

	for i := len(e.records) - 1; i >= 0; i-- {
		if err := a.Undo(e.records[i]); err != nil {
			for _, rec := range e.records[i+1:] {
				if rbErr := a.Redo(rec); rbErr != nil {
					err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
					break
				}
			}
			s.mu.Lock()
			s.undoStack = append(s.undoStack, e)
			s.mu.Unlock()
			return err
		}
	}

	s.mu.Lock()
	s.redoStack = append(s.redoStack, e)
	s.mu.Unlock()
	return nil
}

// Redo re-applies the most recently undone entry, first record first.
// A rejected record is handled like in Undo.
func (s *Stack) Redo(a Applier) error {
	s.mu.Lock()
	if len(s.redoStack) == 0 {
		s.mu.Unlock()
		return ErrNothingToRedo
	}
	e := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.mu.Unlock()

	for i, rec := range e.records {
		if err := a.Redo(rec); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rbErr := a.Undo(e.records[j]); rbErr != nil {
					err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
					break
				}
			}
			s.mu.Lock()
			s.redoStack = append(s.redoStack, e)
			s.mu.Unlock()
			return err
		}
	}

	s.mu.Lock()
	s.undoStack = append(s.undoStack, e)
	s.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack) > 0
}

// UndoCount returns the number of undo units available.
func (s *Stack) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

// LastEdit returns when the newest undo entry was recorded. ok is false
// when there is nothing to undo.
func (s *Stack) LastEdit() (t time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undoStack) == 0 {
		return time.Time{}, false
	}
	return s.undoStack[len(s.undoStack)-1].timestamp, true
}

// RedoCount returns the number of redo units available.
func (s *Stack) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack)
}

// Clear drops all history.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undoStack = nil
	s.redoStack = nil
}
