// Package cursor provides caret and selection state for a text field.
//
// The cursor package handles:
//
//   - Caret positioning with the Caret value type
//   - Character ranges via Range
//   - A set of disjoint selected ranges via RangeSet
//
// Caret Association:
//
// A caret sits between two characters and is associated with one of them.
// Before=true means the caret belongs to the character at Index and is drawn
// on its leading edge. Before=false means it belongs to the character at
// Index and is drawn on its trailing edge, which is the same logical position
// as Index+1 with Before=true. Normalize folds the second form into the
// first, so every logical position has exactly one canonical Caret.
//
// Selection Model:
//
// RangeSet keeps its ranges:
//   - Sorted by start
//   - Pairwise disjoint
//   - Merged when overlapping or touching
//
// Basic usage:
//
//	var sel cursor.RangeSet
//	sel.Add(0, 3)
//	sel.Add(3, 2)     // merges into [0,5)
//	sel.Remove(0, 5)  // exact match only
package cursor
