// Package waypoint holds a fixed number of destination slots and a cursor
// selecting the active one.
package waypoint

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when a slot index does not exist.
var ErrIndexOutOfRange = errors.New("waypoint: index out of range")

// Direction selects which way Cycle moves the cursor.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Store is a fixed-capacity ordered set of slots with a cursor that is
// always a valid index. Slots have no identity beyond their index.
//
// Not safe for concurrent use.
type Store[T any] struct {
	slots []T
	cur   int
}

// New returns a store with capacity zero-valued slots and the cursor at 0.
func New[T any](capacity int) (*Store[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("waypoint: capacity must be > 0 (got %d)", capacity)
	}
	return &Store[T]{slots: make([]T, capacity)}, nil
}

// Len returns the capacity.
func (s *Store[T]) Len() int { return len(s.slots) }

// Index returns the cursor position.
func (s *Store[T]) Index() int { return s.cur }

// Current returns the value at the cursor.
func (s *Store[T]) Current() T { return s.slots[s.cur] }

// At returns the value in slot i.
func (s *Store[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(s.slots) {
		var zero T
		return zero, false
	}
	return s.slots[i], true
}

// Overwrite replaces the value at the cursor. The previous value is discarded.
func (s *Store[T]) Overwrite(v T) {
	s.slots[s.cur] = v
}

// Seed sets slot i without moving the cursor.
func (s *Store[T]) Seed(i int, v T) error {
	if i < 0 || i >= len(s.slots) {
		return fmt.Errorf("%w: %d (capacity %d)", ErrIndexOutOfRange, i, len(s.slots))
	}
	s.slots[i] = v
	return nil
}

// Cycle moves the cursor one slot, wrapping at both ends.
func (s *Store[T]) Cycle(d Direction) {
	n := len(s.slots)
	delta := 1
	if d == Backward {
		delta = n - 1
	}
	s.cur = (s.cur + delta) % n
}

// Select moves the cursor to i. Out-of-range indices are rejected and the
// cursor is left where it was.
func (s *Store[T]) Select(i int) error {
	if i < 0 || i >= len(s.slots) {
		return fmt.Errorf("%w: %d (capacity %d)", ErrIndexOutOfRange, i, len(s.slots))
	}
	s.cur = i
	return nil
}

// All returns a copy of every slot in order.
func (s *Store[T]) All() []T {
	out := make([]T, len(s.slots))
	copy(out, s.slots)
	return out
}
