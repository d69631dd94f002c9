package curalink

import "sync"

// Slot holds the result of the latest search of one kind. Each search takes
// a generation from Begin; Commit stores its value only while that
// generation is still the newest, so a slow earlier response can never
// overwrite a newer one.
type Slot[T any] struct {
	mu        sync.Mutex
	latest    uint64
	committed uint64
	value     T
}

// Begin issues a new generation and supersedes every earlier one.
func (s *Slot[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

// Current reports whether gen is still the newest generation.
func (s *Slot[T]) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.latest
}

// Commit stores v if gen is still the newest generation and reports whether it did.
func (s *Slot[T]) Commit(gen uint64, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.latest {
		return false
	}
	s.value = v
	s.committed = gen
	return true
}

// Load returns the committed value and its generation. Generation 0 means
// nothing has been committed yet.
func (s *Slot[T]) Load() (T, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.committed
}
