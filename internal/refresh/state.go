// Package refresh decides which slow-changing historical queries a cycle
// should re-issue, and tracks the day marker that bounds them.
package refresh

import "sync"

// State is the per-integration cycle marker: the day-of-month on which the
// last successful cycle ran. It is the engine's only cross-cycle memory and
// is deliberately not persisted; a process restart triggers a full
// historical refresh, which doubles as the manual "refetch everything"
// escape hatch.
type State struct {
	mu      sync.Mutex
	day     int
	written bool
}

// NewState returns an empty marker, as it exists before the first
// successful cycle.
func NewState() *State {
	return &State{}
}

// LastDay returns the stored day-of-month and whether any cycle has
// succeeded yet.
func (s *State) LastDay() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.day, s.written
}

// MarkUpdated records the day-of-month of a successful cycle. Called once
// per cycle with the cycle's start date, after all accounts completed.
func (s *State) MarkUpdated(day int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = day
	s.written = true
}
