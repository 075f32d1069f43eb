// Package workerstate keeps the process-wide liveness record of the
// reconciliation worker. The scheduler writes it and the health endpoint reads
// it; every change swaps in a new immutable snapshot.
package workerstate

import (
	"sync/atomic"
	"time"
)

// Snapshot is an immutable view of the worker. An empty LastErrorMessage means
// no error is recorded.
type Snapshot struct {
	IsRunning         bool      `json:"is_running"`
	LastSuccessfulRun time.Time `json:"last_successful_run"`
	LastErrorMessage  string    `json:"last_error_message,omitempty"`
}

type State struct {
	current atomic.Pointer[Snapshot]
}

// New returns the blank healthy state a process starts with.
func New(now time.Time) *State {
	s := &State{}
	s.current.Store(&Snapshot{IsRunning: true, LastSuccessfulRun: now})
	return s
}

func (s *State) Load() Snapshot {
	return *s.current.Load()
}

// Update applies fn to the current snapshot and publishes the result. fn may
// run more than once under contention and must not have side effects.
func (s *State) Update(fn func(Snapshot) Snapshot) Snapshot {
	for {
		old := s.current.Load()
		next := fn(*old)
		if s.current.CompareAndSwap(old, &next) {
			return next
		}
	}
}

func (s *State) MarkCycleStarted(now time.Time) Snapshot {
	return s.Update(func(snap Snapshot) Snapshot {
		snap.IsRunning = true
		snap.LastSuccessfulRun = now
		return snap
	})
}

func (s *State) MarkStopped(message string) Snapshot {
	return s.Update(func(snap Snapshot) Snapshot {
		snap.IsRunning = false
		snap.LastErrorMessage = message
		return snap
	})
}

func (s *State) RecordError(message string) {
	s.Update(func(snap Snapshot) Snapshot {
		snap.LastErrorMessage = message
		return snap
	})
}

func (s *State) ClearError() {
	s.Update(func(snap Snapshot) Snapshot {
		snap.LastErrorMessage = ""
		return snap
	})
}
