// Package locker guards tracker items against being touched by two in-flight
// reconciliations at once.
package locker

import "sync"

type Locker struct {
	mu           sync.Mutex
	inProcessMap map[string]bool
}

func New() *Locker {
	return &Locker{
		inProcessMap: make(map[string]bool),
	}
}

// TryLock marks a tracker ID as in flight. It returns false when another
// caller already holds it.
func (l *Locker) TryLock(trackerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inProcessMap[trackerID] {
		return false
	}
	l.inProcessMap[trackerID] = true
	return true
}

func (l *Locker) Unlock(trackerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inProcessMap, trackerID)
}
