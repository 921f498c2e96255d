package actions

import (
	"errors"
	"sync"
)

// ErrBusy indicates the action's trigger is disabled because its own call is
// still in flight. This is a per-action latch, not a global lock.
var ErrBusy = errors.New("action already in progress")

// latch is a single-slot in-flight guard.
type latch struct {
	mu   sync.Mutex
	busy bool
}

func (l *latch) acquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy {
		return false
	}
	l.busy = true
	return true
}

func (l *latch) release() {
	l.mu.Lock()
	l.busy = false
	l.mu.Unlock()
}

// keyedLatch guards independent triggers that share one surface, such as the
// delete button on each feed row.
type keyedLatch struct {
	mu   sync.Mutex
	busy map[int64]bool
}

func newKeyedLatch() *keyedLatch {
	return &keyedLatch{busy: make(map[int64]bool)}
}

func (l *keyedLatch) acquire(key int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy[key] {
		return false
	}
	l.busy[key] = true
	return true
}

func (l *keyedLatch) release(key int64) {
	l.mu.Lock()
	delete(l.busy, key)
	l.mu.Unlock()
}
