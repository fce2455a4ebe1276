package player

import "sync"

// drainState is the state of a subscription's queue-drain lock.
type drainState int

const (
	drainUnlocked drainState = iota
	drainLocked
	// drainPoisoned is terminal. A poisoned lock can never be acquired or
	// released again; it is what guarantees that no queue drain can start
	// once a subscription has stopped.
	drainPoisoned
)

// drainLock is a mutual-exclusion latch for the queue-drain path. It is
// deliberately not a re-entrant lock: a failed TryAcquire means some other
// drain is active (or the subscription is dead) and the caller walks away.
type drainLock struct {
	mu    sync.Mutex
	state drainState
}

// TryAcquire takes the lock if it is free. It never blocks.
func (l *drainLock) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != drainUnlocked {
		return false
	}
	l.state = drainLocked
	return true
}

// Release frees a held lock. Releasing a poisoned lock is a no-op.
func (l *drainLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == drainLocked {
		l.state = drainUnlocked
	}
}

// Poison moves the lock to its terminal state, regardless of whether it is
// currently held.
func (l *drainLock) Poison() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = drainPoisoned
}

// Poisoned reports whether the lock has been poisoned.
func (l *drainLock) Poisoned() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == drainPoisoned
}
