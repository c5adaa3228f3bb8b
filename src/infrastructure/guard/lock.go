package guard

import (
	"sync"
	"time"
)

// DefaultLockExpiry is the window after which a held operation lock is
// considered stale and may be taken over by a new acquirer.
const DefaultLockExpiry = 30 * time.Second

// OperationLock collapses duplicate concurrent triggers of the same logical
// operation (e.g. a double-submitted batch click) into a single execution.
// It is process-local: in a multi-process deployment it is a soft guard only,
// and at-most-one-concurrent-attempt per job is ultimately enforced by the
// job store's conditional status transition.
type OperationLock struct {
	mu      sync.Mutex
	held    map[string]time.Time
	expiry  time.Duration
	nowFunc func() time.Time
}

func NewOperationLock(expiry time.Duration) *OperationLock {
	if expiry <= 0 {
		expiry = DefaultLockExpiry
	}
	return &OperationLock{
		held:    make(map[string]time.Time),
		expiry:  expiry,
		nowFunc: time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (l *OperationLock) WithClock(now func() time.Time) *OperationLock {
	l.nowFunc = now
	return l
}

// Acquire takes the lock for opID. It returns false when a younger-than-expiry
// lock already exists; callers must treat that as "skip, already in flight".
// An expired entry is replaced implicitly.
func (l *OperationLock) Acquire(opID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if acquiredAt, ok := l.held[opID]; ok {
		if now.Sub(acquiredAt) < l.expiry {
			return false
		}
	}
	l.held[opID] = now
	return true
}

// Release frees the lock for opID. Callers must release in a deferred path so
// a panic cannot wedge the operation id; the expiry window is the safety net.
func (l *OperationLock) Release(opID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, opID)
}
