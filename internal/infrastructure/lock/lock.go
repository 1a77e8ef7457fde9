// Package lock provides named mutual exclusion for operations that must
// not run concurrently on the same resource, such as recalculating the
// same owner/period settlement from two requests at once.
package lock

import (
	"context"
	"time"
)

// ErrNotAcquired is returned when another holder owns the lock
type ErrNotAcquired struct {
	Key string
}

func (e *ErrNotAcquired) Error() string {
	return "lock not acquired: " + e.Key
}

// Locker acquires named locks. Acquire returns a release function on
// success and *ErrNotAcquired when the lock is held elsewhere.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}
