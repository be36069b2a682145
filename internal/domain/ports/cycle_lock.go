package ports

import "context"

// CycleLock guards a relay cycle so overlapping triggers do not deliver twice.
// TryLock does not block: ok is false when another holder owns the lock.
type CycleLock interface {
	TryLock(ctx context.Context) (release func(), ok bool, err error)
}
