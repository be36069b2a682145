package lock

import (
	"context"
	"sync"
	"sync/atomic"

	"solar-relay/internal/domain/ports"
)

// Local is an in-process CycleLock.
type Local struct {
	held atomic.Bool
}

var _ ports.CycleLock = (*Local)(nil)

// NewLocal creates an unlocked Local.
func NewLocal() *Local {
	return &Local{}
}

// TryLock takes the lock if it is free. The returned release is idempotent.
func (l *Local) TryLock(_ context.Context) (func(), bool, error) {
	if !l.held.CompareAndSwap(false, true) {
		return nil, false, nil
	}
	var once sync.Once
	return func() { once.Do(func() { l.held.Store(false) }) }, true, nil
}
