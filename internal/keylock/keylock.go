// Package keylock provides per-identifier mutual exclusion for credential
// lifecycle operations.
//
// Each lock is scoped to an opaque string id: two operations on different ids
// never block each other, while operations on the same id are serialized for
// the duration of the state transition plus its audit append. Acquisition
// honors context cancellation; once held, a lock is always released by the
// returned function and the operation runs to completion.
package keylock

import (
	"context"
	"sync"
)

// KeyLock serializes operations per identifier using one channel-based lock
// per id. The zero value is not usable; use New.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// New creates a new KeyLock.
func New() *KeyLock {
	return &KeyLock{
		locks: make(map[string]chan struct{}),
	}
}

// lockChan returns the channel guarding the given id, creating it on first use.
func (k *KeyLock) lockChan(id string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()

	ch, ok := k.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		k.locks[id] = ch
	}
	return ch
}

// Acquire blocks until the lock for id is held or ctx is cancelled. On success
// it returns a release function that must be called exactly once. When ctx is
// cancelled before acquisition, the ctx error is returned and no lock is held.
func (k *KeyLock) Acquire(ctx context.Context, id string) (release func(), err error) {
	// With a cancelled context and a free lock both select cases are ready
	// and the runtime picks one at random, so cancellation is checked first.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := k.lockChan(id)

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryAcquire attempts to take the lock for id without blocking. It returns the
// release function and true on success, or nil and false if the lock is held.
func (k *KeyLock) TryAcquire(id string) (release func(), ok bool) {
	ch := k.lockChan(id)

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, true
	default:
		return nil, false
	}
}
