package elevlock

import (
	"context"
	"sync"
)

// Registry hands out one mutex per elevator id. Locks are keyed by id rather
// than by a car value, so reloading a car between snapshot and commit still
// serialises on the same lock.
type Registry struct {
	mu    sync.Mutex
	locks map[int]chan struct{}
}

func NewRegistry(ids ...int) *Registry {
	r := &Registry{locks: make(map[int]chan struct{}, len(ids))}
	for _, id := range ids {
		r.lockFor(id)
	}
	return r
}

func (r *Registry) lockFor(id int) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, exists := r.locks[id]
	if !exists {
		l = make(chan struct{}, 1)
		r.locks[id] = l
	}
	return l
}

// Lock blocks until the lock for id is held or ctx is done. The returned
// func releases it and must be called exactly once.
func (r *Registry) Lock(ctx context.Context, id int) (func(), error) {
	l := r.lockFor(id)
	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryLock takes the lock only if it is free
func (r *Registry) TryLock(id int) (func(), bool) {
	l := r.lockFor(id)
	select {
	case l <- struct{}{}:
		return func() { <-l }, true
	default:
		return nil, false
	}
}
