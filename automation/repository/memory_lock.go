package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryCycleLock is the single-process CycleLock.
type MemoryCycleLock struct {
	mu    sync.Mutex
	held  map[string]time.Time
	nowFn func() time.Time
}

func NewMemoryCycleLock() *MemoryCycleLock {
	return &MemoryCycleLock{held: make(map[string]time.Time), nowFn: time.Now}
}

func (l *MemoryCycleLock) TryAcquire(_ context.Context, name string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if exp, ok := l.held[name]; ok && now.Before(exp) {
		return nil, false, nil
	}
	expiry := now.Add(ttl)
	l.held[name] = expiry

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[name].Equal(expiry) {
			delete(l.held, name)
		}
	}
	return release, true, nil
}
