package lock

import (
	"context"
	"sync"
)

// LocalWeekLocker serialises commits per week inside one process
type LocalWeekLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalWeekLocker creates an in-process week locker
func NewLocalWeekLocker() *LocalWeekLocker {
	return &LocalWeekLocker{slots: make(map[string]chan struct{})}
}

// Lock waits for key to be free or for ctx to be done
func (l *LocalWeekLocker) Lock(ctx context.Context, key string) (func(), error) {
	slot := l.slot(key)

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-slot })
	}, nil
}

func (l *LocalWeekLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	return slot
}
