package service

import (
	"context"
	"sync"
)

// KeyLocker serializes work per key. Different keys never block each other.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type keyLockEntry struct {
	ch   chan struct{}
	refs int
}

// LocalKeyLocker is an in-process KeyLocker. Entries are dropped once no
// goroutine holds or waits on them.
type LocalKeyLocker struct {
	mu      sync.Mutex
	entries map[string]*keyLockEntry
}

func NewLocalKeyLocker() *LocalKeyLocker {
	return &LocalKeyLocker{entries: make(map[string]*keyLockEntry)}
}

func (l *LocalKeyLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &keyLockEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *LocalKeyLocker) release(key string, e *keyLockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// size reports the number of live entries.
func (l *LocalKeyLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
