// internal/pkg/locker/locker.go
package locker

import (
	"sort"
	"sync"
)

// KeyedLocker serializes engine operations per wallet account and per
// (location, SKU) stock row. Callers acquire every key an operation will
// touch before validating, and release after commit. Keys are always locked
// in sorted order so two operations touching overlapping key sets cannot
// deadlock.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty KeyedLocker.
func New() *KeyedLocker {
	return &KeyedLocker{
		locks: make(map[string]*sync.Mutex),
	}
}

// Acquire locks every key and returns a release function. Duplicate keys are
// collapsed; the release function unlocks in reverse order.
func (l *KeyedLocker) Acquire(keys ...string) func() {
	unique := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		unique[k] = struct{}{}
	}

	ordered := make([]string, 0, len(unique))
	for k := range unique {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, k := range ordered {
		held = append(held, l.lockFor(k))
	}
	for _, m := range held {
		m.Lock()
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (l *KeyedLocker) lockFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
