package cache

import (
	"sync"
	"time"
)

type memoEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memo is an in-process map with an optional time to live. A zero ttl keeps entries for the
// lifetime of the Memo. It is safe for concurrent use.
type Memo[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoEntry[V]
}

// NewMemo creates an empty Memo.
func NewMemo[V any](ttl time.Duration) *Memo[V] {
	return &Memo[V]{ttl: ttl, entries: make(map[string]memoEntry[V])}
}

// Get returns the value for key if present and not expired.
func (m *Memo[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok || (m.ttl > 0 && time.Now().After(entry.expiresAt)) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key.
func (m *Memo[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoEntry[V]{value: value, expiresAt: time.Now().Add(m.ttl)}
}

// Len returns the number of stored entries, expired ones included.
func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
