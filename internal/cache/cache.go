// Package cache provides the process-local TTL result cache that memoizes
// expensive aggregation queries. Caching is best-effort: entries may be
// stale within their TTL when the store changes underneath, and concurrent
// misses for the same key recompute redundantly. Both are accepted.
package cache

import (
	"sync"
	"time"
)

// Cache memoizes JSON-serializable aggregation results for a bounded time.
type Cache interface {
	// Get returns the cached value for key if present and not expired.
	Get(key string) (interface{}, bool)
	// Set stores value under key for ttl. A non-positive ttl stores the
	// value without expiry.
	Set(key string, value interface{}, ttl time.Duration)
	// Clear drops every entry.
	Clear()
}

type entry struct {
	value     interface{}
	expiresAt time.Time // zero means no expiry
}

// Memory is the in-process Cache implementation. Entries are evicted
// lazily: an expired entry is deleted the next time it is looked up.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock: a writer may have replaced the
		// entry since the expiry check.
		if cur, ok := m.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set implements Cache.
func (m *Memory) Set(key string, value interface{}, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
}

// Clear implements Cache.
func (m *Memory) Clear() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// Len returns the number of entries currently held, including entries that
// have expired but not yet been looked up.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
