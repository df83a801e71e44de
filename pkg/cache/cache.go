// Package cache provides a small TTL cache used to avoid repeating identical
// model completions.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores byte values under string keys for a limited time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Items     int
}

// Memory is an in-memory Cache with per-item TTL and LRU eviction once
// maxItems is reached.
type Memory struct {
	mu       sync.Mutex
	items    map[string]*entry
	lru      *list.List
	maxItems int
	now      func() time.Time

	hits, misses, evictions int64
}

type entry struct {
	key     string
	value   []byte
	expiry  time.Time
	element *list.Element
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates a cache holding at most maxItems entries. A maxItems of
// zero or less means unbounded.
func NewMemory(maxItems int, opts ...MemoryOption) *Memory {
	m := &Memory{
		items:    make(map[string]*entry),
		lru:      list.New(),
		maxItems: maxItems,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the value stored under key if it has not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		m.misses++
		return nil, false
	}
	if !m.now().Before(e.expiry) {
		m.remove(e)
		m.misses++
		return nil, false
	}
	m.lru.MoveToFront(e.element)
	m.hits++
	return append([]byte(nil), e.value...), true
}

// Put stores a copy of value for ttl. A non-positive ttl stores nothing.
func (m *Memory) Put(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.items[key]; ok {
		m.remove(old)
	}
	for m.maxItems > 0 && len(m.items) >= m.maxItems {
		oldest := m.lru.Back()
		if oldest == nil {
			break
		}
		m.remove(oldest.Value.(*entry))
		m.evictions++
	}

	e := &entry{
		key:    key,
		value:  append([]byte(nil), value...),
		expiry: m.now().Add(ttl),
	}
	e.element = m.lru.PushFront(e)
	m.items[key] = e
}

// Stats returns hit, miss and eviction counters.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Hits: m.hits, Misses: m.misses, Evictions: m.evictions, Items: len(m.items)}
}

// remove must be called with the lock held.
func (m *Memory) remove(e *entry) {
	m.lru.Remove(e.element)
	delete(m.items, e.key)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Nop) Put(context.Context, string, []byte, time.Duration) {}
