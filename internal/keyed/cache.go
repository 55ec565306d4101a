package keyed

import (
	"slices"
	"sync"
)

// Cache holds an ordered list of values per key and guards commits with a
// per-key sequence token: a result is only applied if no newer fetch for the
// same key has been started since. Stale results are silently discarded.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*entry[V]),
	}
}

type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
}

type entry[V any] struct {
	seq    uint64
	values []V
	ok     bool
}

func (c *Cache[K, V]) Get(key K) ([]V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.ok {
		return nil, false
	}
	return slices.Clone(e.values), true
}

// Begin starts a fetch for key and returns its token. Tokens are issued in
// strictly increasing order per key.
func (c *Cache[K, V]) Begin(key K) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{}
		c.entries[key] = e
	}
	e.seq++
	return e.seq
}

// Commit applies values for key if token is still the latest issued one and
// reports whether the commit was applied.
func (c *Cache[K, V]) Commit(key K, token uint64, values []V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || token != e.seq {
		return false
	}
	e.values = values
	e.ok = true
	return true
}

// Invalidate drops the cached list for key so the next Get misses. The
// sequence counter is kept so in-flight stale commits still lose.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.values = nil
		e.ok = false
	}
}

// Patch edits the cached list for key in place, bypassing the token rule. It
// does nothing when no list is cached and reports whether it was applied.
func (c *Cache[K, V]) Patch(key K, fn func(values []V) []V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.ok {
		return false
	}
	e.values = fn(e.values)
	return true
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[V])
}
