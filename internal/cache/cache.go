// Package cache provides a bounded in-memory memoizer for pure text
// transforms. Matching a large comment table normalizes the same source
// strings repeatedly; caching the results is a throughput optimization only,
// never a correctness requirement.
package cache

import "sync"

// TextCache memoizes a pure string-to-string function. When the cache fills
// up it is flushed wholesale, which keeps memory bounded without bookkeeping.
type TextCache struct {
	fn  func(string) string
	max int

	mu      sync.RWMutex
	entries map[string]string
}

// New creates a cache around fn holding at most max entries.
func New(fn func(string) string, max int) *TextCache {
	if max < 1 {
		max = 1
	}
	return &TextCache{
		fn:      fn,
		max:     max,
		entries: make(map[string]string),
	}
}

// Get returns fn(text), serving repeated inputs from memory.
func (c *TextCache) Get(text string) string {
	c.mu.RLock()
	if v, ok := c.entries[text]; ok {
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	v := c.fn(text)

	c.mu.Lock()
	if len(c.entries) >= c.max {
		c.entries = make(map[string]string)
	}
	c.entries[text] = v
	c.mu.Unlock()

	return v
}

// Len returns the number of memoized entries.
func (c *TextCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
