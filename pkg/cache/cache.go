// Package cache provides a thread-safe LRU cache of parsed builder programs,
// keyed by source text.
//
// The evaluator consults it when caching is enabled, so that running the
// same source repeatedly (a REPL session, a file re-run on change) parses
// it once.
//
// # Example
//
//	c := cache.New(128)
//	prog, err := c.GetOrCompile(src, func() (*types.Program, error) {
//	    return parser.Parse(src)
//	})
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/sandrolain/gobuilder/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 128

// Cache holds at most Capacity programs. Every hit moves the program to the
// front of the recency list; a Set on a full cache drops the back one.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu     sync.Mutex
	limit  int
	recent *list.List // of *cached, most recent first
	bySrc  map[string]*list.Element

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cached struct {
	source string
	prog   *types.Program
}

// Stats is a snapshot of cache usage counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// New creates an LRU cache holding at most capacity programs.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		limit:  capacity,
		recent: list.New(),
		bySrc:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the program cached for source and marks it most recently
// used.
func (c *Cache) Get(source string) (*types.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.bySrc[source]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.recent.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*cached).prog, true
}

// Set stores prog under source, evicting the least recently used entry
// when the cache is full.
func (c *Cache) Set(source string, prog *types.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.bySrc[source]; ok {
		el.Value.(*cached).prog = prog
		c.recent.MoveToFront(el)
		return
	}
	for c.recent.Len() >= c.limit {
		c.removeLocked(c.recent.Back())
	}
	c.bySrc[source] = c.recent.PushFront(&cached{source: source, prog: prog})
}

// GetOrCompile returns the cached program for source, or calls compile
// and caches its result. Errors are not cached.
//
// Concurrent callers missing on the same source may each compile it; the
// last result stored wins.
func (c *Cache) GetOrCompile(source string, compile func() (*types.Program, error)) (*types.Program, error) {
	if prog, ok := c.Get(source); ok {
		return prog, nil
	}
	prog, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(source, prog)
	return prog, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recent.Len()
}

// Stats returns the hit and miss counters accumulated since creation.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Len:    c.Len(),
	}
}

// Capacity returns the configured limit.
func (c *Cache) Capacity() int {
	return c.limit
}

// Invalidate drops the entry for source, if any.
func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.bySrc[source]; ok {
		c.removeLocked(el)
	}
}

// Clear drops every entry. The counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recent.Init()
	clear(c.bySrc)
}

// removeLocked unlinks el. c.mu must be held.
func (c *Cache) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	c.recent.Remove(el)
	delete(c.bySrc, el.Value.(*cached).source)
}
