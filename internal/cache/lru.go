package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadTimeout bounds a shared GetOrLoad load.
const LoadTimeout = 30 * time.Second

// LRUCache is a size-bounded cache whose entries also expire after a TTL.
// Concurrent misses on the same key share one load.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	items   map[string]*list.Element
	order   *list.List
	stats   Stats

	group singleflight.Group
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// NewLRUCache creates a cache holding at most maxSize entries for ttl each.
// A non-positive maxSize is treated as 1.
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		items:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// WithClock replaces the time source. Tests only.
func (c *LRUCache[T]) WithClock(now func() time.Time) *LRUCache[T] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if c.now().After(e.expiresAt) {
		c.remove(elem)
		c.stats.Misses++
		return zero, false
	}
	c.order.MoveToFront(elem)
	c.stats.Hits++
	return e.value, true
}

func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(e)
	for c.order.Len() > c.maxSize {
		c.remove(c.order.Back())
		c.stats.Evictions++
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
}

// GetOrLoad returns the cached value for key, or calls load once for all
// concurrent callers and caches its result. Errors are not cached.
//
// The shared load runs detached from the caller that started it, bounded by
// LoadTimeout, so one cancelled caller does not fail the others. Each caller
// still stops waiting when its own ctx is done.
func (c *LRUCache[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *LRUCache[T]) remove(elem *list.Element) {
	e := elem.Value.(*entry[T])
	delete(c.items, e.key)
	c.order.Remove(elem)
}

// CleanExpired drops expired entries and returns how many were removed.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	c.stats.Expired += removed
	return removed
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a copy of the hit/miss counters.
func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
