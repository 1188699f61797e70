// Package cache provides a process-local TTL cache used as a read-through
// layer in front of the store.
//
// Entries are created lazily on a miss and removed either when they expire or
// when a write to the underlying resource invalidates them. Every key carries
// a generation that Invalidate bumps, so a load that started before a write
// can never repopulate the cache with the pre-write value.
//
// The cache is not shared between processes. Another instance serving the
// same store keeps its own entries and may return data up to one TTL old.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is a single cached value
type Entry struct {
	Key       string
	Value     any
	ExpiresAt time.Time
}

func (e *Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Observer is notified of every lookup, e.g. to export hit ratios
type Observer interface {
	CacheLookup(key string, hit bool)
}

// Option configures a Cache
type Option func(*Cache)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithObserver registers an Observer for lookups
func WithObserver(o Observer) Option {
	return func(c *Cache) { c.observer = o }
}

type stamp struct {
	epoch uint64
	gen   uint64
}

// Cache is a concurrency-safe map of entries with expiration
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	gens     map[string]uint64
	epoch    uint64
	group    singleflight.Group
	now      func() time.Time
	observer Observer
}

// New creates an empty Cache
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*Entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key. Expired entries count as a miss and are dropped.
func (c *Cache) Get(key string) (any, bool) {
	value, ok := c.lookup(key)
	if c.observer != nil {
		c.observer.CacheLookup(key, ok)
	}
	return value, ok
}

func (c *Cache) lookup(key string) (any, bool) {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expired(now) {
		return entry.Value, true
	}

	c.mu.Lock()
	if current, ok := c.entries[key]; ok && current.expired(now) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil, false
}

// Set stores value under key until now+ttl
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &Entry{Key: key, Value: value, ExpiresAt: c.now().Add(ttl)}
}

// Invalidate removes the given keys immediately and fences off loads in flight
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.gens[key]++
	}
}

// Clear drops every entry. Invalidate leaves one generation counter behind per
// key it has seen; Clear resets them too, as the epoch bump already fences
// every load in flight.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
	c.gens = make(map[string]uint64)
	c.epoch++
}

// Sweep evicts expired entries and returns how many were removed
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartJanitor sweeps expired entries every interval until ctx is cancelled
func (c *Cache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

func (c *Cache) snapshot(key string) stamp {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return stamp{epoch: c.epoch, gen: c.gens[key]}
}

// setIfCurrent stores value only when no Invalidate or Clear happened since observed was taken
func (c *Cache) setIfCurrent(key string, value any, ttl time.Duration, observed stamp) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != observed.epoch || c.gens[key] != observed.gen {
		return false
	}
	c.entries[key] = &Entry{Key: key, Value: value, ExpiresAt: c.now().Add(ttl)}
	return true
}

// GetOrLoad returns the cached value for key, calling load on a miss and caching its result.
// Concurrent misses for the same key and generation share one load; the first caller's
// context governs it. Errors are returned as-is and never cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if value, ok := c.Get(key); ok {
		if typed, ok := value.(T); ok {
			return typed, nil
		}
	}

	observed := c.snapshot(key)
	flightKey := key + "#" + strconv.FormatUint(observed.epoch, 10) + "." + strconv.FormatUint(observed.gen, 10)
	value, err, _ := c.group.Do(flightKey, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.setIfCurrent(key, loaded, ttl, observed)
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, _ := value.(T)
	return typed, nil
}
