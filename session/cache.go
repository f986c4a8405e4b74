// Package session provides the process-wide registry of live conversation
// sessions: an ordered map with LRU eviction, TTL expiry, and a background
// sweeper that reclaims idle sessions even with no further traffic.
package session

import (
	"container/list"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrNotFound reports a cache miss. Absent and expired sessions both surface
// as ErrNotFound; they are distinguished only in logs and stats.
var ErrNotFound = errors.New("session not found")

// Stats are the cumulative cache counters, updated by Get/Put/Remove/Sweep.
type Stats struct {
	Size        int
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
	HitRate     float64
}

// entry is one cached session. lastActivity refreshes on every hit and put;
// createdAt never changes.
type entry[V any] struct {
	sessionID    string
	value        V
	lastActivity time.Time
	createdAt    time.Time
}

// Cache maps session IDs to live session state with LRU ordering and TTL
// expiry. All operations take one mutex, so reordering, stats, and the index
// can never be observed half-updated. Recency is the sole ordering key; the
// list keeps insertion order for equal timestamps.
type Cache[V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	order   *list.List // front = most recently used; elements hold *entry[V]
	index   map[string]*list.Element

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64

	now func() time.Time

	sweepOnce sync.Once
	closeOnce sync.Once
	stopSweep chan struct{}
	sweepDone chan struct{}
}

// CacheOption configures a Cache.
type CacheOption[V any] func(*Cache[V])

// WithNow overrides the time source for deterministic tests.
func WithNow[V any](now func() time.Time) CacheOption[V] {
	return func(c *Cache[V]) { c.now = now }
}

// NewCache creates a cache holding at most maxSize sessions, each expiring
// after ttl of inactivity.
func NewCache[V any](maxSize int, ttl time.Duration, opts ...CacheOption[V]) *Cache[V] {
	c := &Cache[V]{
		maxSize:   maxSize,
		ttl:       ttl,
		order:     list.New(),
		index:     make(map[string]*list.Element),
		now:       time.Now,
		stopSweep: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the session value. A hit refreshes the entry's activity time
// and moves it to the most-recently-used position. Expired entries are
// removed and reported as a miss.
func (c *Cache[V]) Get(sessionID string) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.index[sessionID]
	if !ok {
		c.misses++
		return zero, ErrNotFound
	}

	ent := elem.Value.(*entry[V])
	now := c.now()
	if now.Sub(ent.lastActivity) > c.ttl {
		c.removeElement(elem)
		c.misses++
		c.expirations++
		log.Printf("[CACHE] Session %s expired (idle %s)", sessionID, now.Sub(ent.lastActivity))
		return zero, ErrNotFound
	}

	ent.lastActivity = now
	c.order.MoveToFront(elem)
	c.hits++
	return ent.value, nil
}

// Put inserts or replaces a session and marks it most-recently-used. When an
// insert would exceed capacity, the least-recently-used entry is evicted
// first, regardless of its TTL state.
func (c *Cache[V]) Put(sessionID string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.index[sessionID]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.lastActivity = now
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushFront(&entry[V]{
		sessionID:    sessionID,
		value:        value,
		lastActivity: now,
		createdAt:    now,
	})
	c.index[sessionID] = elem
}

// Remove deletes a session. Removing an absent ID is a no-op.
func (c *Cache[V]) Remove(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[sessionID]; ok {
		c.removeElement(elem)
		log.Printf("[CACHE] Session %s removed", sessionID)
	}
}

// Sweep removes every entry idle beyond the TTL as of now, returning how many
// were reclaimed. Runs as one indivisible pass under the cache lock.
func (c *Cache[V]) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		ent := elem.Value.(*entry[V])
		if now.Sub(ent.lastActivity) > c.ttl {
			c.removeElement(elem)
			c.expirations++
			removed++
			log.Printf("[CACHE] Sweep reclaimed idle session %s", ent.sessionID)
		}
		elem = prev
	}
	return removed
}

// StartSweeper launches the background sweep loop on the given interval. The
// loop stops on Close; an in-flight pass always finishes.
func (c *Cache[V]) StartSweeper(interval time.Duration) {
	c.sweepOnce.Do(func() {
		go func() {
			defer close(c.sweepDone)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					c.Sweep(c.now())
				case <-c.stopSweep:
					return
				}
			}
		}()
	})
}

// Close stops the background sweeper and waits for it to exit. Safe to call
// without a running sweeper, repeatedly, and from concurrent goroutines.
func (c *Cache[V]) Close() {
	c.sweepOnce.Do(func() { close(c.sweepDone) }) // sweeper never started
	c.closeOnce.Do(func() { close(c.stopSweep) })
	<-c.sweepDone
}

// Len returns the number of live entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// ActiveSessions returns the live session IDs, most recently used first.
// Read-only monitoring surface.
func (c *Cache[V]) ActiveSessions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		ids = append(ids, elem.Value.(*entry[V]).sessionID)
	}
	return ids
}

// Stats returns the cumulative counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:        c.order.Len(),
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// evictOldest drops the least-recently-used entry. Caller holds the lock.
func (c *Cache[V]) evictOldest() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	ent := elem.Value.(*entry[V])
	c.removeElement(elem)
	c.evictions++
	log.Printf("[CACHE] Evicted least-recently-used session %s", ent.sessionID)
}

// removeElement unlinks an entry from both the list and the index. Caller
// holds the lock.
func (c *Cache[V]) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry[V])
	c.order.Remove(elem)
	delete(c.index, ent.sessionID)
}
