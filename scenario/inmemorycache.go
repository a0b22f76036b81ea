package scenario

import (
	"container/list"
	"sync"
	"time"
)

// InMemoryIssuedCache is an in-memory implementation of IssuedCache
// Thread-safe for concurrent access
type InMemoryIssuedCache struct {
	config  CacheConfig
	entries map[string]*list.Element
	order   *list.List // oldest first
	now     func() time.Time
	mu      sync.Mutex
}

type cacheEntry struct {
	scenario *Scenario
	issuedAt time.Time
}

// NewInMemoryIssuedCache creates a new in-memory issued-scenario cache
func NewInMemoryIssuedCache(config CacheConfig) *InMemoryIssuedCache {
	return &InMemoryIssuedCache{
		config:  config,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Put stores a scenario, replacing any entry with the same ID
func (c *InMemoryIssuedCache) Put(s *Scenario) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()

	if el, ok := c.entries[s.ID]; ok {
		c.order.Remove(el)
	}
	c.entries[s.ID] = c.order.PushBack(&cacheEntry{scenario: s, issuedAt: c.now()})

	if c.config.MaxEntries > 0 {
		for c.order.Len() > c.config.MaxEntries {
			c.removeElement(c.order.Front())
		}
	}
}

// Get retrieves an issued scenario.
// Returns false if it was never issued or has expired
func (c *InMemoryIssuedCache) Get(id string) (*Scenario, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.expired(entry) {
		c.removeElement(el)
		return nil, false
	}
	return entry.scenario, true
}

// Delete removes a scenario from the cache
func (c *InMemoryIssuedCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[id]; ok {
		c.removeElement(el)
	}
}

// Len returns the number of live entries
func (c *InMemoryIssuedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()
	return c.order.Len()
}

// evictExpired drops entries past their TTL. Entries are ordered by
// issue time so the scan stops at the first live one.
func (c *InMemoryIssuedCache) evictExpired() {
	if c.config.TTL <= 0 {
		return
	}
	for el := c.order.Front(); el != nil; el = c.order.Front() {
		if !c.expired(el.Value.(*cacheEntry)) {
			return
		}
		c.removeElement(el)
	}
}

func (c *InMemoryIssuedCache) expired(e *cacheEntry) bool {
	return c.config.TTL > 0 && c.now().Sub(e.issuedAt) > c.config.TTL
}

func (c *InMemoryIssuedCache) removeElement(el *list.Element) {
	entry := c.order.Remove(el).(*cacheEntry)
	delete(c.entries, entry.scenario.ID)
}
