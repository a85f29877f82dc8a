// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package intel

import (
	"slices"
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCacheSize is the number of addresses the cache holds before it
// starts evicting the oldest entries.
const DefaultCacheSize = 500

// Cache holds intelligence records by address. It is bounded and evicts in
// insertion order: the entry added first leaves first. Entries never expire
// on their own. A Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	records *gocache.Cache
	// order lists the cached addresses from oldest to newest.
	order []string
	size  int
}

// NewCache creates an empty cache holding at most size records.
// A non-positive size falls back to [DefaultCacheSize].
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		records: gocache.New(gocache.NoExpiration, 0),
		order:   make([]string, 0, size),
		size:    size,
	}
}

// Get returns the record cached for address.
func (c *Cache) Get(address string) (Record, bool) {
	v, ok := c.records.Get(address)
	if !ok {
		return Record{}, false
	}
	return v.(Record), true
}

// Add stores rec under its address. Overwriting an address keeps its
// position in the eviction order.
func (c *Cache) Add(rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.records.Get(rec.Address); !ok {
		for len(c.order) >= c.size {
			c.records.Delete(c.order[0])
			c.order = slices.Delete(c.order, 0, 1)
		}
		c.order = append(c.order, rec.Address)
	}
	c.records.Set(rec.Address, rec, gocache.NoExpiration)
}

// Clear removes all records.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records.Flush()
	c.order = c.order[:0]
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Addresses returns the cached addresses from oldest to newest.
func (c *Cache) Addresses() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}
