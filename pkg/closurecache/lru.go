// Package closurecache provides a bounded configtypes.ClosureCache.
package closurecache

import (
	"fmt"

	configtypes "github.com/goliatone/go-configtypes"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the entry bound used when a non-positive size is given.
const DefaultSize = 4096

type entryKey struct {
	scope string
	key   string
}

// LRU is a least-recently-used closure cache keyed by snapshot scope and type
// key. Stored and returned slices are copies.
type LRU struct {
	cache *lru.Cache[entryKey, []string]
}

// New returns an LRU holding at most size closures.
func New(size int) (*LRU, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[entryKey, []string](size)
	if err != nil {
		return nil, fmt.Errorf("closurecache: %w", err)
	}
	return &LRU{cache: cache}, nil
}

// Get implements configtypes.ClosureCache.
func (c *LRU) Get(scope, key string) ([]string, bool) {
	if c == nil || scope == "" {
		return nil, false
	}
	keys, ok := c.cache.Get(entryKey{scope: scope, key: key})
	if !ok {
		return nil, false
	}
	return append([]string{}, keys...), true
}

// Set implements configtypes.ClosureCache.
func (c *LRU) Set(scope, key string, keys []string) {
	if c == nil || scope == "" {
		return
	}
	c.cache.Add(entryKey{scope: scope, key: key}, append([]string{}, keys...))
}

// Purge drops every entry. Hook it to snapshot swaps so closures of retired
// snapshots do not hold cache slots.
func (c *LRU) Purge() {
	if c != nil {
		c.cache.Purge()
	}
}

// Len reports the number of cached closures.
func (c *LRU) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

var _ configtypes.ClosureCache = (*LRU)(nil)
