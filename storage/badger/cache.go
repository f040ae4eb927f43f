package badger

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/onflow/contract-client/module"
	"github.com/onflow/contract-client/storage"
)

func withLimit[K comparable, V any](limit uint) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.limit = limit
	}
}

type retrieveFunc[K comparable, V any] func(key K) (V, error)

func withRetrieve[K comparable, V any](retrieve retrieveFunc[K, V]) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.retrieve = retrieve
	}
}

func noRetrieve[K comparable, V any](K) (V, error) {
	var nullV V
	return nullV, fmt.Errorf("no retrieve function for cache get available")
}

func withResource[K comparable, V any](resource string) func(*Cache[K, V]) {
	return func(c *Cache[K, V]) {
		c.resource = resource
	}
}

// Cache is a read-through LRU cache in front of the database. Writes go to
// the database first; callers insert into the cache once the write
// committed.
type Cache[K comparable, V any] struct {
	metrics  module.CacheMetrics
	limit    uint
	retrieve retrieveFunc[K, V]
	resource string
	cache    *lru.Cache[K, V]
}

func newCache[K comparable, V any](collector module.CacheMetrics, resource string, options ...func(*Cache[K, V])) *Cache[K, V] {
	c := Cache[K, V]{
		metrics:  collector,
		limit:    1000,
		retrieve: noRetrieve[K, V],
		resource: resource,
	}
	for _, option := range options {
		option(&c)
	}
	c.cache, _ = lru.New[K, V](int(c.limit))
	c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
	return &c
}

// IsCached returns true if the key exists in the cache.
func (c *Cache[K, V]) IsCached(key K) bool {
	return c.cache.Contains(key)
}

// Get will try to retrieve the resource from cache first, and then from the
// injected retrieve function.
// Error returns:
//   - storage.ErrNotFound if the resource is in neither place
//   - exception for any other failure
func (c *Cache[K, V]) Get(key K) (V, error) {
	resource, cached := c.cache.Get(key)
	if cached {
		c.metrics.CacheHit(c.resource)
		return resource, nil
	}

	resource, err := c.retrieve(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.metrics.CacheNotFound(c.resource)
		}
		var nullV V
		return nullV, fmt.Errorf("could not retrieve resource: %w", err)
	}

	c.metrics.CacheMiss(c.resource)

	// cache the resource and eject least recently used one if we reached limit
	evicted := c.cache.Add(key, resource)
	if !evicted {
		c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
	}

	return resource, nil
}

// Insert adds a committed resource to the cache.
func (c *Cache[K, V]) Insert(key K, resource V) {
	evicted := c.cache.Add(key, resource)
	if !evicted {
		c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
	}
}

// Remove drops the key from the cache.
func (c *Cache[K, V]) Remove(key K) {
	c.cache.Remove(key)
	c.metrics.CacheEntries(c.resource, uint(c.cache.Len()))
}

// Purge drops every cached resource.
func (c *Cache[K, V]) Purge() {
	c.cache.Purge()
	c.metrics.CacheEntries(c.resource, 0)
}
