package offers

import (
	"context"
	"sync"
	"time"
)

// Cache wraps a Source with a TTL-bounded in-memory document cache, so a
// session revisiting a service does not refetch its document. Failures are
// never cached.
type Cache struct {
	source  Source
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[cacheKey]*cacheEntry
}

type cacheKey struct {
	service string
	region  string
}

type cacheEntry struct {
	doc       *RegionPricingDocument
	expiresAt time.Time
}

// NewCache creates a caching wrapper around a source
func NewCache(source Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		source:  source,
		ttl:     ttl,
		entries: make(map[cacheKey]*cacheEntry),
	}
}

// FetchRegionalPricing implements Source
func (c *Cache) FetchRegionalPricing(ctx context.Context, serviceCode, region string) (*RegionPricingDocument, error) {
	key := cacheKey{service: serviceCode, region: region}

	c.mu.RLock()
	if cached, ok := c.entries[key]; ok && time.Now().Before(cached.expiresAt) {
		c.mu.RUnlock()
		return cached.doc, nil
	}
	c.mu.RUnlock()

	doc, err := c.source.FetchRegionalPricing(ctx, serviceCode, region)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &cacheEntry{
		doc:       doc,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()

	return doc, nil
}

// Len returns the number of cached documents
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
