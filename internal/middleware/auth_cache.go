package middleware

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	tenantCacheTTL     = 5 * time.Minute
	negativeCacheTTL   = 30 * time.Second
	maxCacheEntries    = 10000
	cacheCleanupPeriod = 60 * time.Second
)

// negativeSentinel marks an entry as a cached lookup failure.
const negativeSentinel = "\x00negative"

// errCachedNotFound is returned for negative cache hits.
var errCachedNotFound = errors.New("tenant not found (cached)")

type cachedTenant struct {
	tenantID  string
	fetchedAt time.Time
}

func (ct cachedTenant) isNegative() bool {
	return ct.tenantID == negativeSentinel
}

// ttl is shorter for negative entries so a freshly provisioned key becomes
// usable quickly.
func (ct cachedTenant) ttl() time.Duration {
	if ct.isNegative() {
		return negativeCacheTTL
	}
	return tenantCacheTTL
}

func (ct cachedTenant) expired(now time.Time) bool {
	return now.Sub(ct.fetchedAt) >= ct.ttl()
}

// CachedTenantLookup fronts a TenantLookup with a bounded in-memory cache,
// keyed by hashed API key so raw keys never sit in memory. Failed lookups
// are cached too, which keeps brute-force attempts off the database.
type CachedTenantLookup struct {
	inner TenantLookup
	mu    sync.RWMutex
	cache map[string]cachedTenant
}

// NewCachedTenantLookup wraps inner with a cache. The eviction goroutine
// runs until ctx is cancelled.
func NewCachedTenantLookup(ctx context.Context, inner TenantLookup) *CachedTenantLookup {
	c := &CachedTenantLookup{
		inner: inner,
		cache: make(map[string]cachedTenant),
	}
	go c.evictLoop(ctx)
	return c
}

func (c *CachedTenantLookup) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(cacheCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.evictExpiredLocked(time.Now())
			c.mu.Unlock()
		}
	}
}

// evictExpiredLocked removes expired entries. Caller must hold c.mu.
func (c *CachedTenantLookup) evictExpiredLocked(now time.Time) {
	for k, v := range c.cache {
		if v.expired(now) {
			delete(c.cache, k)
		}
	}
}

// GetTenantByAPIKey returns the cached tenant ID for apiKey, consulting the
// inner lookup on a miss or expiry.
func (c *CachedTenantLookup) GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error) {
	hk := keyHash(apiKey)
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.cache[hk]
	c.mu.RUnlock()

	if ok && !entry.expired(now) {
		if entry.isNegative() {
			return "", errCachedNotFound
		}
		return entry.tenantID, nil
	}

	tenantID, err := c.inner.GetTenantByAPIKey(ctx, apiKey)
	if err != nil {
		c.mu.Lock()
		c.cache[hk] = cachedTenant{tenantID: negativeSentinel, fetchedAt: time.Now()}
		c.mu.Unlock()
		return "", err
	}

	c.mu.Lock()
	if len(c.cache) >= maxCacheEntries {
		c.evictExpiredLocked(time.Now())
		// Still over the cap after expiry: drop arbitrary entries.
		for k := range c.cache {
			if len(c.cache) < maxCacheEntries {
				break
			}
			delete(c.cache, k)
		}
	}
	c.cache[hk] = cachedTenant{tenantID: tenantID, fetchedAt: time.Now()}
	c.mu.Unlock()

	return tenantID, nil
}
