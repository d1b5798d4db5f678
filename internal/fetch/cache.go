package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ResponseCache holds recent fetch results keyed by URL hash, so re-adding a
// book or retrying a failed ingest does not re-download the source.
type ResponseCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewResponseCache creates a cache with the given TTL. A non-positive TTL
// disables caching.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		return &ResponseCache{}
	}
	return &ResponseCache{
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Get returns a cached result for the URL, if present.
func (c *ResponseCache) Get(rawURL string) (Result, bool) {
	if c.cache == nil {
		return Result{}, false
	}
	if val, found := c.cache.Get(cacheKey(rawURL)); found {
		return val.(Result), true
	}
	return Result{}, false
}

// Set stores a result for the URL.
func (c *ResponseCache) Set(rawURL string, res Result) {
	if c.cache == nil {
		return
	}
	c.cache.Set(cacheKey(rawURL), res, c.ttl)
}

// Clear drops all cached responses.
func (c *ResponseCache) Clear() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

func cacheKey(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return "folio:v1:" + hex.EncodeToString(hash[:])
}
