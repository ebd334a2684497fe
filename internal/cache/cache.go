package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/JustJay7/ecourts-fetcher/internal/scraper"
)

// Cache holds recently extracted cases keyed by their search criteria
type Cache interface {
	Get(key string) (*scraper.ParsedCase, bool)
	Set(key string, value *scraper.ParsedCase) error
	Delete(key string)
	Clear()
	Stats() CacheStats
}

type CacheStats struct {
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	Size       int       `json:"size"`
	LastAccess time.Time `json:"last_access"`
}

// LRUCache bounds a go-cache store by evicting the entry closest to expiry
type LRUCache struct {
	cache   *cache.Cache
	mu      sync.RWMutex
	stats   CacheStats
	maxSize int
}

func NewCache(maxSize int, ttl time.Duration) Cache {
	return &LRUCache{
		cache:   cache.New(ttl, ttl*2),
		maxSize: maxSize,
	}
}

func (c *LRUCache) Get(key string) (*scraper.ParsedCase, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.LastAccess = time.Now()

	if data, found := c.cache.Get(key); found {
		if parsed, ok := data.(*scraper.ParsedCase); ok {
			c.stats.Hits++
			return parsed, true
		}
	}

	c.stats.Misses++
	return nil, false
}

func (c *LRUCache) Set(key string, value *scraper.ParsedCase) error {
	if value == nil {
		return fmt.Errorf("refusing to cache nil case for %s", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache.Get(key); !exists && c.maxSize > 0 && c.cache.ItemCount() >= c.maxSize {
		c.removeOldest()
	}

	c.cache.Set(key, value, cache.DefaultExpiration)
	return nil
}

func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Delete(key)
}

func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	c.stats = CacheStats{}
}

func (c *LRUCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Size = c.cache.ItemCount()
	return stats
}

func (c *LRUCache) removeOldest() {
	var oldestKey string
	var oldest int64

	for key, item := range c.cache.Items() {
		if oldestKey == "" || item.Expiration < oldest {
			oldestKey = key
			oldest = item.Expiration
		}
	}

	if oldestKey != "" {
		c.cache.Delete(oldestKey)
	}
}

// KeyFor derives the cache key of a search. Criteria that differ only in
// letter case or surrounding space share a key.
func KeyFor(c scraper.SearchCriteria) string {
	parts := []string{
		string(c.Mode()),
		c.State, c.Bench, c.CNR, c.PartyName,
		c.EffectiveCaseType(), c.CaseNumber, c.CaseYear,
		c.FilingNumber, c.AdvocateName, c.FIRNumber, c.Act,
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return "case:" + strings.Join(parts, ":")
}
