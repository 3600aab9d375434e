package recurrence

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cyp0633/libcaldate/date"
	"github.com/samber/mo"
)

// CacheEntry represents a cached expansion result
type CacheEntry struct {
	Result     any // bool for has-occurrence checks, ExpansionResult for expansions
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// RecurrenceCache memoizes expansion results keyed by schedule and range
type RecurrenceCache struct {
	entries         map[string]*CacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// CacheConfig holds configuration for the recurrence cache
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl"`              // How long entries stay valid
	MaxEntries      int           `yaml:"max_entries"`      // Maximum number of entries before eviction
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // How often to sweep expired entries, 0 disables the sweeper
}

// DefaultCacheConfig provides sensible defaults for recurrence caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewRecurrenceCache creates a cache and starts its sweeper goroutine
func NewRecurrenceCache(config CacheConfig) *RecurrenceCache {
	cache := &RecurrenceCache{
		entries:         make(map[string]*CacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	if cache.cleanupInterval > 0 {
		go cache.cleanupLoop()
	}

	return cache
}

// generateCacheKey hashes everything that influences an expansion result
func (c *RecurrenceCache) generateCacheKey(operation string, rep mo.Option[Repetition], start, rangeStart, rangeEnd date.SimpleDate) string {
	hasher := sha256.New()

	hasher.Write([]byte(operation))
	hasher.Write([]byte(start.String()))
	hasher.Write([]byte(rangeStart.String()))
	hasher.Write([]byte(rangeEnd.String()))

	if r, ok := rep.Get(); ok {
		// %#v spells out the concrete delta type and every slice element
		fmt.Fprintf(hasher, "%#v|%#v", r.Delta, r.End)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get retrieves a cached result if it exists and hasn't expired
func (c *RecurrenceCache) Get(operation string, rep mo.Option[Repetition], start, rangeStart, rangeEnd date.SimpleDate) (any, bool) {
	key := c.generateCacheKey(operation, rep, start, rangeStart, rangeEnd)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.ExpiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	entry.AccessedAt = now
	return entry.Result, true
}

// Set stores a result in the cache
func (c *RecurrenceCache) Set(operation string, rep mo.Option[Repetition], start, rangeStart, rangeEnd date.SimpleDate, result any) {
	key := c.generateCacheKey(operation, rep, start, rangeStart, rangeEnd)
	now := time.Now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = &CacheEntry{
		Result:     result,
		ExpiresAt:  now.Add(c.ttl),
		AccessedAt: now,
	}

	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries, then the least recently used ones while
// over the limit. Callers hold the write lock.
func (c *RecurrenceCache) cleanup() {
	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].AccessedAt.Before(c.entries[keys[j]].AccessedAt)
	})

	for _, key := range keys[:len(keys)-c.maxEntries] {
		delete(c.entries, key)
	}
}

func (c *RecurrenceCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the sweeper and clears the cache. It is safe to call more
// than once.
func (c *RecurrenceCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	c.mutex.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mutex.Unlock()
}

// Stats returns cache statistics
func (c *RecurrenceCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entryCount := len(c.entries)
	expiredCount := 0
	now := time.Now()

	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   entryCount,
		ExpiredEntries: expiredCount,
		ActiveEntries:  entryCount - expiredCount,
	}
}

// CacheStats provides information about cache occupancy
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}
