package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"sync/atomic"
	"time"

	appinventory "github.com/mizan-erp/backend/internal/application/inventory"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryReportCache implements ReportCache with in-process storage.
// Suitable for single-instance deployments where Redis is not available.
// Values are stored as JSON so Get/Set behave exactly like the Redis
// implementation.
type InMemoryReportCache struct {
	entries sync.Map // map[string]*reportCacheEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type reportCacheEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e *reportCacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// NewInMemoryReportCache creates a new in-memory report cache
func NewInMemoryReportCache(logger *zap.Logger) *InMemoryReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := &InMemoryReportCache{
		logger: logger,
		stopCh: make(chan struct{}),
	}

	go cache.cleanupExpired()

	return cache
}

// Get loads a cached payload into dest. The boolean reports whether the
// key was present and not expired.
func (c *InMemoryReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*reportCacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			if err := json.Unmarshal(entry.data, dest); err != nil {
				return false, err
			}
			return true, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return false, nil
}

// Set stores a payload as JSON with the given TTL
func (c *InMemoryReportCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.entries.Store(key, &reportCacheEntry{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Invalidate deletes every key matching the glob pattern
func (c *InMemoryReportCache) Invalidate(ctx context.Context, pattern string) error {
	var removed int
	c.entries.Range(func(key, _ any) bool {
		if matched, _ := path.Match(pattern, key.(string)); matched {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("invalidated cached reports",
			zap.String("pattern", pattern),
			zap.Int("removed", removed))
	}
	return nil
}

// Close stops the background cleanup goroutine
func (c *InMemoryReportCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryReportCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryReportCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

func (c *InMemoryReportCache) doCleanup() {
	var removed int
	c.entries.Range(func(key, value any) bool {
		if value.(*reportCacheEntry).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("cleaned up expired cache entries",
			zap.Int("removed", removed))
	}
}

// Ensure InMemoryReportCache implements ReportCache
var _ appinventory.ReportCache = (*InMemoryReportCache)(nil)
