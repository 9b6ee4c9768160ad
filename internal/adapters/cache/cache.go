// Package cache memoizes computed industry benchmarks per filter tuple.
// Entries are evicted exactly when new data arrives for the same metric;
// no TTL is needed because invalidation is event-driven.
package cache

import (
	"context"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/esgbench/internal/domain/model"
	"github.com/okian/esgbench/pkg/metrics"
)

// defaultSize bounds the LRU substrate.
const defaultSize = 1024

// BenchmarkCache stores IndustryBenchmark values under deterministic
// filter keys. An LRU bounds memory; a per-metric key index layered on
// top makes Invalidate(metricID) exact.
type BenchmarkCache struct {
	mu    sync.Mutex
	lru   *lru.Cache[string, model.IndustryBenchmark]
	index map[string]map[string]struct{} // metricID -> live keys
	size  int
}

// Option applies a configuration option to the BenchmarkCache.
type Option func(*BenchmarkCache)

// WithSize bounds the number of cached benchmarks.
func WithSize(n int) Option {
	return func(c *BenchmarkCache) {
		if n > 0 {
			c.size = n
		}
	}
}

// New creates a BenchmarkCache.
func New(opts ...Option) (*BenchmarkCache, error) {
	c := &BenchmarkCache{
		index: make(map[string]map[string]struct{}),
		size:  defaultSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	// The eviction callback keeps the index consistent when the LRU drops
	// entries on its own. It runs under c.mu via Add/Remove call paths.
	l, err := lru.NewWithEvict(c.size, func(key string, value model.IndustryBenchmark) {
		c.dropFromIndex(value.MetricID, key)
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// Key builds the deterministic cache key for a metric/filter tuple:
// metricID|industry or "all"|region or "global"|year or "latest"|size or "all".
func Key(metricID string, f model.Filter) string {
	industry := f.Industry
	if industry == "" {
		industry = "all"
	}
	region := f.Region
	if region == "" {
		region = "global"
	}
	year := "latest"
	if f.Year != 0 {
		year = strconv.Itoa(f.Year)
	}
	size := string(f.Size)
	if size == "" {
		size = "all"
	}
	key := metricID + "|" + industry + "|" + region + "|" + year + "|" + size
	if f.VerifiedOnly {
		key += "|verified"
	}
	return key
}

// Get returns the cached benchmark for key, if present.
func (c *BenchmarkCache) Get(_ context.Context, key string) (model.IndustryBenchmark, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.lru.Get(key)
	if ok {
		metrics.RecordCacheHit()
	} else {
		metrics.RecordCacheMiss()
	}
	return b, ok
}

// Put stores a computed benchmark under key.
func (c *BenchmarkCache) Put(_ context.Context, key string, b model.IndustryBenchmark) {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys, ok := c.index[b.MetricID]
	if !ok {
		keys = make(map[string]struct{})
		c.index[b.MetricID] = keys
	}
	keys[key] = struct{}{}
	c.lru.Add(key, b)
}

// Invalidate evicts every entry computed for metricID. This is the only
// invalidation trigger; stale entries are never served.
func (c *BenchmarkCache) Invalidate(_ context.Context, metricID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := c.index[metricID]
	n := len(keys)
	for key := range keys {
		c.lru.Remove(key)
	}
	delete(c.index, metricID)
	if n > 0 {
		metrics.RecordCacheInvalidation(n)
	}
	return n
}

// Len returns the number of live entries.
func (c *BenchmarkCache) Len(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// dropFromIndex removes one key from a metric's index bucket.
func (c *BenchmarkCache) dropFromIndex(metricID, key string) {
	keys, ok := c.index[metricID]
	if !ok {
		return
	}
	delete(keys, key)
	if len(keys) == 0 {
		delete(c.index, metricID)
	}
}
