// Package cache implements the file-handle LRU cache: it bounds the number
// of concurrently open source-file descriptors while serving repeated
// random reads, evicting the least-recently-used third of entries in one
// batch whenever capacity is exceeded (rather than a single
// least-recently-used victim per miss, which would thrash under a query
// pattern that cycles through slightly more files than the cache holds).
//
// The cache is intentionally single-threaded internally — callers
// (typically one seqidx.Engine) must serialize access.
package cache

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"
)

// DefaultMaxOpen is the cache capacity used when the engine's max_open
// option is left at its default.
const DefaultMaxOpen = 32

// unboundedInner is the capacity simplelru.LRU is constructed with. The
// batch-eviction policy below is layered on top of simplelru purely for
// its ordered recency bookkeeping (Get/Add/RemoveOldest); simplelru's own
// per-Add eviction would fire a single victim at a time and is never
// allowed to trigger, since Acquire always evicts down to capacity first.
const unboundedInner = 1 << 30

// Cache bounds open *os.File handles to maxOpen, keyed by absolute path.
type Cache struct {
	maxOpen int
	inner   *lru.LRU[string, *os.File]
	logger  *zap.Logger
}

func (c *Cache) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// New returns a cache with the given capacity. maxOpen <= 0 is replaced
// with DefaultMaxOpen. logger, if non-nil, receives a debug record for each
// batch eviction.
func New(maxOpen int, logger *zap.Logger) (*Cache, error) {
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpen
	}

	inner, err := lru.NewLRU[string, *os.File](unboundedInner, func(_ string, f *os.File) {
		_ = f.Close()
	})
	if err != nil {
		return nil, err
	}

	return &Cache{maxOpen: maxOpen, inner: inner, logger: logger}, nil
}

// Acquire returns the open handle for path, opening it (and evicting if
// necessary) on a miss. The returned handle is owned by the cache and must
// not be closed by the caller; release is implicit.
func (c *Cache) Acquire(path string) (*os.File, error) {
	if f, ok := c.inner.Get(path); ok {
		return f, nil
	}

	if c.inner.Len() >= c.maxOpen {
		c.evictBatch()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c.inner.Add(path, f)
	return f, nil
}

// evictBatch removes ceil(maxOpen/3) least-recently-used entries in one
// pass, amortizing eviction cost over many misses instead of paying it on
// every single one.
func (c *Cache) evictBatch() {
	n := (c.maxOpen + 2) / 3
	evicted := 0
	for i := 0; i < n; i++ {
		if _, _, ok := c.inner.RemoveOldest(); !ok {
			break
		}
		evicted++
	}
	c.log().Debug("cache eviction batch", zap.Int("evicted", evicted), zap.Int("remaining", c.inner.Len()))
}

// Len reports the number of currently open handles.
func (c *Cache) Len() int { return c.inner.Len() }

// MaxOpen reports the cache's configured capacity.
func (c *Cache) MaxOpen() int { return c.maxOpen }

// Close closes every open handle and empties the cache.
func (c *Cache) Close() error {
	c.inner.Purge()
	return nil
}
