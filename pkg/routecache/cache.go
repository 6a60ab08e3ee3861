package routecache

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ScanFunc walks dir and produces the value to cache. dir is always absolute.
type ScanFunc[T any] func(ctx context.Context, dir string) (T, error)

// Cache memoizes ScanFunc results per absolute directory.
// It is safe for concurrent use.
type Cache[T any] struct {
	scan    ScanFunc[T]
	name    string
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *metrics

	mu      sync.Mutex
	entries map[string]T
	// generations counts invalidations per directory. A scan stores its
	// result only if the generation it started under is still current.
	generations map[string]uint64

	group singleflight.Group
}

// New creates a cache around scan.
func New[T any](scan ScanFunc[T], opts ...Option) *Cache[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[T]{
		scan:        scan,
		name:        o.name,
		tracer:      o.resolveTracer(),
		logger:      o.logger.With("cache", o.name),
		metrics:     newMetrics(o),
		entries:     make(map[string]T),
		generations: make(map[string]uint64),
	}
}

// Scan returns the cached value for dir, scanning it on a miss.
//
// Concurrent calls for the same uncached directory share one scan and
// receive the identical value. The shared scan is not cancelled when a
// caller's context is; failed scans are not cached.
func (c *Cache[T]) Scan(ctx context.Context, dir string) (T, error) {
	key, err := filepath.Abs(dir)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	if v, ok := c.entries[key]; ok {
		c.mu.Unlock()
		c.metrics.hit()
		return v, nil
	}
	gen := c.generations[key]
	c.mu.Unlock()

	c.metrics.miss()

	scanCtx := context.WithoutCancel(ctx)
	v, err, shared := c.group.Do(flightKey(key, gen), func() (any, error) {
		return c.fill(scanCtx, key, gen)
	})
	if shared {
		c.metrics.join()
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// fill runs the scan for key unless another scan under the same generation
// has already stored a value.
func (c *Cache[T]) fill(ctx context.Context, key string, gen uint64) (T, error) {
	c.mu.Lock()
	if v, ok := c.entries[key]; ok && c.generations[key] == gen {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, "routecache.scan",
		trace.WithAttributes(
			attribute.String("routecache.name", c.name),
			attribute.String("routecache.dir", key),
		),
	)
	defer span.End()

	start := time.Now()
	v, err := c.scan(ctx, key)
	elapsed := time.Since(start)
	c.metrics.observe(elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("scan failed", "dir", key, "error", err)
		return v, err
	}
	span.SetStatus(codes.Ok, "")

	c.mu.Lock()
	stored := c.generations[key] == gen
	if stored {
		c.entries[key] = v
	}
	c.mu.Unlock()

	c.logger.Debug("scanned", "dir", key, "duration", elapsed, "stored", stored)
	return v, nil
}

// Invalidate drops the cached value for dir so the next Scan walks the
// directory again. A scan already in flight for dir still completes for its
// callers but does not repopulate the cache. Invalidating a directory that
// was never scanned is a no-op.
func (c *Cache[T]) Invalidate(dir string) {
	key, err := filepath.Abs(dir)
	if err != nil {
		return
	}

	c.mu.Lock()
	_, cached := c.entries[key]
	delete(c.entries, key)
	gen := c.generations[key]
	c.generations[key] = gen + 1
	c.mu.Unlock()

	c.group.Forget(flightKey(key, gen))

	if cached {
		c.metrics.invalidated()
		c.logger.Debug("invalidated", "dir", key)
	}
}

// Len returns the number of cached directories.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached directories in sorted order.
func (c *Cache[T]) Keys() []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	sort.Strings(keys)
	return keys
}

func flightKey(dir string, gen uint64) string {
	return dir + "#" + strconv.FormatUint(gen, 10)
}
