// Package topology holds the most recently fetched pipe-network snapshot.
package topology

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/pipenet/internal/logging"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/aretw0/pipenet/pkg/observability"
	"github.com/aretw0/pipenet/pkg/ports"
)

// Cache serves the last fetched TopologySnapshot and replaces it wholesale on refresh.
// Safe for concurrent use.
type Cache struct {
	source  ports.TopologySource
	logger  *slog.Logger
	metrics *observability.Metrics
	maxAge  time.Duration
	now     func() time.Time

	current atomic.Pointer[domain.TopologySnapshot]
	nextSeq atomic.Uint64

	mu      sync.Mutex // guards applied and stale
	applied uint64
	stale   bool
}

// Option configures the Cache.
type Option func(*Cache)

// WithLogger configures a logger for the Cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithMetrics records fetch outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithMaxAge makes snapshots older than d count as stale for non-forced reads.
// Zero (the default) keeps a snapshot valid until it is invalidated.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) {
		c.maxAge = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates an empty cache backed by source.
func NewCache(source ports.TopologySource, opts ...Option) *Cache {
	c := &Cache{
		source: source,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the cached snapshot without I/O when one exists, force is
// false and it is still valid. Otherwise it fetches and replaces the cache.
//
// On fetch failure the previous snapshot (possibly nil) is returned together
// with an error wrapping domain.ErrNetwork; the cache is left untouched.
func (c *Cache) Snapshot(ctx context.Context, force bool) (*domain.TopologySnapshot, error) {
	if !force {
		if snap := c.valid(); snap != nil {
			return snap, nil
		}
	}
	return c.fetch(ctx)
}

// MaxAge reports the configured snapshot lifetime for non-forced reads.
func (c *Cache) MaxAge() time.Duration {
	return c.maxAge
}

// Current returns the cached snapshot, stale or not, without any I/O.
func (c *Cache) Current() *domain.TopologySnapshot {
	return c.current.Load()
}

// Invalidate marks the cached snapshot stale. It keeps being served by Current
// and as a fallback after failed fetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

func (c *Cache) valid() *domain.TopologySnapshot {
	snap := c.current.Load()
	if snap == nil {
		return nil
	}

	c.mu.Lock()
	stale := c.stale
	c.mu.Unlock()

	if stale {
		return nil
	}
	if c.maxAge > 0 && c.now().Sub(snap.FetchedAt) >= c.maxAge {
		return nil
	}
	return snap
}

func (c *Cache) fetch(ctx context.Context) (*domain.TopologySnapshot, error) {
	seq := c.nextSeq.Add(1)
	started := c.now()

	segments, err := c.source.FetchTopology(ctx)
	elapsed := c.now().Sub(started).Seconds()
	if err != nil {
		c.metrics.ObserveFetch("error", elapsed)
		c.logger.Warn("Topology fetch failed", "seq", seq, "err", err)
		if !errors.Is(err, domain.ErrNetwork) {
			err = fmt.Errorf("%w: %w", domain.ErrNetwork, err)
		}
		return c.current.Load(), fmt.Errorf("fetch topology: %w", err)
	}

	// Age counts from the request, so a slow fetch does not lengthen the snapshot's validity.
	snap := domain.NewSnapshot(segments, started, seq)

	c.mu.Lock()
	if seq < c.applied {
		// A fetch started later already landed; this response is older.
		applied := c.applied
		c.mu.Unlock()
		c.metrics.ObserveFetch("discarded", elapsed)
		c.logger.Debug("Discarding out-of-order topology response", "seq", seq, "applied", applied)
		return c.current.Load(), nil
	}
	c.applied = seq
	c.stale = false
	c.current.Store(snap)
	c.mu.Unlock()

	c.metrics.ObserveFetch("ok", elapsed)
	c.metrics.ObserveSnapshot(len(snap.Segments))
	c.logger.Debug("Topology snapshot applied", "seq", seq, "segments", len(snap.Segments))
	return snap, nil
}
