// Package cache holds the process-local TTL memoization used in front of the
// content store.
package cache

import (
	"context"
	"expert-api/internal/logger"
	"expert-api/internal/metrics"
	"sync/atomic"
	"time"
)

// FetchFunc produces a fresh value for a cell.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Cell memoizes one fetch for ttl. The stored value is swapped atomically,
// so readers never observe a partial refresh. Concurrent refreshes of an
// expired cell are not coordinated; the last one to finish wins.
type Cell[T any] struct {
	name  string
	ttl   time.Duration
	fetch FetchFunc[T]
	now   func() time.Time
	cur   atomic.Pointer[entry[T]]
}

// NewCell builds an empty cell.
func NewCell[T any](name string, ttl time.Duration, fetch FetchFunc[T]) *Cell[T] {
	return &Cell[T]{name: name, ttl: ttl, fetch: fetch, now: time.Now}
}

func (c *Cell[T]) Name() string       { return c.name }
func (c *Cell[T]) TTL() time.Duration { return c.ttl }

// Get returns the fresh value or fetches a new one. Fetch errors propagate.
func (c *Cell[T]) Get(ctx context.Context) (T, error) { return c.load(ctx, false) }

// GetOrStale is Get, except that a fetch error is absorbed when an older
// value exists: the stale value is returned instead.
func (c *Cell[T]) GetOrStale(ctx context.Context) (T, error) { return c.load(ctx, true) }

func (c *Cell[T]) load(ctx context.Context, staleOK bool) (T, error) {
	e := c.cur.Load()
	if e != nil && c.fresh(e) {
		metrics.CacheRequestsTotal.WithLabelValues(c.name, "hit").Inc()
		return e.value, nil
	}
	metrics.CacheRequestsTotal.WithLabelValues(c.name, "miss").Inc()
	v, err := c.Refresh(ctx)
	if err != nil {
		if staleOK && e != nil {
			metrics.CacheRequestsTotal.WithLabelValues(c.name, "stale").Inc()
			logger.L().Warn("cache_serve_stale", "cell", c.name, "age", c.now().Sub(e.fetchedAt).String(), "err", err)
			return e.value, nil
		}
		var zero T
		return zero, err
	}
	return v, nil
}

func (c *Cell[T]) fresh(e *entry[T]) bool { return c.now().Sub(e.fetchedAt) < c.ttl }

// Refresh fetches unconditionally. On failure the stored value is kept.
func (c *Cell[T]) Refresh(ctx context.Context) (T, error) {
	v, err := c.fetch(ctx)
	if err != nil {
		metrics.CacheRefreshTotal.WithLabelValues(c.name, "fail").Inc()
		var zero T
		return zero, err
	}
	c.cur.Store(&entry[T]{value: v, fetchedAt: c.now()})
	metrics.CacheRefreshTotal.WithLabelValues(c.name, "ok").Inc()
	logger.L().Debug("cache_refreshed", "cell", c.name)
	return v, nil
}

// Invalidate drops the stored value; the next read fetches and has nothing
// stale to fall back on.
func (c *Cell[T]) Invalidate() { c.cur.Store(nil) }

// Peek returns the stored value without fetching.
func (c *Cell[T]) Peek() (v T, fetchedAt time.Time, ok bool) {
	e := c.cur.Load()
	if e == nil {
		return v, time.Time{}, false
	}
	return e.value, e.fetchedAt, true
}

// Status describes a cell for operators.
type Status struct {
	Name      string    `json:"name"`
	TTL       string    `json:"ttl"`
	FetchedAt time.Time `json:"fetchedAt,omitempty"`
	Fresh     bool      `json:"fresh"`
	Empty     bool      `json:"empty"`
}

func (c *Cell[T]) status() Status {
	s := Status{Name: c.name, TTL: c.ttl.String(), Empty: true}
	if e := c.cur.Load(); e != nil {
		s.Empty = false
		s.FetchedAt = e.fetchedAt
		s.Fresh = c.fresh(e)
	}
	return s
}

func (c *Cell[T]) refresh(ctx context.Context) error {
	_, err := c.Refresh(ctx)
	return err
}
