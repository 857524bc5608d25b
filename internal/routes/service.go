package routes

import (
	"context"
	"errors"
	"expert-api/internal/directory"
	"expert-api/internal/logger"
	"expert-api/internal/metrics"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNoManifest means nothing has been generated or loaded yet. Callers
// should trigger generation rather than treat it as a failure.
var ErrNoManifest = errors.New("routes: no manifest generated yet")

// Source supplies the cached directory data.
type Source interface {
	Dataset(ctx context.Context, staleOK bool) (*directory.Dataset, error)
	Experts(ctx context.Context, staleOK bool) ([]directory.Expert, error)
}

type snapshot struct {
	manifest *Manifest
	menu     *Menu
	stats    *Stats
}

// Service owns the current manifest. Readers get the last complete
// snapshot; regeneration builds a new one off to the side and swaps it in.
// Concurrent Regenerate calls share a single in-flight generation.
type Service struct {
	src   Source
	store SnapshotStore
	now   func() time.Time
	cur   atomic.Pointer[snapshot]
	group singleflight.Group
}

// NewService wires a service. store may be nil.
func NewService(src Source, store SnapshotStore) *Service {
	s := &Service{src: src, now: time.Now}
	// a typed nil *RedisStore must not become a non-nil interface
	if rs, ok := store.(*RedisStore); !ok || rs != nil {
		s.store = store
	}
	return s
}

// Manifest returns the current manifest or ErrNoManifest.
func (s *Service) Manifest() (*Manifest, error) {
	snap := s.cur.Load()
	if snap == nil {
		return nil, ErrNoManifest
	}
	return snap.manifest, nil
}

// Lookup resolves one path against the current manifest.
func (s *Service) Lookup(path string) (Params, bool, error) {
	m, err := s.Manifest()
	if err != nil {
		return Params{}, false, err
	}
	p, ok := m.Get(path)
	return p, ok, nil
}

// Menu returns the summary, deriving it from the manifest when the current
// snapshot came without one.
func (s *Service) Menu() (*Menu, error) {
	snap := s.cur.Load()
	if snap == nil {
		return nil, ErrNoManifest
	}
	if snap.menu != nil {
		return snap.menu, nil
	}
	menu := Summarize(snap.manifest)
	s.cur.CompareAndSwap(snap, &snapshot{manifest: snap.manifest, menu: menu, stats: snap.stats})
	return menu, nil
}

// Stats returns the stats of the last generation run in this process.
func (s *Service) Stats() (*Stats, bool) {
	snap := s.cur.Load()
	if snap == nil || snap.stats == nil {
		return nil, false
	}
	return snap.stats, true
}

// Install publishes an externally built manifest.
func (s *Service) Install(m *Manifest, menu *Menu, stats *Stats) {
	s.cur.Store(&snapshot{manifest: m, menu: menu, stats: stats})
	for k, n := range m.KindCounts() {
		metrics.ManifestRoutes.WithLabelValues(string(k)).Set(float64(n))
	}
}

// Warm loads the shared snapshot when this process has none yet. A missing
// snapshot is not an error.
func (s *Service) Warm(ctx context.Context) (bool, error) {
	if s.store == nil || s.cur.Load() != nil {
		return false, nil
	}
	m, menu, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, nil
	}
	s.cur.CompareAndSwap(nil, &snapshot{manifest: m, menu: menu})
	logger.L().Info("routes_snapshot_loaded", "count", m.Size, "generated", m.Generated)
	return true, nil
}

// Regenerate rebuilds the manifest from the cached directory data. Route
// data is read stale-on-error; when even that fails the previous manifest
// stays in place and the error is returned.
func (s *Service) Regenerate(ctx context.Context) (*Manifest, error) {
	v, err, shared := s.group.Do("generate", func() (any, error) {
		return s.generate(context.WithoutCancel(ctx))
	})
	if shared {
		logger.L().Debug("routes_generate_shared")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Manifest), nil
}

// RegenerateAsync kicks off a generation in the background.
func (s *Service) RegenerateAsync() {
	go func() {
		if _, err := s.Regenerate(context.Background()); err != nil {
			logger.L().Error("routes_generate_async_error", "err", err)
		}
	}()
}

func (s *Service) generate(ctx context.Context) (*Manifest, error) {
	t0 := time.Now()
	l := logger.L()
	l.Info("routes_generate_begin")

	ds, err := s.src.Dataset(ctx, true)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("fail").Inc()
		l.Error("routes_generate_error", "stage", "reference", "err", err)
		return nil, fmt.Errorf("generate routes: %w", err)
	}
	experts, err := s.src.Experts(ctx, true)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("fail").Inc()
		l.Error("routes_generate_error", "stage", "experts", "err", err)
		return nil, fmt.Errorf("generate routes: %w", err)
	}
	if experts == nil {
		experts = []directory.Expert{}
	}

	res := Generate(ds, experts)
	if c := Collisions(res.Routes); len(c) > 0 {
		l.Warn("routes_path_collision", "count", len(c), "first", c[0])
	}
	m := Build(res.Routes, s.now())
	menu := Summarize(m)
	stats := res.Stats
	s.Install(m, menu, &stats)

	metrics.GenerationTotal.WithLabelValues("ok").Inc()
	metrics.GenerationDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	l.Info("routes_generate_done",
		"routes", m.Size,
		"candidates", stats.Candidates,
		"pruned", stats.Pruned,
		"unroutable", stats.Unroutable,
		"duration_ms", time.Since(t0).Milliseconds(),
	)

	if s.store != nil {
		if err := s.store.Save(ctx, m, menu); err != nil {
			l.Warn("routes_snapshot_save_error", "err", err)
		}
	}
	return m, nil
}
