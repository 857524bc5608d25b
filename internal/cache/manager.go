package cache

import (
	"context"
	"errors"
	"expert-api/internal/cms"
	"expert-api/internal/directory"
	"expert-api/internal/logger"
	"expert-api/internal/utils"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config carries the two TTL classes.
type Config struct {
	ReferenceTTL time.Duration
	ExpertTTL    time.Duration
}

// ConfigFromEnv reads CACHE_REFERENCE_TTL (default 30m) and CACHE_EXPERT_TTL (default 5m).
func ConfigFromEnv() Config {
	return Config{
		ReferenceTTL: utils.EnvDuration("CACHE_REFERENCE_TTL", 30*time.Minute),
		ExpertTTL:    utils.EnvDuration("CACHE_EXPERT_TTL", 5*time.Minute),
	}
}

type managed interface {
	Name() string
	Invalidate()
	refresh(ctx context.Context) error
	status() Status
}

// Manager owns one cell per collection. It is built once at process start
// and handed to whatever needs directory data.
type Manager struct {
	regions        *Cell[[]directory.Region]
	subUnits       *Cell[[]directory.SubUnit]
	categories     *Cell[[]directory.Category]
	skills         *Cell[[]directory.Skill]
	certifications *Cell[[]directory.Certification]
	experts        *Cell[[]directory.Expert]
	all            []managed
}

func decoded[T any](f cms.Fetcher, c cms.Collection, decode func([]cms.Item) []T) FetchFunc[[]T] {
	return func(ctx context.Context) ([]T, error) {
		items, err := f.FetchCollection(ctx, c)
		if err != nil {
			return nil, err
		}
		return decode(items), nil
	}
}

// NewManager wires cells over f.
func NewManager(f cms.Fetcher, cfg Config) *Manager {
	m := &Manager{
		regions:        NewCell(string(cms.Regions), cfg.ReferenceTTL, decoded(f, cms.Regions, directory.DecodeRegions)),
		subUnits:       NewCell(string(cms.SubUnits), cfg.ReferenceTTL, decoded(f, cms.SubUnits, directory.DecodeSubUnits)),
		categories:     NewCell(string(cms.Categories), cfg.ReferenceTTL, decoded(f, cms.Categories, directory.DecodeCategories)),
		skills:         NewCell(string(cms.Skills), cfg.ReferenceTTL, decoded(f, cms.Skills, directory.DecodeSkills)),
		certifications: NewCell(string(cms.Certifications), cfg.ReferenceTTL, decoded(f, cms.Certifications, directory.DecodeCertifications)),
		experts:        NewCell(string(cms.Experts), cfg.ExpertTTL, decoded(f, cms.Experts, directory.DecodeExperts)),
	}
	m.all = []managed{m.regions, m.subUnits, m.categories, m.skills, m.certifications, m.experts}
	return m
}

func load[T any](ctx context.Context, c *Cell[T], staleOK bool) (T, error) {
	if staleOK {
		return c.GetOrStale(ctx)
	}
	return c.Get(ctx)
}

// Dataset assembles the reference collections, fetching expired ones in
// parallel. staleOK selects the stale-on-error policy for every cell.
func (m *Manager) Dataset(ctx context.Context, staleOK bool) (*directory.Dataset, error) {
	ds := &directory.Dataset{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { ds.Regions, err = load(gctx, m.regions, staleOK); return })
	g.Go(func() (err error) { ds.SubUnits, err = load(gctx, m.subUnits, staleOK); return })
	g.Go(func() (err error) { ds.Categories, err = load(gctx, m.categories, staleOK); return })
	g.Go(func() (err error) { ds.Skills, err = load(gctx, m.skills, staleOK); return })
	g.Go(func() (err error) { ds.Certifications, err = load(gctx, m.certifications, staleOK); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	return ds, nil
}

// Experts returns the cached directory entries.
func (m *Manager) Experts(ctx context.Context, staleOK bool) ([]directory.Expert, error) {
	es, err := load(ctx, m.experts, staleOK)
	if err != nil {
		return nil, fmt.Errorf("load experts: %w", err)
	}
	return es, nil
}

// ErrUnknownCell is returned by Invalidate for a name no cell carries.
var ErrUnknownCell = errors.New("cache: unknown cell")

// Invalidate drops the named cells, or every cell when no name is given.
func (m *Manager) Invalidate(names ...string) error {
	if len(names) == 0 {
		for _, c := range m.all {
			c.Invalidate()
		}
		logger.L().Info("cache_invalidated", "cells", "all")
		return nil
	}
	for _, n := range names {
		c := m.cell(n)
		if c == nil {
			return fmt.Errorf("%w: %s", ErrUnknownCell, n)
		}
		c.Invalidate()
	}
	logger.L().Info("cache_invalidated", "cells", names)
	return nil
}

// ForceRefresh refetches every cell. Cells that fail keep their old value;
// the joined error lists them.
func (m *Manager) ForceRefresh(ctx context.Context) error {
	errs := make([]error, len(m.all))
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for i, c := range m.all {
		g.Go(func() error {
			errs[i] = c.refresh(gctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Status reports every cell.
func (m *Manager) Status() []Status {
	out := make([]Status, 0, len(m.all))
	for _, c := range m.all {
		out = append(out, c.status())
	}
	return out
}

func (m *Manager) cell(name string) managed {
	for _, c := range m.all {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
