// Package experts answers filtered, enriched and paginated directory queries.
package experts

import (
	"context"
	"errors"
	"expert-api/internal/directory"
	"expert-api/internal/logger"
	"expert-api/internal/metrics"
	"fmt"
	"slices"
	"time"
)

// DefaultLimit applies when a page carries no limit.
const DefaultLimit = 100

var ErrInvalidPagination = errors.New("experts: limit and offset must be non-negative")

// Source supplies cached directory data. staleOK lets a failed refresh fall
// back to the previous value; the engine never sets it.
type Source interface {
	Dataset(ctx context.Context, staleOK bool) (*directory.Dataset, error)
	Experts(ctx context.Context, staleOK bool) ([]directory.Expert, error)
}

// Filters are conjunctive; empty fields match everything.
type Filters struct {
	RegionID        string
	SubUnitID       string
	CategoryID      string
	SkillID         string
	CertificationID string
}

// Page selects [Offset, Offset+Limit). A zero Limit means DefaultLimit.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() (Page, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return p, ErrInvalidPagination
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p, nil
}

// Ref is a resolved reference with its display name.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Item is one expert enriched with resolved reference names. References
// that do not resolve are left out.
type Item struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`
	Region         *Ref           `json:"state,omitempty"`
	SubUnit        *Ref           `json:"city,omitempty"`
	Skills         []Ref          `json:"skills"`
	Certifications []Ref          `json:"certifications"`
	FieldData      map[string]any `json:"fieldData,omitempty"`
}

type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type Result struct {
	Items      []Item     `json:"items"`
	Count      int        `json:"count"`
	Total      int        `json:"total"`
	Pagination Pagination `json:"pagination"`
}

type Engine struct {
	src Source
	now func() time.Time
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src, now: time.Now}
}

// Query filters the cached expert list, shuffles it with the day seed and
// returns one page. A failed refresh of an expired cell is returned to the
// caller rather than answered from the old value.
func (e *Engine) Query(ctx context.Context, f Filters, p Page) (*Result, error) {
	t0 := time.Now()
	res, err := e.query(ctx, f, p)
	status := "ok"
	switch {
	case errors.Is(err, ErrInvalidPagination):
		status = "invalid"
	case err != nil:
		status = "fail"
		logger.L().Error("experts_query_error", "err", err)
	}
	metrics.ExpertQueriesTotal.WithLabelValues(status).Inc()
	metrics.ExpertQueryDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	return res, err
}

func (e *Engine) query(ctx context.Context, f Filters, p Page) (*Result, error) {
	p, err := p.normalize()
	if err != nil {
		return nil, err
	}
	all, err := e.src.Experts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("load experts: %w", err)
	}
	ds, err := e.src.Dataset(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	idx := directory.NewIndex(ds)

	matched := make([]Item, 0, len(all))
	for _, x := range all {
		if !match(x, f, idx) {
			continue
		}
		matched = append(matched, enrich(x, idx))
	}

	Shuffle(matched, DaySeed(e.now()))

	total := len(matched)
	start := min(p.Offset, total)
	end := start + min(p.Limit, total-start)
	items := matched[start:end]

	return &Result{
		Items: items,
		Count: len(items),
		Total: total,
		Pagination: Pagination{
			Limit:   p.Limit,
			Offset:  p.Offset,
			HasMore: p.Offset+len(items) < total,
		},
	}, nil
}

// match checks raw reference ids. A category is satisfied only through the
// expert's skills; certifications do not count toward it.
func match(x directory.Expert, f Filters, idx *directory.Index) bool {
	if f.RegionID != "" && x.RegionID != f.RegionID {
		return false
	}
	if f.SubUnitID != "" && x.SubUnitID != f.SubUnitID {
		return false
	}
	if f.SkillID != "" && !slices.Contains(x.SkillIDs, f.SkillID) {
		return false
	}
	if f.CertificationID != "" && !slices.Contains(x.CertificationIDs, f.CertificationID) {
		return false
	}
	if f.CategoryID != "" && !idx.SkillCategories(x.SkillIDs)[f.CategoryID] {
		return false
	}
	return true
}

func enrich(x directory.Expert, idx *directory.Index) Item {
	it := Item{
		ID:             x.ID,
		Name:           x.Name,
		Slug:           x.Slug,
		Skills:         []Ref{},
		Certifications: []Ref{},
		FieldData:      x.Fields,
	}
	if r, ok := idx.Region(x.RegionID); ok && x.RegionID != "" {
		it.Region = &Ref{ID: r.ID, Name: r.Name, Slug: r.Slug}
	}
	if s, ok := idx.SubUnit(x.SubUnitID); ok && x.SubUnitID != "" {
		it.SubUnit = &Ref{ID: s.ID, Name: s.Name, Slug: s.Slug}
	}
	for _, id := range x.SkillIDs {
		if s, ok := idx.Skill(id); ok {
			it.Skills = append(it.Skills, Ref{ID: s.ID, Name: s.Name, Slug: s.Slug})
		}
	}
	for _, id := range x.CertificationIDs {
		if c, ok := idx.Certification(id); ok {
			it.Certifications = append(it.Certifications, Ref{ID: c.ID, Name: c.Name, Slug: c.Slug})
		}
	}
	return it
}
