// Package api registers the HTTP surface on its own ServeMux so the entry
// point can mount it under any prefix.
package api

import (
	"context"
	"errors"
	"expert-api/internal/cache"
	"expert-api/internal/cms"
	"expert-api/internal/experts"
	"expert-api/internal/logger"
	"expert-api/internal/middleware"
	"expert-api/internal/metrics"
	"expert-api/internal/routes"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RouteService is the part of routes.Service the handlers use.
type RouteService interface {
	Manifest() (*routes.Manifest, error)
	Lookup(path string) (routes.Params, bool, error)
	Menu() (*routes.Menu, error)
	Stats() (*routes.Stats, bool)
	Regenerate(ctx context.Context) (*routes.Manifest, error)
	RegenerateAsync()
}

type ExpertQuerier interface {
	Query(ctx context.Context, f experts.Filters, p experts.Page) (*experts.Result, error)
}

type CacheAdmin interface {
	Invalidate(names ...string) error
	Status() []cache.Status
}

// Deps are the collaborators behind the handlers. Cache and Admin may be nil;
// without Admin the regenerate endpoint is not registered.
type Deps struct {
	Routes   RouteService
	Experts  ExpertQuerier
	Cache    CacheAdmin
	Admin    *middleware.AdminGuard
	MaxLimit int
}

type handlers struct {
	Deps
}

// BuildRoutes returns the API mux with paths relative to the mount point.
func BuildRoutes(d Deps) *http.ServeMux {
	if d.MaxLimit <= 0 {
		d.MaxLimit = 500
	}
	h := &handlers{Deps: d}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /routes", h.routes)
	mux.HandleFunc("GET /routes/lookup", h.lookup)
	mux.HandleFunc("GET /routes/stats", h.stats)
	mux.HandleFunc("GET /menu", h.menu)
	mux.HandleFunc("GET /experts", h.experts)
	mux.HandleFunc("GET /health", h.health)
	mux.Handle("GET /metrics", metrics.Handler())
	if d.Admin != nil {
		mux.Handle("POST /regenerate", d.Admin.Wrap(http.HandlerFunc(h.regenerate)))
	}
	return mux
}

// manifestError maps service errors to responses. A missing manifest kicks
// off generation in the background.
func (h *handlers) manifestError(w http.ResponseWriter, err error) {
	if errors.Is(err, routes.ErrNoManifest) {
		h.Routes.RegenerateAsync()
		writeError(w, http.StatusServiceUnavailable, "routes not generated yet", "generation started, retry shortly")
		return
	}
	upstreamOr500(w, err)
}

func upstreamOr500(w http.ResponseWriter, err error) {
	if cms.IsFetchError(err) {
		writeError(w, http.StatusServiceUnavailable, "content source unavailable", "")
		return
	}
	logger.L().Error("api_internal_error", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

func (h *handlers) routes(w http.ResponseWriter, r *http.Request) {
	m, err := h.Routes.Manifest()
	if err != nil {
		h.manifestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *handlers) lookup(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required", "")
		return
	}
	p, ok, err := h.Routes.Lookup(path)
	if err != nil {
		h.manifestError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "route not found", "")
		return
	}
	writeJSON(w, http.StatusOK, routes.Route{Path: routes.NormalizePath(path), Params: p})
}

type statsBody struct {
	Count     int                 `json:"count"`
	Generated time.Time           `json:"generated"`
	ByKind    map[routes.Kind]int `json:"byKind"`
	LastRun   *routes.Stats       `json:"lastRun,omitempty"`
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	m, err := h.Routes.Manifest()
	if err != nil {
		h.manifestError(w, err)
		return
	}
	body := statsBody{Count: m.Count(), Generated: m.GeneratedAt(), ByKind: m.KindCounts()}
	if s, ok := h.Routes.Stats(); ok {
		body.LastRun = s
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *handlers) menu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Routes.Menu()
	if err != nil {
		h.manifestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// queryInt returns def when the parameter is absent. Sign checks are left
// to the engine.
func queryInt(r *http.Request, key string, def int) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (h *handlers) experts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(r, "limit", experts.DefaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer", "")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer", "")
		return
	}
	if limit > h.MaxLimit {
		limit = h.MaxLimit
	}
	f := experts.Filters{
		RegionID:        strings.TrimSpace(q.Get("stateId")),
		SubUnitID:       strings.TrimSpace(q.Get("cityId")),
		CategoryID:      strings.TrimSpace(q.Get("categoryId")),
		SkillID:         strings.TrimSpace(q.Get("skillId")),
		CertificationID: strings.TrimSpace(q.Get("certificationId")),
	}
	res, err := h.Experts.Query(r.Context(), f, experts.Page{Limit: limit, Offset: offset})
	if errors.Is(err, experts.ErrInvalidPagination) {
		writeError(w, http.StatusBadRequest, "limit and offset must be non-negative", "")
		return
	}
	if err != nil {
		upstreamOr500(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type regenerateBody struct {
	Count     int           `json:"count"`
	Generated time.Time     `json:"generated"`
	Forced    bool          `json:"forced"`
	Stats     *routes.Stats `json:"stats,omitempty"`
}

func (h *handlers) regenerate(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	if force && h.Cache != nil {
		if err := h.Cache.Invalidate(); err != nil {
			upstreamOr500(w, err)
			return
		}
	}
	m, err := h.Routes.Regenerate(r.Context())
	if err != nil {
		upstreamOr500(w, err)
		return
	}
	body := regenerateBody{Count: m.Count(), Generated: m.GeneratedAt(), Forced: force}
	if s, ok := h.Routes.Stats(); ok {
		body.Stats = s
	}
	writeJSON(w, http.StatusOK, body)
}

type healthBody struct {
	Status    string         `json:"status"`
	Manifest  bool           `json:"manifest"`
	Routes    int            `json:"routes"`
	Generated *time.Time     `json:"generated,omitempty"`
	Caches    []cache.Status `json:"caches,omitempty"`
}

// health always answers 200; a missing manifest is reported, not failed.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	body := healthBody{Status: "ok"}
	if m, err := h.Routes.Manifest(); err == nil {
		g := m.GeneratedAt()
		body.Manifest, body.Routes, body.Generated = true, m.Count(), &g
	} else {
		body.Status = "warming"
	}
	if h.Cache != nil {
		body.Caches = h.Cache.Status()
	}
	writeJSON(w, http.StatusOK, body)
}
