package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000}

var (
	CacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "expertapi_cache_requests_total",
		Help: "Cache cell reads by result (hit, miss, stale)",
	}, []string{"cell", "result"})
	CacheRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "expertapi_cache_refresh_total",
		Help: "Cache cell refreshes by status",
	}, []string{"cell", "status"})
	CMSFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "expertapi_cms_fetch_total",
		Help: "Full collection fetches against the content store",
	}, []string{"collection", "status"})
	CMSFetchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "expertapi_cms_fetch_duration_ms",
		Help:    "Full collection fetch duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"collection"})
	GenerationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "expertapi_routes_generation_total",
		Help: "Route manifest generations by status",
	}, []string{"status"})
	GenerationDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "expertapi_routes_generation_duration_ms",
		Help:    "Route manifest generation duration in milliseconds",
		Buckets: durationBuckets,
	})
	ManifestRoutes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "expertapi_routes_manifest_routes",
		Help: "Routes in the current manifest by kind",
	}, []string{"kind"})
	ExpertQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "expertapi_expert_queries_total",
		Help: "Expert queries by status",
	}, []string{"status"})
	ExpertQueryDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "expertapi_expert_query_duration_ms",
		Help:    "Expert query duration in milliseconds",
		Buckets: durationBuckets,
	})
	MirrorItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "expertapi_mirror_items_total",
		Help: "Items written to the postgres mirror",
	}, []string{"collection"})
)

func init() {
	prometheus.MustRegister(CacheRequestsTotal)
	prometheus.MustRegister(CacheRefreshTotal)
	prometheus.MustRegister(CMSFetchTotal)
	prometheus.MustRegister(CMSFetchDurationMs)
	prometheus.MustRegister(GenerationTotal)
	prometheus.MustRegister(GenerationDurationMs)
	prometheus.MustRegister(ManifestRoutes)
	prometheus.MustRegister(ExpertQueriesTotal)
	prometheus.MustRegister(ExpertQueryDurationMs)
	prometheus.MustRegister(MirrorItemsTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
