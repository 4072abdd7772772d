// Package metrics holds the Prometheus collectors for the missionhub server.
package metrics

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	LikesTotal       *prometheus.CounterVec
	SubmissionsTotal *prometheus.CounterVec
	ReviewsTotal     *prometheus.CounterVec
	FeedSourceErrors *prometheus.CounterVec
	FeedBuild        prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	WSClients        prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers every collector on reg. A nil pool skips the pool gauges.
// Passing a fresh prometheus.NewRegistry keeps tests independent.
func New(reg *prometheus.Registry, pool *pgxpool.Pool) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "missionhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by route, method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "missionhub_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		}),
		LikesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "missionhub_like_toggles_total",
			Help: "Like toggles by result (liked, unliked, rejected).",
		}, []string{"result"}),
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "missionhub_submissions_total",
			Help: "Submission writes by status.",
		}, []string{"status"}),
		ReviewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "missionhub_reviews_total",
			Help: "Moderation decisions by resulting status.",
		}, []string{"status"}),
		FeedSourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "missionhub_feed_source_errors_total",
			Help: "Community feed sources that failed and degraded to empty.",
		}, []string{"source"}),
		FeedBuild: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "missionhub_feed_build_duration_seconds",
			Help:    "Time to fetch and merge the community feed.",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "missionhub_cache_hits_total",
			Help: "Redis cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "missionhub_cache_misses_total",
			Help: "Redis cache misses.",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "missionhub_ws_clients",
			Help: "Connected activity websocket clients.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.RequestDuration,
		m.RequestsInFlight,
		m.LikesTotal,
		m.SubmissionsTotal,
		m.ReviewsTotal,
		m.FeedSourceErrors,
		m.FeedBuild,
		m.CacheHits,
		m.CacheMisses,
		m.WSClients,
	)

	if pool != nil {
		reg.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "missionhub_db_pool_acquired",
				Help: "Acquired database connections.",
			}, func() float64 { return float64(pool.Stat().AcquiredConns()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "missionhub_db_pool_idle",
				Help: "Idle database connections.",
			}, func() float64 { return float64(pool.Stat().IdleConns()) }),
		)
	}

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
