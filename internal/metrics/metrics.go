package metrics

import (
	"database/sql"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the Memora backend. Collectors
// exist from package init so callers never see nil; Register exposes them.
var Metrics = struct {
	PollVotesTotal        *prometheus.CounterVec
	UpvotesTotal          *prometheus.CounterVec
	ResponsesCreatedTotal *prometheus.CounterVec
	RejectionsTotal       *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
	RequestsInFlight      prometheus.Gauge
	CacheHits             prometheus.Counter
	CacheMisses           prometheus.Counter
}{
	PollVotesTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memora_poll_votes_total",
			Help: "Poll vote transitions, by kind (cast, switch, noop, retract).",
		},
		[]string{"transition"},
	),
	UpvotesTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memora_upvotes_total",
			Help: "Response upvote toggles, by action (add, remove).",
		},
		[]string{"action"},
	),
	ResponsesCreatedTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memora_responses_created_total",
			Help: "Responses created, by kind (top_level, reply).",
		},
		[]string{"kind"},
	),
	RejectionsTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memora_rejections_total",
			Help: "Core operations rejected, by reason.",
		},
		[]string{"reason"},
	),
	RequestDuration: prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memora_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by route, method and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	),
	RequestsInFlight: prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "memora_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	),
	CacheHits: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memora_thread_cache_hits_total",
			Help: "Thread cache hits.",
		},
	),
	CacheMisses: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "memora_thread_cache_misses_total",
			Help: "Thread cache misses.",
		},
	),
}

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
// When db is non-nil, connection pool gauges are registered too.
func Register(db *sql.DB) {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			Metrics.PollVotesTotal,
			Metrics.UpvotesTotal,
			Metrics.ResponsesCreatedTotal,
			Metrics.RejectionsTotal,
			Metrics.RequestDuration,
			Metrics.RequestsInFlight,
			Metrics.CacheHits,
			Metrics.CacheMisses,
		)

		// DB pool gauges read live stats from database/sql
		if db != nil {
			prometheus.MustRegister(
				prometheus.NewGaugeFunc(
					prometheus.GaugeOpts{
						Name: "memora_db_connection_pool_active",
						Help: "Number of active database connections.",
					},
					func() float64 { return float64(db.Stats().InUse) },
				),
				prometheus.NewGaugeFunc(
					prometheus.GaugeOpts{
						Name: "memora_db_connection_pool_idle",
						Help: "Number of idle database connections.",
					},
					func() float64 { return float64(db.Stats().Idle) },
				),
			)
		}
	})
}
