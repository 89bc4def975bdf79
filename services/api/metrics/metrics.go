package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "monitora_"

	ResultSuccess = "success"
	ResultError   = "error"
	ResultTimeout = "timeout"
)

var (
	registerOnce sync.Once

	levelFetchTotal   *prometheus.CounterVec
	levelFetchLatency *prometheus.HistogramVec
	levelFallback     *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
)

// PoolStats reports the number of connections currently in use.
type PoolStats func() (acquired, total int32)

// Init registers the service instruments. stats may be nil when the
// database is not configured.
func Init(stats PoolStats) {
	registerOnce.Do(func() {
		levelFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "level_fetch_total",
				Help: "Total level fetches by source and result",
			},
			[]string{"source", "result"},
		)
		levelFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "level_fetch_latency_seconds",
				Help:    "Level fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		)
		levelFallback = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "level_fallback_total",
				Help: "Level responses served from sample data by reason",
			},
			[]string{"source", "reason"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status",
			},
			[]string{"route", "status"},
		)

		prometheus.MustRegister(levelFetchTotal, levelFetchLatency, levelFallback, httpRequests)

		if stats != nil {
			registerPoolMetrics(stats)
		}
	})
}

func registerPoolMetrics(stats PoolStats) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_pool_acquired_conns",
			Help: "Database connections currently in use",
		},
		func() float64 {
			acquired, _ := stats()
			return float64(acquired)
		},
	))
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_pool_total_conns",
			Help: "Database connections currently open",
		},
		func() float64 {
			_, total := stats()
			return float64(total)
		},
	))
}

// ObserveLevelFetch records one level fetch against the backend.
func ObserveLevelFetch(source, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if levelFetchTotal != nil {
		levelFetchTotal.WithLabelValues(source, result).Inc()
	}
	if levelFetchLatency != nil {
		levelFetchLatency.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// IncLevelFallback counts a response served from sample data.
func IncLevelFallback(source, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if levelFallback != nil {
		levelFallback.WithLabelValues(source, reason).Inc()
	}
}

// IncHTTPRequest counts a served request.
func IncHTTPRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
