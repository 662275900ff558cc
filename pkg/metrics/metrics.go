package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "loyalty",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	Checkouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loyalty",
		Name:      "checkouts_total",
		Help:      "Guest checkout submissions by outcome.",
	}, []string{"result"})

	BonusLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loyalty",
		Name:      "bonus_lookups_total",
		Help:      "Bonus balance lookups by outcome.",
	}, []string{"result"})

	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loyalty",
		Name:      "auth_attempts_total",
		Help:      "Staff authentication attempts by outcome.",
	}, []string{"result"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "loyalty",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
