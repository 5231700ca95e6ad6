package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vertraege", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vertraege", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	StoreSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vertraege", Name: "store_saves_total", Help: "Number of successful durable category saves."},
		[]string{"category"},
	)
	StoreSaveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vertraege", Name: "store_save_failures_total", Help: "Number of failed durable category saves."},
		[]string{"category"},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vertraege", Name: "uploads_total", Help: "Number of upload handshakes by flow and outcome."},
		[]string{"flow", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(StoreSaves)
	reg.MustRegister(StoreSaveFailures)
	reg.MustRegister(Uploads)
}
