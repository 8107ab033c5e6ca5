package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	detectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bastion_detections_total",
		Help: "Total number of attack detections by family",
	}, []string{"family"})
	blockedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bastion_blocked_requests_total",
		Help: "Total number of requests blocked by the defense layer",
	})
	rateLimitOverflowTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bastion_rate_limit_overflow_total",
		Help: "Total number of rate limit window overflows",
	})
	bruteforceDeniedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bastion_bruteforce_denied_total",
		Help: "Total number of login attempts denied by the brute-force guard",
	})
	sessionViolationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bastion_session_violations_total",
		Help: "Total number of session fingerprint violations",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(detectionsTotal, blockedTotal, rateLimitOverflowTotal, bruteforceDeniedTotal, sessionViolationsTotal)
}

// IncDetection increments the detection counter for a family.
func IncDetection(family string) { detectionsTotal.WithLabelValues(family).Inc() }

// IncBlocked increments the blocked requests counter.
func IncBlocked() { blockedTotal.Inc() }

// IncRateLimitOverflow increments the rate limit overflow counter.
func IncRateLimitOverflow() { rateLimitOverflowTotal.Inc() }

// IncBruteforceDenied increments the brute-force denial counter.
func IncBruteforceDenied() { bruteforceDeniedTotal.Inc() }

// IncSessionViolation increments the session hijack counter.
func IncSessionViolation() { sessionViolationsTotal.Inc() }
