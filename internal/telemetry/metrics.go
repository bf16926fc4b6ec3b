package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tryon_submissions_total", Help: "Job submissions by terminal status"},
		[]string{"status"},
	)
	GenerationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tryon_generation_seconds",
		Help:    "Wall-clock duration of generation calls including retries",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
	})
	SignedURLsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tryon_signed_urls_issued_total",
		Help: "Signed URLs minted across view, download, and share",
	})
	RateLimitRejects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tryon_rate_limit_rejects_total",
		Help: "Requests rejected by the rate limiter",
	})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			SubmissionsTotal,
			GenerationSeconds,
			SignedURLsIssued,
			RateLimitRejects,
		)
	})
	return promhttp.Handler()
}
