// Package metrics registers the service's Prometheus collectors and exposes
// helpers to record them, an HTTP middleware and the /metrics handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mailmerge"

// Outcome label values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var (
	PreviewsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "previews_created_total",
			Help:      "Total number of preview records stored",
		},
	)

	PreviewsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "previews_swept_total",
			Help:      "Total number of expired preview records removed by the sweeper",
		},
	)

	// call: body, subject
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Content generation call duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
		[]string{"call", "status"},
	)

	TestEmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "test_emails_total",
			Help:      "Total number of test email dispatch attempts",
		},
		[]string{"status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"method", "path", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return StatusFailed
	}
	return StatusSuccess
}

// RecordGeneration observes one generation call.
func RecordGeneration(call string, err error, duration time.Duration) {
	GenerationDuration.WithLabelValues(call, status(err)).Observe(duration.Seconds())
}

// IncrementTestEmail counts one dispatch attempt.
func IncrementTestEmail(err error) {
	TestEmailsSent.WithLabelValues(status(err)).Inc()
}

func IncrementPreviewsCreated() {
	PreviewsCreated.Inc()
}

// AddPreviewsSwept is a preview.Sweeper hook.
func AddPreviewsSwept(n int64, err error) {
	if err == nil && n > 0 {
		PreviewsSwept.Add(float64(n))
	}
}

// RecordHTTPRequestDuration observes one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// Middleware records request durations labelled by the matched chi route
// pattern, so ids in paths never explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		RecordHTTPRequestDuration(r.Method, path, strconv.Itoa(code), time.Since(start))
	})
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
