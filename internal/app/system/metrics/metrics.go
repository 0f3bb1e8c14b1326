// Package metrics exposes Prometheus counters for the HTTP layer and the
// membership and bulletin services. Every method is safe on a nil *Metrics,
// so tests and tools can run without a registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sangathan"

// Metrics owns a private registry and the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	logins       *prometheus.CounterVec
	reviews      *prometheus.CounterVec
	notices      prometheus.Counter
	posts        prometheus.Counter
	swept        prometheus.Counter
	assist       *prometheus.CounterVec
	mediaBytes   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"route", "method"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_decisions_total",
			Help:      "Admin review decisions by kind and decision.",
		}, []string{"kind", "decision"}),
		notices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_created_total",
			Help:      "Notices created, including meeting announcements.",
		}),
		posts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_created_total",
			Help:      "Regular feed posts created.",
		}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_posts_removed_total",
			Help:      "Posts removed by the retention sweep.",
		}),
		assist: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assist_calls_total",
			Help:      "Generative assistance calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		mediaBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_stored_bytes_total",
			Help:      "Bytes written to media storage.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.logins, m.reviews,
		m.notices, m.posts, m.swept, m.assist, m.mediaBytes,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RegisterGauge exposes fn as a gauge sampled at scrape time.
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) error {
	if m == nil {
		return nil
	}
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Middleware records request counts and latency keyed by the chi route
// pattern, so IDs in paths do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Login outcomes.
const (
	LoginOK        = "ok"
	LoginNotFound  = "not_found"
	LoginSuspended = "suspended"
	LoginDeleted   = "deleted"
	LoginLimited   = "rate_limited"
)

func (m *Metrics) Login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Review(kind, decision string) {
	if m != nil {
		m.reviews.WithLabelValues(kind, decision).Inc()
	}
}

func (m *Metrics) NoticeCreated() {
	if m != nil {
		m.notices.Inc()
	}
}

func (m *Metrics) PostCreated() {
	if m != nil {
		m.posts.Inc()
	}
}

func (m *Metrics) PostsSwept(n int64) {
	if m != nil && n > 0 {
		m.swept.Add(float64(n))
	}
}

func (m *Metrics) Assist(op string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "fallback"
	}
	m.assist.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) MediaStored(n int64) {
	if m != nil && n > 0 {
		m.mediaBytes.Add(float64(n))
	}
}
