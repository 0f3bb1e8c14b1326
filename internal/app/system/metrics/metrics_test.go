package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Login(LoginOK)
	m.Review("signup", "approve")
	m.NoticeCreated()
	m.PostsSwept(3)
	m.Assist("enhance", false)
	if err := m.RegisterGauge("x", "x", func() float64 { return 1 }); err != nil {
		t.Errorf("RegisterGauge on nil: %v", err)
	}
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}

func TestCounters(t *testing.T) {
	m := New()
	m.Login(LoginOK)
	m.Login(LoginOK)
	m.Login(LoginSuspended)
	m.PostsSwept(4)

	if got := testutil.ToFloat64(m.logins.WithLabelValues(LoginOK)); got != 2 {
		t.Errorf("logins ok: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.swept); got != 4 {
		t.Errorf("swept: got %v, want 4", got)
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/directory/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/directory/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/directory/def", nil))

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/directory/{id}", "GET", "404")); got != 2 {
		t.Errorf("requests: got %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "sangathan_http_requests_total") {
		t.Error("exposition missing request counter")
	}
}
