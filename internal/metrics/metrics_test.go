package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCallNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCall("get_quiz", "ok", time.Millisecond)
}

func TestObserveCallCounts(t *testing.T) {
	m := New()
	m.ObserveCall("submit_answer", "ok", 10*time.Millisecond)
	m.ObserveCall("submit_answer", "error", 10*time.Millisecond)
	m.ObserveCall("submit_answer", "ok", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.APICalls.WithLabelValues("submit_answer", "ok")); got != 2 {
		t.Fatalf("ok calls: want=2 got=%v", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/quiz/{quizID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/metrics", m.Handler().ServeHTTP)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quiz/42", nil))
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/quiz/{quizID}", "418")); got != 1 {
		t.Fatalf("route counter: want=1 got=%v", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics output missing http_requests_total")
	}
}
