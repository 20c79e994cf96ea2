package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter(t *testing.T) (*Metrics, http.Handler) {
	t.Helper()
	m, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/artigo/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.Handle("/metrics", m.Handler())
	return m, r
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m, h := newRouter(t)

	for _, path := range []string{"/artigo/1", "/artigo/2", "/boom", "/nope"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	tests := []struct {
		path, status string
		want         float64
	}{
		{"/artigo/{id}", "200", 2},
		{"/boom", "500", 1},
		{"unmatched", "404", 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.requestCount.WithLabelValues("GET", tt.path, tt.status))
		if got != tt.want {
			t.Errorf("http_requests_total{path=%q,status=%q} = %v, want %v", tt.path, tt.status, got, tt.want)
		}
	}
}

func TestMiddlewareSkipsMetrics(t *testing.T) {
	m, h := newRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", w.Code)
	}
	if n := testutil.CollectAndCount(m.requestCount); n != 0 {
		t.Errorf("expected no request series after scraping /metrics, got %d", n)
	}
}

func TestHandlerExposesOrphanCounter(t *testing.T) {
	m, h := newRouter(t)
	m.OrphanedObjects.Inc()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(w.Body)

	if !strings.Contains(string(body), "upload_orphaned_objects_total 1") {
		t.Errorf("orphan counter missing from /metrics output")
	}
}
