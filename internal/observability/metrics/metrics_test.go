package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New("test-service")
	handler := m.Middleware("test-service", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}

	scrape := scrapeMetrics(t, m)
	if !strings.Contains(scrape, `chargedocs_http_requests_total{method="GET",path="/v1/documents",service="test-service",status="202"} 1`) {
		t.Fatalf("request counter missing from scrape:\n%s", scrape)
	}
}

func TestObserveBackendRequestOutcomes(t *testing.T) {
	m := New("test-service")
	m.ObserveBackendRequest("test-service", "documents.list", 10*time.Millisecond, nil)
	m.ObserveBackendRequest("test-service", "documents.list", 10*time.Millisecond, errors.New("boom"))

	scrape := scrapeMetrics(t, m)
	if !strings.Contains(scrape, `chargedocs_backend_requests_total{operation="documents.list",outcome="ok",service="test-service"} 1`) {
		t.Fatalf("ok outcome missing:\n%s", scrape)
	}
	if !strings.Contains(scrape, `chargedocs_backend_requests_total{operation="documents.list",outcome="error",service="test-service"} 1`) {
		t.Fatalf("error outcome missing:\n%s", scrape)
	}
}

func TestNormalizePathCollapsesDocumentNames(t *testing.T) {
	cases := map[string]string{
		"/v1/documents":                      "/v1/documents",
		"/v1/documents/grouped":              "/v1/documents/grouped",
		"/v1/documents/search":               "/v1/documents/search",
		"/v1/documents/refresh":              "/v1/documents/refresh",
		"/v1/documents/20250115_KTPH_x.jpg":  "/v1/documents/{image_name}",
		"/v1/documents/a/stickers/0123":      "/v1/documents/{image_name}",
		"/v1/upload/submit":                  "/v1/upload/submit",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func scrapeMetrics(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	return rec.Body.String()
}
