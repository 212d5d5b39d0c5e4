package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORSPreflight(t *testing.T) {
	_, handler := setup(t)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/upload-csv", nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin %q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatalf("allow-methods header missing")
	}
}

func TestCORSHeadersOnNormalResponse(t *testing.T) {
	_, handler := setup(t)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin %q", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	_, handler := setup(t)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, handler := setup(t)

	// generate one observation first
	warm := httptest.NewRecorder()
	handler.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics status %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "ancientdna_http_requests_total") {
		t.Fatalf("request counter missing from exposition:\n%s", body)
	}
	if !strings.Contains(body, "ancientdna_http_request_duration_seconds") {
		t.Fatalf("duration histogram missing from exposition")
	}
}

func TestHealthz(t *testing.T) {
	_, handler := setup(t)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"status"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}
