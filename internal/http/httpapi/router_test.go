package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/http/handlers"
	"dekoassistant/internal/observability/metrics"
)

type stubDesigner struct{}

func (stubDesigner) GenerateDesign(ctx context.Context, req domain.DesignRequest) (domain.DesignSuggestion, error) {
	if err := req.Validate(); err != nil {
		return domain.DesignSuggestion{}, err
	}
	return domain.DesignSuggestion{ID: "d-1", Hashtags: domain.EmptyHashtags()}, nil
}

func (stubDesigner) GenerateVisualization(ctx context.Context, req domain.VisualizationRequest) domain.VisualizationResult {
	return domain.VisualizationResult{MoodBoardID: "mb-1", Success: true}
}

func (stubDesigner) VisualizeAsync(ctx context.Context, req domain.VisualizationRequest) {}

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	opts.Logger = zerolog.Nop()
	return NewRouter(handlers.NewApp(stubDesigner{}, zerolog.Nop()), opts)
}

func TestRouterRoutes(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "visualizations"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "visualizations", "mb-1.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	h := newTestRouter(t, Options{Metrics: metrics.New(), StaticDir: dir, RateLimitPerMin: 100})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/v1/healthz", want: http.StatusOK},
		{name: "design", method: http.MethodPost, path: "/v1/design", body: `{"room_type":"Salon","design_style":"Modern"}`, want: http.StatusOK},
		{name: "visualization", method: http.MethodPost, path: "/v1/visualizations", body: `{"room_type":"Salon","design_style":"Modern"}`, want: http.StatusOK},
		{name: "openapi", method: http.MethodGet, path: "/v1/openapi.json", want: http.StatusOK},
		{name: "docs", method: http.MethodGet, path: "/v1/docs", want: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{name: "static file", method: http.MethodGet, path: "/static/visualizations/mb-1.png", want: http.StatusOK},
		{name: "no ws without hub", method: http.MethodGet, path: "/v1/ws", want: http.StatusNotFound},
		{name: "design wrong method", method: http.MethodGet, path: "/v1/design", want: http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
			}
		})
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	h := newTestRouter(t, Options{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}
}

func TestRouterRateLimitsDesign(t *testing.T) {
	h := newTestRouter(t, Options{RateLimitPerMin: 1})
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/v1/design", strings.NewReader(`{"room_type":"Salon","design_style":"Modern"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.5:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := send(); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", code)
	}
}
