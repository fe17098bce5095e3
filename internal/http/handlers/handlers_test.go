package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/middleware"
)

type fakeDesigner struct {
	mu       sync.Mutex
	design   domain.DesignRequest
	viz      domain.VisualizationRequest
	async    []domain.VisualizationRequest
	result   domain.VisualizationResult
	validate bool
}

func (f *fakeDesigner) GenerateDesign(ctx context.Context, req domain.DesignRequest) (domain.DesignSuggestion, error) {
	f.mu.Lock()
	f.design = req
	f.mu.Unlock()
	if f.validate {
		if err := req.Validate(); err != nil {
			return domain.DesignSuggestion{}, err
		}
	}
	return domain.DesignSuggestion{ID: "d-1", Title: "Cozy Room", Source: domain.SourceModel, Hashtags: domain.EmptyHashtags()}, nil
}

func (f *fakeDesigner) GenerateVisualization(ctx context.Context, req domain.VisualizationRequest) domain.VisualizationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viz = req
	return f.result
}

func (f *fakeDesigner) VisualizeAsync(ctx context.Context, req domain.VisualizationRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.async = append(f.async, req)
}

func newTestApp(f *fakeDesigner) http.Handler {
	app := NewApp(f, zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/design", app.Design)
	mux.HandleFunc("/v1/visualizations", app.Visualize)
	mux.HandleFunc("/v1/healthz", app.Health)
	return middleware.I18N("tr", nil)(mux)
}

func TestDesignFormRequest(t *testing.T) {
	f := &fakeDesigner{validate: true}
	form := url.Values{
		"room_type":          {"Salon"},
		"design_style":       {"Modern"},
		"notes":              {"pencere kuzeyde"},
		"width":              {"400"},
		"length":             {"500"},
		"price":              {"15000"},
		"color_info":         {`{"dominant_color":"#AABBCC","color_name":"Mavi"}`},
		"product_categories": {`[{"name":"Koltuk"},{"name":"Halı"}]`},
		"connection_id":      {"conn-1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/design", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	newTestApp(f).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["design_id"] != "d-1" || body["visualization_queued"] != true {
		t.Fatalf("unexpected body %v", body)
	}
	got := f.design
	if got.Width == nil || *got.Width != 400 || got.Height != nil {
		t.Fatalf("dimensions not parsed: %+v", got)
	}
	if got.PriceCeiling == nil || *got.PriceCeiling != 15000 {
		t.Fatalf("price not parsed")
	}
	if got.Color == nil || got.Color.Name != "Mavi" {
		t.Fatalf("color_info not parsed: %+v", got.Color)
	}
	if names := got.Categories.Names(); len(names) != 2 || names[1] != "Halı" {
		t.Fatalf("categories = %v", names)
	}
	if got.Locale != "tr" {
		t.Fatalf("locale = %q", got.Locale)
	}
	if len(f.async) != 1 || f.async[0].DesignID != "d-1" || f.async[0].ConnectionID != "conn-1" {
		t.Fatalf("background render not started: %+v", f.async)
	}
}

func TestDesignJSONRequestWithoutVisualization(t *testing.T) {
	f := &fakeDesigner{validate: true}
	body := `{"room_type":"Yatak Odası","design_style":"Bohem","connection_id":"conn-2","visualize":false,"product_categories":"rahat bir koltuk"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/design", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept-Language", "en-US")
	rec := httptest.NewRecorder()
	newTestApp(f).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(f.async) != 0 {
		t.Fatalf("visualize=false still queued a render")
	}
	if f.design.Categories == nil || f.design.Categories.Custom != "rahat bir koltuk" {
		t.Fatalf("custom categories = %+v", f.design.Categories)
	}
	if f.design.Locale != "en" {
		t.Fatalf("locale = %q", f.design.Locale)
	}
}

func TestDesignRejectsInvalid(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantMessage string
	}{
		{name: "missing style", contentType: "application/json", body: `{"room_type":"Salon"}`, wantMessage: "design_style is required"},
		{name: "bad json", contentType: "application/json", body: `{"room_type":`, wantMessage: "invalid JSON payload"},
		{name: "bad width", contentType: "application/x-www-form-urlencoded", body: "room_type=Salon&design_style=Modern&width=wide", wantMessage: "width must be an integer"},
		{name: "negative width", contentType: "application/x-www-form-urlencoded", body: "room_type=Salon&design_style=Modern&width=-3", wantMessage: "width must be positive"},
		{name: "bad color", contentType: "application/x-www-form-urlencoded", body: "room_type=Salon&design_style=Modern&color_info=red", wantMessage: "color_info must be a JSON object"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeDesigner{validate: true}
			req := httptest.NewRequest(http.MethodPost, "/v1/design", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			rec := httptest.NewRecorder()
			newTestApp(f).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != "invalid_request" || resp.Message != tc.wantMessage {
				t.Fatalf("got %+v, want message %q", resp, tc.wantMessage)
			}
		})
	}
}

func TestVisualizeReturnsResult(t *testing.T) {
	f := &fakeDesigner{result: domain.VisualizationResult{MoodBoardID: "mb-1", Success: false, ErrorMessage: "Görsel oluşturulamadı"}}
	body := `{"room_type":"Salon","design_style":"Modern","connection_id":"conn-3","title":"Cozy"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/visualizations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newTestApp(f).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res domain.VisualizationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.MoodBoardID != "mb-1" || res.Success {
		t.Fatalf("unexpected result %+v", res)
	}
	if f.viz.ConnectionID != "conn-3" || f.viz.Locale != "tr" {
		t.Fatalf("request not forwarded: %+v", f.viz)
	}
}

func TestVisualizeRejectsMissingFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/visualizations", strings.NewReader(`{"room_type":"Salon"}`))
	rec := httptest.NewRecorder()
	newTestApp(&fakeDesigner{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name  string
		ready func(context.Context) error
		want  int
	}{
		{name: "no probe", want: http.StatusOK},
		{name: "ready", ready: func(context.Context) error { return nil }, want: http.StatusOK},
		{name: "db down", ready: func(context.Context) error { return errors.New("dial tcp: refused") }, want: http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := NewApp(&fakeDesigner{}, zerolog.Nop())
			app.Ready = tc.ready
			rec := httptest.NewRecorder()
			app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestFormIntRejectsGarbage(t *testing.T) {
	for _, v := range []string{"abc", "1.5", "12cm"} {
		if _, err := formInt(v, "height"); err == nil {
			t.Fatalf("formInt(%q) accepted", v)
		} else if err.Error() != fmt.Sprintf("%s must be an integer", "height") {
			t.Fatalf("unexpected error %v", err)
		}
	}
}

func TestOpenAPIDocument(t *testing.T) {
	app := NewApp(&fakeDesigner{}, zerolog.Nop())
	rec := httptest.NewRecorder()
	app.OpenAPIJSON(rec, httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil))
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("openapi.json is not valid JSON: %v", err)
	}
	for _, path := range []string{"/v1/design", "/v1/visualizations", "/v1/ws"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Fatalf("openapi.json misses %s", path)
		}
	}
}

func TestOpenAPIDocsPage(t *testing.T) {
	app := NewApp(&fakeDesigner{}, zerolog.Nop())
	rec := httptest.NewRecorder()
	app.OpenAPIDocs(rec, httptest.NewRequest(http.MethodGet, "/v1/docs", nil))
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{`spec-url="/v1/openapi.json"`, `lang="tr"`, "DekoAssistant"} {
		if !strings.Contains(body, want) {
			t.Fatalf("docs page misses %s", want)
		}
	}
}
