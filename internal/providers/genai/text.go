package genai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	sdk "google.golang.org/genai"

	"dekoassistant/internal/catalog"
	"dekoassistant/internal/domain"
	"dekoassistant/internal/observability/metrics"
	"dekoassistant/internal/prompt"
)

// DefaultMaxToolIterations bounds the tool loop. Reaching it means the model
// kept asking for searches; normal runs finish in two or three turns.
const DefaultMaxToolIterations = 10

type TextOptions struct {
	Options
	MaxToolIterations int
	Breaker           BreakerSettings
}

// TextClient is safe for concurrent use.
type TextClient struct {
	models  ContentGenerator
	model   string
	maxIter int
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[*sdk.GenerateContentResponse]
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewTextClient wraps models. A nil models value produces a client whose
// calls fail with domain.ErrUpstreamUnavailable.
func NewTextClient(models ContentGenerator, opts TextOptions) *TextClient {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultTextModel
	}
	maxIter := opts.MaxToolIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxToolIterations
	}
	return &TextClient{
		models:  models,
		model:   model,
		maxIter: maxIter,
		timeout: opts.Timeout,
		breaker: newBreaker[*sdk.GenerateContentResponse]("genai-text", opts.Breaker, opts.Logger, opts.Metrics),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

func (c *TextClient) Available() bool { return c != nil && c.models != nil }

func (c *TextClient) Model() string { return c.model }

// Generate sends prompt as a single turn and returns the reply text.
func (c *TextClient) Generate(ctx context.Context, text string) (string, error) {
	resp, err := c.call(ctx, "text", []*sdk.Content{userText(text)}, nil)
	if err != nil {
		return "", err
	}
	reply := contentText(firstContent(resp))
	if reply == "" {
		return "", domain.ErrEmptyResponse
	}
	return reply, nil
}

// ToolScope is what a tool-calling run may search and how.
type ToolScope struct {
	Searcher     catalog.Searcher
	PriceCeiling *float64
	// DefaultLimit applies when the model passes no limit. Zero keeps
	// catalog.DefaultLimit.
	DefaultLimit int
}

// ToolRun summarizes a tool-calling generation.
type ToolRun struct {
	Text       string
	Iterations int
	Searches   int
	CapReached bool
	// Found holds every distinct catalog product returned to the model.
	Found []domain.Product
}

// GenerateWithTools runs the find_product loop. Each model turn that asks for
// searches is answered in the same conversation; the loop ends on the first
// turn without calls or at the iteration cap. The latest text seen is
// returned; ErrEmptyResponse means no turn produced any.
func (c *TextClient) GenerateWithTools(ctx context.Context, text string, scope ToolScope) (ToolRun, error) {
	run := ToolRun{}
	cfg := &sdk.GenerateContentConfig{
		Tools: []*sdk.Tool{{FunctionDeclarations: []*sdk.FunctionDeclaration{findProductDeclaration()}}},
	}
	contents := []*sdk.Content{userText(text)}
	seen := make(map[string]struct{})

	finished := false
	for iter := 1; iter <= c.maxIter; iter++ {
		resp, err := c.call(ctx, "tools", contents, cfg)
		if err != nil {
			c.metrics.RecordToolLoop(run.Iterations, false)
			return run, err
		}
		run.Iterations = iter

		content := firstContent(resp)
		if reply := contentText(content); reply != "" {
			run.Text = reply
		}
		calls := functionCalls(content)
		if len(calls) == 0 {
			finished = true
			break
		}

		contents = append(contents, &sdk.Content{Role: "model", Parts: content.Parts})
		responses := make([]*sdk.Part, 0, len(calls))
		for _, call := range calls {
			payload := c.runTool(ctx, call, scope, &run, seen)
			responses = append(responses, &sdk.Part{FunctionResponse: &sdk.FunctionResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: payload,
			}})
		}
		contents = append(contents, &sdk.Content{Role: "user", Parts: responses})
	}

	if !finished {
		run.CapReached = true
		c.logger.Warn().
			Int("iterations", run.Iterations).
			Int("searches", run.Searches).
			Msg("genai: tool loop reached iteration cap")
	}
	c.metrics.RecordToolLoop(run.Iterations, run.CapReached)

	if run.Text == "" {
		return run, domain.ErrEmptyResponse
	}
	return run, nil
}

func (c *TextClient) call(ctx context.Context, kind string, contents []*sdk.Content, cfg *sdk.GenerateContentConfig) (*sdk.GenerateContentResponse, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: text model not configured", domain.ErrUpstreamUnavailable)
	}
	callCtx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*sdk.GenerateContentResponse, error) {
		return c.models.GenerateContent(callCtx, c.model, contents, cfg)
	})
	c.metrics.RecordUpstream(kind, time.Since(start), err)
	if err != nil {
		if isBreakerRejection(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
		return nil, upstreamError(ctx, "generate content", err)
	}
	return resp, nil
}

func (c *TextClient) runTool(ctx context.Context, call *sdk.FunctionCall, scope ToolScope, run *ToolRun, seen map[string]struct{}) map[string]any {
	if call.Name != prompt.FindProductTool {
		c.metrics.RecordToolCall(call.Name, "unknown")
		return map[string]any{"status": "error", "message": "unknown tool " + call.Name}
	}

	q := queryFromArgs(call.Args)
	q.MaxPrice = scope.PriceCeiling
	if q.Limit == nil && scope.DefaultLimit > 0 {
		limit := scope.DefaultLimit
		q.Limit = &limit
	}
	echo := map[string]any{"category": q.Category, "style": q.Style, "color": q.Color}

	if !domain.IsProductCategory(q.Category) {
		c.metrics.RecordToolCall(call.Name, "not_found")
		return map[string]any{"status": "not_found", "query": echo, "message": "Bilinmeyen kategori."}
	}
	if scope.Searcher == nil {
		c.metrics.RecordToolCall(call.Name, "not_found")
		return map[string]any{"status": "not_found", "query": echo, "message": "Katalog kullanılamıyor."}
	}

	run.Searches++
	products, err := scope.Searcher.Search(ctx, q)
	if err != nil {
		c.logger.Warn().Err(err).Str("category", q.Category).Msg("genai: catalog search failed")
		c.metrics.RecordToolCall(call.Name, "error")
		return map[string]any{"status": "error", "query": echo, "message": "Katalog araması başarısız oldu."}
	}
	if len(products) == 0 {
		c.metrics.RecordToolCall(call.Name, "not_found")
		return map[string]any{"status": "not_found", "query": echo, "message": "Bu kriterlere uygun ürün bulunamadı."}
	}

	items := make([]map[string]any, 0, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; !dup {
			seen[p.ID] = struct{}{}
			run.Found = append(run.Found, p)
		}
		item := map[string]any{
			"product_id": p.ID,
			"name":       p.Name,
			"category":   p.Category,
			"style":      p.Style,
			"color":      p.Color,
			"image_url":  p.ImageURL,
		}
		if p.Price != nil {
			item["price"] = *p.Price
		}
		if p.Description != "" {
			item["description"] = p.Description
		}
		items = append(items, item)
	}
	c.metrics.RecordToolCall(call.Name, "found")
	return map[string]any{"status": "found", "count": len(items), "products": items}
}

func queryFromArgs(args map[string]any) catalog.Query {
	q := catalog.Query{
		Category: stringArg(args, "category"),
		Style:    stringArg(args, "style"),
		Color:    stringArg(args, "color"),
	}
	if v, ok := args["limit"]; ok {
		if n, ok := intArg(v); ok {
			q.Limit = &n
		}
	}
	return q
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intArg(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(math.Round(n)), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

func findProductDeclaration() *sdk.FunctionDeclaration {
	return &sdk.FunctionDeclaration{
		Name:        prompt.FindProductTool,
		Description: "Ürün kataloğunda kategoriye göre ürün arar. Stil veya renk verilirse ikisinden birine uyan ürünler döner.",
		Parameters: &sdk.Schema{
			Type: sdk.TypeObject,
			Properties: map[string]*sdk.Schema{
				"category": {
					Type:        sdk.TypeString,
					Description: "Ürün kategorisi.",
					Enum:        domain.ProductCategories,
				},
				"style": {
					Type:        sdk.TypeString,
					Description: "İstenen tasarım stili, örneğin modern veya rustik.",
				},
				"color": {
					Type:        sdk.TypeString,
					Description: "İstenen renk.",
				},
				"limit": {
					Type:        sdk.TypeInteger,
					Description: fmt.Sprintf("En fazla kaç ürün dönsün (varsayılan %d, üst sınır %d).", catalog.DefaultLimit, catalog.MaxLimit),
				},
			},
			Required: []string{"category"},
		},
	}
}
