// Package genai adapts the Gemini SDK to the design pipeline: plain text
// generation, the find_product tool loop and Imagen rendering with a
// synthetic fallback.
package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdk "google.golang.org/genai"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/observability/metrics"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
)

// ContentGenerator is the text half of *sdk.Models.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*sdk.Content, config *sdk.GenerateContentConfig) (*sdk.GenerateContentResponse, error)
}

// ImageGenerator is the Imagen half of *sdk.Models.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, model, prompt string, config *sdk.GenerateImagesConfig) (*sdk.GenerateImagesResponse, error)
}

// Models groups both halves.
type Models interface {
	ContentGenerator
	ImageGenerator
}

// Connect builds the SDK client. An empty key yields nil Models and no
// error; the clients then report themselves unavailable and callers fall
// back.
func Connect(ctx context.Context, apiKey string) (Models, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, nil
	}
	client, err := sdk.NewClient(ctx, &sdk.ClientConfig{
		APIKey:  apiKey,
		Backend: sdk.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client.Models, nil
}

// Options are shared by the text and image clients.
type Options struct {
	Model   string
	Timeout time.Duration
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// upstreamError maps SDK and breaker failures onto the domain sentinels.
// Cancellation of the caller's context is returned unchanged.
func upstreamError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, op, err)
}

func firstContent(resp *sdk.GenerateContentResponse) *sdk.Content {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand != nil && cand.Content != nil {
			return cand.Content
		}
	}
	return nil
}

func contentText(content *sdk.Content) string {
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}

func functionCalls(content *sdk.Content) []*sdk.FunctionCall {
	if content == nil {
		return nil
	}
	var calls []*sdk.FunctionCall
	for _, part := range content.Parts {
		if part != nil && part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}

func userText(text string) *sdk.Content {
	return &sdk.Content{Role: "user", Parts: []*sdk.Part{{Text: text}}}
}
