package genai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	sdk "google.golang.org/genai"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/observability/metrics"
)

// SimulatedStep is one cosmetic progress update emitted while the image
// model works.
type SimulatedStep struct {
	Percentage int
	MessageKey string
}

// DefaultSimulatedSteps covers the generating_image band.
var DefaultSimulatedSteps = []SimulatedStep{
	{30, domain.MsgImageComposition},
	{40, domain.MsgImageLighting},
	{50, domain.MsgImageMaterials},
	{60, domain.MsgImageFurniture},
	{70, domain.MsgImageDetails},
}

const (
	DefaultPrimaryTick  = 1500 * time.Millisecond
	DefaultFallbackTick = 800 * time.Millisecond
)

// ProgressFunc receives simulated progress. It must not block for long.
type ProgressFunc func(step SimulatedStep)

type ImageOptions struct {
	Options
	PrimaryTick  time.Duration
	FallbackTick time.Duration
	Steps        []SimulatedStep
	Breaker      BreakerSettings
}

// ImageResult is a rendered PNG. Fallback marks synthetic placeholders.
type ImageResult struct {
	Data        []byte
	MIMEType    string
	Model       string
	Fallback    bool
	GeneratedAt time.Time
}

type ImageClient struct {
	models       ImageGenerator
	model        string
	timeout      time.Duration
	primaryTick  time.Duration
	fallbackTick time.Duration
	steps        []SimulatedStep
	breaker      *gobreaker.CircuitBreaker[*sdk.GenerateImagesResponse]
	logger       zerolog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewImageClient(models ImageGenerator, opts ImageOptions) *ImageClient {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultImageModel
	}
	primary := opts.PrimaryTick
	if primary <= 0 {
		primary = DefaultPrimaryTick
	}
	fallback := opts.FallbackTick
	if fallback <= 0 {
		fallback = DefaultFallbackTick
	}
	steps := opts.Steps
	if len(steps) == 0 {
		steps = DefaultSimulatedSteps
	}
	return &ImageClient{
		models:       models,
		model:        model,
		timeout:      opts.Timeout,
		primaryTick:  primary,
		fallbackTick: fallback,
		steps:        append([]SimulatedStep(nil), steps...),
		breaker:      newBreaker[*sdk.GenerateImagesResponse]("genai-image", opts.Breaker, opts.Logger, opts.Metrics),
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		now:          time.Now,
	}
}

func (c *ImageClient) Available() bool { return c != nil && c.models != nil }

func (c *ImageClient) Model() string { return c.model }

// Generate renders prompt as one square image. Any model failure is
// replaced by a synthetic PNG with Fallback set, so the only errors
// returned come from ctx.
func (c *ImageClient) Generate(ctx context.Context, prompt string, progress ProgressFunc) (ImageResult, error) {
	if err := ctx.Err(); err != nil {
		return ImageResult{}, err
	}
	sim := &simulator{steps: c.steps, emit: progress}

	if !c.Available() {
		return c.fallback(ctx, prompt, sim, "unavailable", nil)
	}

	simCtx, stopSim := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = sim.run(simCtx, c.primaryTick)
	}()

	res, err := c.render(ctx, prompt)
	stopSim()
	wg.Wait()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ImageResult{}, ctxErr
		}
		reason := "error"
		switch {
		case isBreakerRejection(err):
			reason = "breaker_open"
		case errors.Is(err, domain.ErrEmptyResponse):
			reason = "no_image"
		}
		return c.fallback(ctx, prompt, sim, reason, err)
	}
	return res, nil
}

type renderOutcome struct {
	result ImageResult
	err    error
}

// render runs the SDK call on its own goroutine so a cancelled ctx returns
// immediately even if the call does not honour it.
func (c *ImageClient) render(ctx context.Context, prompt string) (ImageResult, error) {
	done := make(chan renderOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- renderOutcome{err: fmt.Errorf("image model panicked: %v", r)}
			}
		}()
		res, err := c.callModel(ctx, prompt)
		done <- renderOutcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return ImageResult{}, ctx.Err()
	case out := <-done:
		return out.result, out.err
	}
}

func (c *ImageClient) callModel(ctx context.Context, prompt string) (ImageResult, error) {
	callCtx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*sdk.GenerateImagesResponse, error) {
		return c.models.GenerateImages(callCtx, c.model, prompt, &sdk.GenerateImagesConfig{
			NumberOfImages:    1,
			AspectRatio:       "1:1",
			SafetyFilterLevel: sdk.SafetyFilterLevel("BLOCK_ONLY_HIGH"),
			PersonGeneration:  sdk.PersonGeneration("ALLOW_ADULT"),
		})
	})
	c.metrics.RecordUpstream("image", time.Since(start), err)
	if err != nil {
		if isBreakerRejection(err) {
			return ImageResult{}, err
		}
		return ImageResult{}, upstreamError(ctx, "generate images", err)
	}

	if resp != nil {
		for _, generated := range resp.GeneratedImages {
			if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
				continue
			}
			data, err := ensurePNG(generated.Image.ImageBytes)
			if err != nil {
				return ImageResult{}, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
			}
			return ImageResult{
				Data:        data,
				MIMEType:    "image/png",
				Model:       c.model,
				GeneratedAt: c.now().UTC(),
			}, nil
		}
	}
	return ImageResult{}, domain.ErrEmptyResponse
}

func (c *ImageClient) fallback(ctx context.Context, prompt string, sim *simulator, reason string, cause error) (ImageResult, error) {
	event := c.logger.Warn().Str("reason", reason).Str("model", c.model)
	if cause != nil {
		event = event.Err(cause)
	}
	event.Msg("genai: image generation failed; falling back to synthetic image")
	c.metrics.RecordImageFallback(reason)

	data, err := renderSyntheticPNG(prompt)
	if err != nil {
		return ImageResult{}, err
	}
	// The remaining cosmetic steps play at the faster cadence so the client
	// still sees the generating band complete.
	if err := sim.run(ctx, c.fallbackTick); err != nil {
		return ImageResult{}, err
	}
	return ImageResult{
		Data:        data,
		MIMEType:    "image/png",
		Model:       SyntheticModel,
		Fallback:    true,
		GeneratedAt: c.now().UTC(),
	}, nil
}

// ensurePNG re-encodes non-PNG payloads.
func ensurePNG(data []byte) ([]byte, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "png" {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// simulator walks steps once across one or more runs. Runs never overlap.
type simulator struct {
	steps []SimulatedStep
	next  int
	emit  ProgressFunc
}

// run emits one step per tick until steps are exhausted or ctx ends. A
// cancelled ctx is the normal way a primary-path run stops; the returned
// error only matters to callers that need to know the caller gave up.
func (s *simulator) run(ctx context.Context, tick time.Duration) error {
	if s.emit == nil || s.next >= len(s.steps) {
		return ctx.Err()
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for s.next < len(s.steps) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.emit(s.steps[s.next])
			s.next++
		}
	}
	return nil
}
