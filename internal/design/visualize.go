package design

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"strings"

	"github.com/rs/zerolog"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/progress"
	"dekoassistant/internal/prompt"
	"dekoassistant/internal/providers/genai"
)

// Stages holds the percentage reported at each fixed point of a render. The
// simulated image steps fill the gap between GeneratingImage and
// ProcessingImage.
type Stages struct {
	PreparingPrompt int
	PromptReady     int
	GeneratingImage int
	ProcessingImage int
	ImageSaved      int
	Finalizing      int
}

// DefaultStages is the stock progress curve.
var DefaultStages = Stages{
	PreparingPrompt: 5,
	PromptReady:     15,
	GeneratingImage: 20,
	ProcessingImage: 75,
	ImageSaved:      85,
	Finalizing:      90,
}

func (s Stages) withDefaults() Stages {
	pick := func(v, def int) int {
		if v <= 0 || v >= 100 {
			return def
		}
		return v
	}
	return Stages{
		PreparingPrompt: pick(s.PreparingPrompt, DefaultStages.PreparingPrompt),
		PromptReady:     pick(s.PromptReady, DefaultStages.PromptReady),
		GeneratingImage: pick(s.GeneratingImage, DefaultStages.GeneratingImage),
		ProcessingImage: pick(s.ProcessingImage, DefaultStages.ProcessingImage),
		ImageSaved:      pick(s.ImageSaved, DefaultStages.ImageSaved),
		Finalizing:      pick(s.Finalizing, DefaultStages.Finalizing),
	}
}

var errInvalidImage = errors.New("image payload is not a valid PNG")

// GenerateVisualization renders one mood board and streams its progress to
// req.ConnectionID when set. Failures end in an error event and a result
// with Success false; nothing is retried.
func (s *Service) GenerateVisualization(ctx context.Context, req domain.VisualizationRequest) (res domain.VisualizationResult) {
	run := &vizRun{
		svc:  s,
		conn: strings.TrimSpace(req.ConnectionID),
		res: domain.VisualizationResult{
			MoodBoardID: s.newID(),
			DesignID:    req.DesignID,
			UserID:      req.UserID,
		},
	}
	run.log = s.logger.With().Str("mood_board_id", run.res.MoodBoardID).Str("connection_id", run.conn).Logger()

	defer func() {
		if r := recover(); r != nil {
			run.log.Error().Interface("panic", r).Msg("design: visualization panicked")
			res = run.fail(req.Locale, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := run.render(ctx, req); err != nil {
		return run.fail(req.Locale, err)
	}
	return run.res
}

type vizRun struct {
	svc  *Service
	conn string
	res  domain.VisualizationResult
	log  zerolog.Logger
}

func (r *vizRun) render(ctx context.Context, req domain.VisualizationRequest) error {
	s := r.svc
	st := s.stages

	r.emit(domain.StagePreparingPrompt, st.PreparingPrompt, domain.MsgPreparingPrompt)
	r.res.Prompt = s.imagePrompt(ctx, prompt.BriefFromRequest(req))
	r.emit(domain.StagePreparingPrompt, st.PromptReady, domain.MsgPromptReady)
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.image == nil {
		return fmt.Errorf("%w: image model not configured", domain.ErrUpstreamUnavailable)
	}
	r.emit(domain.StageGeneratingImage, st.GeneratingImage, domain.MsgGeneratingImage)
	img, err := s.image.Generate(ctx, r.res.Prompt, func(step genai.SimulatedStep) {
		pct := step.Percentage
		if pct <= st.GeneratingImage || pct >= st.ProcessingImage {
			return
		}
		r.emit(domain.StageGeneratingImage, pct, step.MessageKey)
	})
	if err != nil {
		return fmt.Errorf("generate image: %w", err)
	}

	r.emit(domain.StageProcessingImage, st.ProcessingImage, domain.MsgProcessingImage)
	if err := validatePNG(img.Data); err != nil {
		return err
	}
	if s.store != nil {
		key, err := s.store.Write(ctx, fmt.Sprintf("visualizations/%s.png", r.res.MoodBoardID), img.Data, "image/png")
		if err != nil {
			return fmt.Errorf("store image: %w", err)
		}
		r.res.StorageKey = key
		r.res.ImageURL = s.store.URL(key)
	}
	r.emit(domain.StageProcessingImage, st.ImageSaved, domain.MsgImageSaved)

	r.res.ImageBase64 = base64.StdEncoding.EncodeToString(img.Data)
	r.res.Success = true
	r.res.Metadata = domain.GenerationMetadata{
		Model:       img.Model,
		Success:     true,
		Fallback:    img.Fallback,
		GeneratedAt: img.GeneratedAt,
	}
	if r.res.Metadata.GeneratedAt.IsZero() {
		r.res.Metadata.GeneratedAt = s.now().UTC()
	}
	r.emit(domain.StageFinalizing, st.Finalizing, domain.MsgFinalizing)

	if s.visualizations != nil {
		if err := s.visualizations.SaveVisualization(ctx, &r.res); err != nil {
			r.log.Error().Err(err).Msg("design: persist visualization failed")
		}
	}
	s.metrics.RecordVisualization(true, img.Fallback)
	if r.conn != "" && s.progress != nil {
		if err := s.progress.Complete(r.conn, r.res); err != nil {
			r.log.Debug().Err(err).Msg("design: completion not delivered")
		}
	}
	r.log.Info().Bool("fallback", img.Fallback).Str("model", img.Model).Msg("design: visualization ready")
	return nil
}

func (r *vizRun) emit(stage domain.Stage, pct int, key string) {
	if r.conn == "" || r.svc.progress == nil {
		return
	}
	err := r.svc.progress.Publish(r.conn, domain.ProgressEvent{
		Stage:       stage,
		Percentage:  pct,
		MessageKey:  key,
		MoodBoardID: r.res.MoodBoardID,
	})
	if err != nil {
		r.log.Debug().Err(err).Str("stage", string(stage)).Msg("design: progress not delivered")
	}
}

func (r *vizRun) fail(locale string, cause error) domain.VisualizationResult {
	r.log.Warn().Err(cause).Msg("design: visualization failed")
	msg := progress.Message(locale, domain.MsgFailed)
	r.res.Success = false
	r.res.ImageBase64 = ""
	r.res.ErrorMessage = msg
	r.res.Metadata.Success = false
	r.svc.metrics.RecordVisualization(false, false)
	if r.conn != "" && r.svc.progress != nil {
		if err := r.svc.progress.Fail(r.conn, r.res.MoodBoardID, msg); err != nil {
			r.log.Debug().Err(err).Msg("design: error event not delivered")
		}
	}
	return r.res
}

// imagePrompt asks the text model to compress the brief and falls back to
// the local template when the model is missing or fails.
func (s *Service) imagePrompt(ctx context.Context, brief prompt.ImageBrief) string {
	if s.text != nil && s.text.Available() {
		out, err := s.text.Generate(ctx, prompt.BuildImageInstruction(brief, s.promptBudget))
		if err == nil && strings.TrimSpace(out) != "" {
			return prompt.FitImagePrompt(out, s.promptBudget)
		}
		s.logger.Warn().Err(err).Msg("design: image prompt rewrite failed, using local template")
	}
	return prompt.LocalImagePrompt(brief, s.promptBudget)
}

func validatePNG(data []byte) error {
	if len(data) == 0 {
		return errInvalidImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != "png" {
		return errInvalidImage
	}
	return nil
}
