// Package design coordinates the text model, the catalog, the image model and
// the progress channel into design suggestions and mood board renders.
package design

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dekoassistant/internal/catalog"
	"dekoassistant/internal/domain"
	"dekoassistant/internal/observability/metrics"
	"dekoassistant/internal/prompt"
	"dekoassistant/internal/providers/genai"
	"dekoassistant/internal/storage"
	"dekoassistant/internal/suggestion"
	"dekoassistant/internal/textnorm"
)

// TextModel is the part of genai.TextClient the service drives.
type TextModel interface {
	Available() bool
	Generate(ctx context.Context, text string) (string, error)
	GenerateWithTools(ctx context.Context, text string, scope genai.ToolScope) (genai.ToolRun, error)
}

// ImageModel is the part of genai.ImageClient the service drives.
type ImageModel interface {
	Generate(ctx context.Context, prompt string, progress genai.ProgressFunc) (genai.ImageResult, error)
}

// Progress receives staged events for a connection. progress.Hub implements
// it.
type Progress interface {
	Publish(connID string, ev domain.ProgressEvent) error
	Complete(connID string, res domain.VisualizationResult) error
	Fail(connID, moodBoardID, message string) error
}

type Options struct {
	Text           TextModel
	Image          ImageModel
	Catalog        catalog.Searcher
	Designs        domain.DesignRepository
	Visualizations domain.VisualizationRepository
	Store          storage.ObjectStore
	Progress       Progress
	Parser         *suggestion.Parser

	// ToolsEnabled lets the text model search Catalog through find_product.
	ToolsEnabled bool
	CatalogLimit int
	PromptBudget int
	Stages       Stages

	// BackgroundTimeout bounds visualizations started with VisualizeAsync.
	BackgroundTimeout time.Duration

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// Service is safe for concurrent use.
type Service struct {
	text           TextModel
	image          ImageModel
	catalog        catalog.Searcher
	designs        domain.DesignRepository
	visualizations domain.VisualizationRepository
	store          storage.ObjectStore
	progress       Progress
	parser         *suggestion.Parser

	toolsEnabled bool
	catalogLimit int
	promptBudget int
	stages       Stages
	bgTimeout    time.Duration

	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string

	background sync.WaitGroup
}

func NewService(opts Options) *Service {
	parser := opts.Parser
	if parser == nil {
		parser = suggestion.NewParser(nil)
	}
	budget := opts.PromptBudget
	if budget <= 0 {
		budget = prompt.DefaultImagePromptBudget
	}
	return &Service{
		text:           opts.Text,
		image:          opts.Image,
		catalog:        opts.Catalog,
		designs:        opts.Designs,
		visualizations: opts.Visualizations,
		store:          opts.Store,
		progress:       opts.Progress,
		parser:         parser,
		toolsEnabled:   opts.ToolsEnabled,
		catalogLimit:   opts.CatalogLimit,
		promptBudget:   budget,
		stages:         opts.Stages.withDefaults(),
		bgTimeout:      opts.BackgroundTimeout,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// GenerateDesign always yields a suggestion for a valid request. The only
// error returned wraps domain.ErrInvalidRequest.
func (s *Service) GenerateDesign(ctx context.Context, req domain.DesignRequest) (domain.DesignSuggestion, error) {
	if err := req.Validate(); err != nil {
		return domain.DesignSuggestion{}, err
	}
	pc := prompt.ParseNotes(req.Notes)

	out, found, searched := s.draft(ctx, req, pc)
	out.Products = reconcileProducts(out.Products, found, searched)
	if !out.Hashtags.Complete() {
		out.Hashtags = domain.EmptyHashtags()
	}

	out.ID = s.newID()
	out.UserID = req.UserID
	out.RoomType = strings.TrimSpace(req.RoomType)
	out.DesignStyle = strings.TrimSpace(req.DesignStyle)
	if out.CreatedAt.IsZero() {
		out.CreatedAt = s.now().UTC()
	}

	log := s.logger.With().Str("design_id", out.ID).Str("source", out.Source).Logger()
	if s.designs != nil {
		if err := s.designs.SaveDesign(ctx, &out); err != nil {
			log.Error().Err(err).Msg("design: persist failed")
		}
	}
	s.metrics.RecordDesign(out.Source)
	log.Info().Int("products", len(out.Products)).Msg("design: generated")
	return out, nil
}

// draft asks the text model and parses the reply, degrading to the
// deterministic fallback on any failure. found lists the catalog products
// the model saw; searched reports whether a tool run took place.
func (s *Service) draft(ctx context.Context, req domain.DesignRequest, pc domain.ParsedContext) (out domain.DesignSuggestion, found []domain.Product, searched bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("design: text generation panicked, using fallback")
			out, found, searched = s.parser.Fallback(req), nil, false
		}
	}()

	if s.text == nil || !s.text.Available() {
		s.logger.Warn().Msg("design: text model unavailable, using fallback")
		return s.parser.Fallback(req), nil, false
	}

	raw, run, err := s.ask(ctx, req, pc)
	if err != nil {
		s.logger.Warn().Err(err).Msg("design: text generation failed, using fallback")
		return s.parser.Fallback(req), nil, false
	}
	if run != nil {
		found, searched = run.Found, true
	}

	parsed, err := s.parser.Parse(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("design: reply not parseable, using fallback")
		fb := s.parser.Fallback(req)
		fb.RawModelText = raw
		return fb, nil, false
	}
	return parsed, found, searched
}

// ask runs the hybrid tool loop when a catalog is wired, and the direct
// prompt otherwise or when the loop produced no text at all.
func (s *Service) ask(ctx context.Context, req domain.DesignRequest, pc domain.ParsedContext) (string, *genai.ToolRun, error) {
	if s.toolsEnabled && s.catalog != nil {
		run, err := s.text.GenerateWithTools(ctx, prompt.BuildHybrid(req, pc), genai.ToolScope{
			Searcher:     s.catalog,
			PriceCeiling: req.PriceCeiling,
			DefaultLimit: s.catalogLimit,
		})
		if err == nil {
			return run.Text, &run, nil
		}
		if !errors.Is(err, domain.ErrEmptyResponse) {
			return "", nil, err
		}
		s.logger.Warn().Int("iterations", run.Iterations).Msg("design: tool loop returned no text, retrying direct")
	}
	raw, err := s.text.Generate(ctx, prompt.BuildDirect(req, pc))
	if err != nil {
		return "", nil, err
	}
	return raw, nil, nil
}

// reconcileProducts keeps is_real only for products backed by a catalog row
// the model actually received, and copies the row's id and image over.
func reconcileProducts(products []domain.ProductSuggestion, found []domain.Product, searched bool) []domain.ProductSuggestion {
	out := make([]domain.ProductSuggestion, 0, len(products))
	for _, ps := range products {
		match, ok := matchProduct(ps, found)
		if !searched || !ps.IsReal || !ok {
			ps.IsReal = false
			ps.ProductID = ""
			ps.ImageURL = ""
			ps.Type = domain.ProductTypeGenerated
			out = append(out, ps)
			continue
		}
		ps.Type = domain.ProductTypeReal
		ps.ProductID = match.ID
		ps.ImageURL = match.ImageURL
		if ps.Price == nil && match.Price != nil {
			price := *match.Price
			ps.Price = &price
		}
		if ps.Category == "" {
			ps.Category = match.Category
		}
		out = append(out, ps)
	}
	return out
}

func matchProduct(ps domain.ProductSuggestion, found []domain.Product) (domain.Product, bool) {
	if id := strings.TrimSpace(ps.ProductID); id != "" {
		for _, p := range found {
			if p.ID == id {
				return p, true
			}
		}
	}
	name := textnorm.Fold(strings.TrimSpace(ps.Name))
	if name == "" {
		return domain.Product{}, false
	}
	for _, p := range found {
		if textnorm.Fold(strings.TrimSpace(p.Name)) == name {
			return p, true
		}
	}
	return domain.Product{}, false
}

// VisualizationFor turns a generated design into the request that renders
// it.
func VisualizationFor(req domain.DesignRequest, d domain.DesignSuggestion) domain.VisualizationRequest {
	return domain.VisualizationRequest{
		ConnectionID: req.ConnectionID,
		DesignID:     d.ID,
		RoomType:     req.RoomType,
		DesignStyle:  req.DesignStyle,
		Notes:        req.Notes,
		Title:        d.Title,
		Description:  d.Description,
		Products:     d.Products,
		Width:        req.Width,
		Length:       req.Length,
		Height:       req.Height,
		Color:        req.Color,
		UserID:       req.UserID,
		Locale:       req.Locale,
	}
}

// VisualizeAsync renders req in the background, detached from the caller's
// cancellation. Wait blocks until every such render has returned.
func (s *Service) VisualizeAsync(ctx context.Context, req domain.VisualizationRequest) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		bg := context.WithoutCancel(ctx)
		if s.bgTimeout > 0 {
			var cancel context.CancelFunc
			bg, cancel = context.WithTimeout(bg, s.bgTimeout)
			defer cancel()
		}
		res := s.GenerateVisualization(bg, req)
		if !res.Success {
			s.logger.Warn().Str("mood_board_id", res.MoodBoardID).Str("error", res.ErrorMessage).Msg("design: background visualization failed")
		}
	}()
}

// Wait returns once background renders finish or ctx ends.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("design: waiting for background renders: %w", ctx.Err())
	}
}
