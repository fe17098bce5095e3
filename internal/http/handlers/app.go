// Package handlers exposes the design pipeline over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"dekoassistant/internal/domain"
)

// Designer is the part of design.Service the handlers drive.
type Designer interface {
	GenerateDesign(ctx context.Context, req domain.DesignRequest) (domain.DesignSuggestion, error)
	GenerateVisualization(ctx context.Context, req domain.VisualizationRequest) domain.VisualizationResult
	VisualizeAsync(ctx context.Context, req domain.VisualizationRequest)
}

type App struct {
	Designer Designer
	Logger   zerolog.Logger
	// Ready reports whether backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

func NewApp(designer Designer, logger zerolog.Logger) *App {
	return &App{Designer: designer, Logger: logger}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, msg string) {
	a.json(w, code, errorResponse{Error: kind, Message: msg})
}
