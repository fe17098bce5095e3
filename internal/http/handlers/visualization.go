package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/middleware"
)

// Visualize renders a mood board synchronously. A failed render still
// answers 200 with success=false so clients read the localized message.
func (a *App) Visualize(w http.ResponseWriter, r *http.Request) {
	var req domain.VisualizationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.RoomType) == "" || strings.TrimSpace(req.DesignStyle) == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "room_type and design_style are required")
		return
	}
	req.Locale = middleware.LocaleFromContext(r.Context())
	req.UserID = middleware.UserIDFromContext(r.Context())

	res := a.Designer.GenerateVisualization(r.Context(), req)
	a.json(w, http.StatusOK, res)
}
