package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"dekoassistant/internal/design"
	"dekoassistant/internal/domain"
	"dekoassistant/internal/middleware"
)

const maxFormBytes = 1 << 20

type designPayload struct {
	domain.DesignRequest
	Visualize *bool `json:"visualize,omitempty"`
}

type designResponse struct {
	domain.DesignSuggestion
	VisualizationQueued bool `json:"visualization_queued"`
}

// Design generates a suggestion. With a connection id the mood board render
// starts in the background unless visualize=false.
func (a *App) Design(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeDesign(w, r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req := payload.DesignRequest
	req.Locale = middleware.LocaleFromContext(r.Context())
	req.UserID = middleware.UserIDFromContext(r.Context())
	req.ConnectionID = strings.TrimSpace(req.ConnectionID)

	out, err := a.Designer.GenerateDesign(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			a.error(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), domain.ErrInvalidRequest.Error()+": "))
			return
		}
		a.Logger.Error().Err(err).Msg("design: unexpected error")
		a.error(w, http.StatusInternalServerError, "internal", "design generation failed")
		return
	}

	queued := false
	if req.ConnectionID != "" && (payload.Visualize == nil || *payload.Visualize) {
		a.Designer.VisualizeAsync(r.Context(), design.VisualizationFor(req, out))
		queued = true
	}
	a.json(w, http.StatusOK, designResponse{DesignSuggestion: out, VisualizationQueued: queued})
}

func decodeDesign(w http.ResponseWriter, r *http.Request) (designPayload, error) {
	var p designPayload
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
		if err := dec.Decode(&p); err != nil {
			return p, fmt.Errorf("invalid JSON payload")
		}
		return p, nil
	}

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return p, fmt.Errorf("invalid form payload")
		}
	} else if err := r.ParseForm(); err != nil {
		return p, fmt.Errorf("invalid form payload")
	}

	f := r.Form
	p.RoomType = f.Get("room_type")
	p.DesignStyle = f.Get("design_style")
	p.Notes = f.Get("notes")
	p.ConnectionID = f.Get("connection_id")

	var err error
	if p.Width, err = formInt(f.Get("width"), "width"); err != nil {
		return p, err
	}
	if p.Length, err = formInt(f.Get("length"), "length"); err != nil {
		return p, err
	}
	if p.Height, err = formInt(f.Get("height"), "height"); err != nil {
		return p, err
	}
	if v := strings.TrimSpace(f.Get("price")); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("price must be a number")
		}
		p.PriceCeiling = &price
	}
	if v := strings.TrimSpace(f.Get("color_info")); v != "" {
		var c domain.ColorInfo
		if err := json.Unmarshal([]byte(v), &c); err != nil {
			return p, fmt.Errorf("color_info must be a JSON object")
		}
		p.Color = &c
	}
	if v := strings.TrimSpace(f.Get("product_categories")); v != "" {
		var cats domain.CategoryPreferences
		if err := json.Unmarshal([]byte(v), &cats); err != nil {
			// Plain text is a free-form product description.
			cats = domain.CategoryPreferences{Custom: v}
		}
		p.Categories = &cats
	}
	if v := strings.TrimSpace(f.Get("visualize")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("visualize must be true or false")
		}
		p.Visualize = &b
	}
	return p, nil
}

func formInt(v, name string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}
