package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ColorInfo captures the palette the user picked for the room.
type ColorInfo struct {
	Dominant string   `json:"dominant_color,omitempty"`
	Name     string   `json:"color_name,omitempty"`
	Palette  []string `json:"palette,omitempty"`
}

// Empty reports whether no color information was supplied.
func (c *ColorInfo) Empty() bool {
	return c == nil || (strings.TrimSpace(c.Dominant) == "" && strings.TrimSpace(c.Name) == "" && len(c.Palette) == 0)
}

// CategoryChoice is a product category picked from the front-end grid.
type CategoryChoice struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// CategoryPreferences is either a list of picked categories or a free-text
// description of the products the user wants.
type CategoryPreferences struct {
	Categories []CategoryChoice `json:"categories,omitempty"`
	Custom     string           `json:"custom,omitempty"`
}

// UnmarshalJSON accepts an array of choices, an object with categories
// and/or custom text, or a bare string used as custom text.
func (p *CategoryPreferences) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "" || trimmed == "null":
		*p = CategoryPreferences{}
		return nil
	case strings.HasPrefix(trimmed, "["):
		var list []CategoryChoice
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("product categories: %w", err)
		}
		*p = CategoryPreferences{Categories: list}
		return nil
	case strings.HasPrefix(trimmed, "\""):
		var custom string
		if err := json.Unmarshal(data, &custom); err != nil {
			return fmt.Errorf("product categories: %w", err)
		}
		*p = CategoryPreferences{Custom: strings.TrimSpace(custom)}
		return nil
	}
	type plain CategoryPreferences
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("product categories: %w", err)
	}
	*p = CategoryPreferences(decoded)
	return nil
}

// Names returns the non-blank category names in order.
func (p *CategoryPreferences) Names() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		if name := strings.TrimSpace(c.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// DesignRequest is the transient input of one design generation.
type DesignRequest struct {
	RoomType     string               `json:"room_type"`
	DesignStyle  string               `json:"design_style"`
	Notes        string               `json:"notes,omitempty"`
	Width        *int                 `json:"width,omitempty"`
	Length       *int                 `json:"length,omitempty"`
	Height       *int                 `json:"height,omitempty"`
	Color        *ColorInfo           `json:"color_info,omitempty"`
	Categories   *CategoryPreferences `json:"product_categories,omitempty"`
	PriceCeiling *float64             `json:"price,omitempty"`
	ConnectionID string               `json:"connection_id,omitempty"`
	Locale       string               `json:"-"`
	UserID       string               `json:"-"`
}

// Validate rejects requests that cannot be turned into a prompt.
func (r DesignRequest) Validate() error {
	if strings.TrimSpace(r.RoomType) == "" {
		return fmt.Errorf("%w: room_type is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.DesignStyle) == "" {
		return fmt.Errorf("%w: design_style is required", ErrInvalidRequest)
	}
	dims := []struct {
		name string
		v    *int
	}{{"width", r.Width}, {"length", r.Length}, {"height", r.Height}}
	for _, d := range dims {
		if d.v != nil && *d.v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidRequest, d.name)
		}
	}
	if r.PriceCeiling != nil && *r.PriceCeiling < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRequest)
	}
	return nil
}

// Dimensions are room measures in centimeters.
type Dimensions struct {
	Width  int `json:"width"`
	Length int `json:"length"`
	Height int `json:"height,omitempty"`
}

// ExtraArea is an alcove or niche attached to the main room.
type ExtraArea struct {
	Width  int `json:"width"`
	Length int `json:"length"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// ParsedContext is what could be recovered from the free-text notes. Every
// field is optional.
type ParsedContext struct {
	Dimensions          *Dimensions `json:"room_dimensions,omitempty"`
	ColorPalette        string      `json:"color_palette,omitempty"`
	ProductCategories   []string    `json:"product_categories,omitempty"`
	ExtraAreas          []ExtraArea `json:"extra_areas,omitempty"`
	DoorWindowPositions []string    `json:"door_window_positions,omitempty"`
	UserNotes           string      `json:"user_notes,omitempty"`
}

// Hashtags holds the ten generated tags in canonical and translated form.
// Either all three slices have ten entries or all are empty.
type Hashtags struct {
	Canonical  []string `json:"en"`
	Translated []string `json:"tr"`
	Display    []string `json:"display"`
}

// EmptyHashtags returns the degraded, all-empty hashtag set.
func EmptyHashtags() Hashtags {
	return Hashtags{Canonical: []string{}, Translated: []string{}, Display: []string{}}
}

// Complete reports whether the hashtag set is fully populated.
func (h Hashtags) Complete() bool {
	return len(h.Canonical) == HashtagCount && len(h.Translated) == HashtagCount && len(h.Display) == HashtagCount
}

// HashtagCount is the number of tags a suggestion must carry.
const HashtagCount = 10

// Product type tags.
const (
	ProductTypeReal      = "real"
	ProductTypeGenerated = "generated"
)

// ProductSuggestion is one entry of a design's product list.
type ProductSuggestion struct {
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	Style       string   `json:"style,omitempty"`
	Color       string   `json:"color,omitempty"`
	IsReal      bool     `json:"is_real"`
	ProductID   string   `json:"product_id,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// Suggestion sources.
const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
	SourceFallback  = "fallback"
)

// DesignSuggestion is the structured decoration plan returned to the client.
type DesignSuggestion struct {
	ID           string              `json:"design_id"`
	UserID       string              `json:"-"`
	RoomType     string              `json:"room_type"`
	DesignStyle  string              `json:"design_style"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Hashtags     Hashtags            `json:"hashtags"`
	Products     []ProductSuggestion `json:"products"`
	Source       string              `json:"source"`
	RawModelText string              `json:"-"`
	CreatedAt    time.Time           `json:"created_at"`
}
