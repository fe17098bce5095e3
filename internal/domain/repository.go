package domain

import "context"

// DesignRepository persists generated design suggestions.
type DesignRepository interface {
	SaveDesign(ctx context.Context, design *DesignSuggestion) error
	GetDesign(ctx context.Context, id string) (*DesignSuggestion, error)
}

// VisualizationRepository persists rendered mood boards. The image bytes
// live in object storage; only the storage key is kept here.
type VisualizationRepository interface {
	SaveVisualization(ctx context.Context, result *VisualizationResult) error
	GetVisualization(ctx context.Context, moodBoardID string) (*VisualizationResult, error)
}

// Product is a row of the read-only catalog.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Style       string   `json:"style,omitempty"`
	Color       string   `json:"color,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description string   `json:"description,omitempty"`
	ImagePath   string   `json:"-"`
	ImageURL    string   `json:"image_url,omitempty"`
}
