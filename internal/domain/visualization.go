package domain

import "time"

// VisualizationRequest carries what the image prompt is built from.
type VisualizationRequest struct {
	ConnectionID string              `json:"connection_id,omitempty"`
	DesignID     string              `json:"design_id,omitempty"`
	RoomType     string              `json:"room_type"`
	DesignStyle  string              `json:"design_style"`
	Notes        string              `json:"notes,omitempty"`
	Title        string              `json:"title,omitempty"`
	Description  string              `json:"description,omitempty"`
	Products     []ProductSuggestion `json:"products,omitempty"`
	Width        *int                `json:"width,omitempty"`
	Length       *int                `json:"length,omitempty"`
	Height       *int                `json:"height,omitempty"`
	Color        *ColorInfo          `json:"color_info,omitempty"`
	UserID       string              `json:"-"`
	Locale       string              `json:"-"`
}

// GenerationMetadata distinguishes real renders from fallback ones.
type GenerationMetadata struct {
	Model       string    `json:"model"`
	Success     bool      `json:"success"`
	Fallback    bool      `json:"fallback"`
	GeneratedAt time.Time `json:"generated_at"`
}

// VisualizationResult is one rendered mood board.
type VisualizationResult struct {
	MoodBoardID  string             `json:"mood_board_id"`
	ImageBase64  string             `json:"image_base64,omitempty"`
	ImageURL     string             `json:"image_url,omitempty"`
	StorageKey   string             `json:"-"`
	Prompt       string             `json:"prompt"`
	Metadata     GenerationMetadata `json:"metadata"`
	DesignID     string             `json:"design_id,omitempty"`
	UserID       string             `json:"user_id,omitempty"`
	Success      bool               `json:"success"`
	ErrorMessage string             `json:"error_message,omitempty"`
}
