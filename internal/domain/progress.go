package domain

// Stage names a step of a visualization run.
type Stage string

const (
	StagePreparingPrompt Stage = "preparing_prompt"
	StageGeneratingImage Stage = "generating_image"
	StageProcessingImage Stage = "processing_image"
	StageFinalizing      Stage = "finalizing"
	StageCompleted       Stage = "completed"
	StageError           Stage = "error"
)

// Terminal reports whether no further events follow the stage.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

// ProgressEvent is pushed to the client while a mood board renders.
// MessageKey is resolved into Message for the receiving connection's locale
// when Message is empty.
type ProgressEvent struct {
	Stage       Stage  `json:"stage"`
	Percentage  int    `json:"progress_percentage"`
	Message     string `json:"message"`
	MessageKey  string `json:"message_key,omitempty"`
	MoodBoardID string `json:"mood_board_id"`
}

// Message keys resolved by the progress channel into localized text.
const (
	MsgPreparingPrompt  = "preparing_prompt"
	MsgPromptReady      = "prompt_ready"
	MsgGeneratingImage  = "generating_image"
	MsgImageComposition = "image_composition"
	MsgImageLighting    = "image_lighting"
	MsgImageMaterials   = "image_materials"
	MsgImageFurniture   = "image_furniture"
	MsgImageDetails     = "image_details"
	MsgProcessingImage  = "processing_image"
	MsgImageSaved       = "image_saved"
	MsgFinalizing       = "finalizing"
	MsgCompleted        = "completed"
	MsgFailed           = "failed"
)
