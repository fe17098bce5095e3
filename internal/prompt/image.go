package prompt

import (
	"fmt"
	"math"
	"strings"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/textnorm"
)

const (
	// ImagePromptPrefix opens every prompt sent to the image model.
	ImagePromptPrefix = "Photorealistic interior design visualization of"
	// DefaultImagePromptBudget is the character cap of the image prompt.
	DefaultImagePromptBudget = 480
)

// Size bucket thresholds in square meters and aspect thresholds as the
// long side over the short side.
var (
	sizeThresholds = []struct {
		below float64
		label string
	}{
		{8, "very small"},
		{12, "small"},
		{20, "medium-sized"},
		{30, "large"},
		{45, "very large"},
	}
	squareAspectBelow = 1.25
	narrowAspectFrom  = 1.8
)

// RoomShape describes room proportions in words.
type RoomShape struct {
	AreaM2 float64
	Size   string
	Aspect string
}

// Text renders the shape as an English phrase.
func (s RoomShape) Text() string {
	return fmt.Sprintf("a %s, %s room of about %.1f m²", s.Size, s.Aspect, s.AreaM2)
}

// DescribeDimensions classifies a room by floor area and aspect ratio.
// Width and length are in centimeters; ok is false when either is missing.
func DescribeDimensions(width, length int) (RoomShape, bool) {
	if width <= 0 || length <= 0 {
		return RoomShape{}, false
	}
	area := float64(width) * float64(length) / 10000
	area = math.Round(area*10) / 10
	shape := RoomShape{AreaM2: area, Size: "spacious"}
	for _, t := range sizeThresholds {
		if area < t.below {
			shape.Size = t.label
			break
		}
	}
	long, short := float64(width), float64(length)
	if short > long {
		long, short = short, long
	}
	ratio := long / short
	switch {
	case ratio < squareAspectBelow:
		shape.Aspect = "nearly square"
	case ratio < narrowAspectFrom:
		shape.Aspect = "rectangular"
	default:
		shape.Aspect = "long and narrow"
	}
	return shape, true
}

// ImageBrief is everything the image prompt is composed from.
type ImageBrief struct {
	RoomType    string
	DesignStyle string
	Notes       string
	Title       string
	Description string
	Products    []domain.ProductSuggestion
	Width       int
	Length      int
	Height      int
	Color       *domain.ColorInfo
}

// BriefFromRequest collects the visualization request into a brief, taking
// dimensions from the notes when the explicit fields are absent.
func BriefFromRequest(req domain.VisualizationRequest) ImageBrief {
	b := ImageBrief{
		RoomType:    req.RoomType,
		DesignStyle: req.DesignStyle,
		Notes:       req.Notes,
		Title:       req.Title,
		Description: req.Description,
		Products:    req.Products,
		Width:       deref(req.Width),
		Length:      deref(req.Length),
		Height:      deref(req.Height),
		Color:       req.Color,
	}
	if b.Width == 0 || b.Length == 0 {
		if pc := ParseNotes(req.Notes); pc.Dimensions != nil {
			b.Width, b.Length, b.Height = pc.Dimensions.Width, pc.Dimensions.Length, pc.Dimensions.Height
		}
	}
	return b
}

// BuildImageInstruction asks the text model to compress the brief into an
// English image prompt.
func BuildImageInstruction(b ImageBrief, budget int) string {
	if budget <= 0 {
		budget = DefaultImagePromptBudget
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You write prompts for a photorealistic interior rendering model. Rewrite the brief below into ONE English prompt of at most %d characters. ", budget)
	fmt.Fprintf(sb, "It must start exactly with %q. Describe the room type, the style, the key furniture pieces, the materials, the colors, the lighting and the room proportions. ", ImagePromptPrefix)
	sb.WriteString("Translate any Turkish into English. Output only the prompt text without quotes or markdown.\n\nBrief:\n")
	for _, line := range briefLines(b) {
		sb.WriteString("- ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func briefLines(b ImageBrief) []string {
	lines := []string{
		"Room: " + strings.TrimSpace(b.RoomType),
		"Style: " + strings.TrimSpace(b.DesignStyle),
	}
	if t := strings.TrimSpace(b.Title); t != "" {
		lines = append(lines, "Title: "+t)
	}
	if d := strings.TrimSpace(b.Description); d != "" {
		lines = append(lines, "Description: "+d)
	}
	real, generated := splitProducts(b.Products)
	if len(real) > 0 {
		lines = append(lines, "Catalog products: "+strings.Join(real, "; "))
	}
	if len(generated) > 0 {
		lines = append(lines, "Suggested products: "+strings.Join(generated, "; "))
	}
	if shape, ok := DescribeDimensions(b.Width, b.Length); ok {
		line := "Size: " + shape.Text()
		if b.Height > 0 {
			line += fmt.Sprintf(", ceiling height %d cm", b.Height)
		}
		lines = append(lines, line)
	}
	if c := ColorText(b.Color); c != "" {
		lines = append(lines, "Colors: "+c)
	}
	if n := strings.TrimSpace(ParseNotes(b.Notes).UserNotes); n != "" {
		lines = append(lines, "Notes: "+n)
	}
	return lines
}

func splitProducts(products []domain.ProductSuggestion) (real, generated []string) {
	for _, p := range products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		summary := name
		if p.Color != "" {
			summary += " (" + p.Color + ")"
		}
		if p.IsReal {
			real = append(real, summary)
		} else {
			generated = append(generated, summary)
		}
	}
	return real, generated
}

// ColorText renders the palette as a short phrase.
func ColorText(c *domain.ColorInfo) string {
	if c.Empty() {
		return ""
	}
	var parts []string
	if n := strings.TrimSpace(c.Name); n != "" {
		parts = append(parts, n)
	}
	if d := strings.TrimSpace(c.Dominant); d != "" {
		parts = append(parts, "dominant "+d)
	}
	if len(c.Palette) > 0 {
		parts = append(parts, "palette "+strings.Join(c.Palette, ", "))
	}
	return strings.Join(parts, ", ")
}

var roomTypesEnglish = []struct {
	keyword string
	english string
}{
	{"yatak", "bedroom"},
	{"çocuk", "kids room"},
	{"çalışma", "home office"},
	{"yemek", "dining room"},
	{"mutfak", "kitchen"},
	{"banyo", "bathroom"},
	{"antre", "entryway"},
	{"balkon", "balcony"},
	{"salon", "living room"},
	{"oturma", "living room"},
}

// RoomTypeEnglish maps common Turkish room names onto English.
func RoomTypeEnglish(room string) string {
	room = strings.TrimSpace(room)
	for _, rt := range roomTypesEnglish {
		if textnorm.ContainsAny(room, rt.keyword) {
			return rt.english
		}
	}
	if room == "" {
		return "room"
	}
	return room
}

// LocalImagePrompt builds a prompt without the text model.
func LocalImagePrompt(b ImageBrief, budget int) string {
	parts := []string{fmt.Sprintf("%s a %s %s", ImagePromptPrefix, strings.ToLower(strings.TrimSpace(b.DesignStyle)), RoomTypeEnglish(b.RoomType))}
	if shape, ok := DescribeDimensions(b.Width, b.Length); ok {
		parts = append(parts, shape.Text())
	}
	real, generated := splitProducts(b.Products)
	furniture := append(real, generated...)
	if len(furniture) > 5 {
		furniture = furniture[:5]
	}
	if len(furniture) > 0 {
		parts = append(parts, "featuring "+strings.Join(furniture, ", "))
	}
	if c := ColorText(b.Color); c != "" {
		parts = append(parts, "color scheme "+c)
	}
	parts = append(parts, "soft natural daylight, high detail, wide angle, professional interior photography")
	return FitImagePrompt(strings.Join(parts, ", "), budget)
}

// FitImagePrompt cleans model output, enforces the leading phrase and cuts
// the prompt to budget characters.
func FitImagePrompt(text string, budget int) string {
	if budget <= 0 {
		budget = DefaultImagePromptBudget
	}
	text = trimCodeFence(text)
	text = strings.Trim(text, "\"'` \n\t")
	text = strings.Join(strings.Fields(text), " ")
	if !strings.HasPrefix(strings.ToLower(text), strings.ToLower(ImagePromptPrefix)) {
		text = ImagePromptPrefix + " " + text
	}
	return textnorm.Truncate(text, budget)
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
