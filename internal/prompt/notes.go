package prompt

import (
	"regexp"
	"strconv"
	"strings"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/textnorm"
)

var (
	dimensionsPattern = regexp.MustCompile(`(\d+)\s*[x×*]\s*(\d+)(?:\s*[x×*]\s*(\d+))?`)
	areaXPattern      = regexp.MustCompile(`(?i)\bx\s*[:=]\s*(-?\d+)`)
	areaYPattern      = regexp.MustCompile(`(?i)\by\s*[:=]\s*(-?\d+)`)
)

// noteRule extracts one field from a notes line. Rules are tried in order
// and the first one whose match returns true consumes the line.
type noteRule struct {
	name    string
	match   func(label string) bool
	extract func(pc *domain.ParsedContext, label, value string) bool
}

var noteRules = []noteRule{
	{
		name:  "extra_area",
		match: func(label string) bool { return textnorm.ContainsAny(label, "ek alan", "extra area", "niş", "alcove") },
		extract: func(pc *domain.ParsedContext, _, value string) bool {
			m := dimensionsPattern.FindStringSubmatch(value)
			if m == nil {
				return false
			}
			area := domain.ExtraArea{Width: atoi(m[1]), Length: atoi(m[2])}
			if x := areaXPattern.FindStringSubmatch(value); x != nil {
				area.X = atoi(x[1])
			}
			if y := areaYPattern.FindStringSubmatch(value); y != nil {
				area.Y = atoi(y[1])
			}
			pc.ExtraAreas = append(pc.ExtraAreas, area)
			return true
		},
	},
	{
		name:  "dimensions",
		match: func(label string) bool { return textnorm.ContainsAny(label, "boyut", "ölçü", "dimension", "size") },
		extract: func(pc *domain.ParsedContext, _, value string) bool {
			m := dimensionsPattern.FindStringSubmatch(value)
			if m == nil {
				return false
			}
			pc.Dimensions = &domain.Dimensions{Width: atoi(m[1]), Length: atoi(m[2]), Height: atoi(m[3])}
			return true
		},
	},
	{
		name:  "color_palette",
		match: func(label string) bool { return textnorm.ContainsAny(label, "renk", "palet", "color", "colour") },
		extract: func(pc *domain.ParsedContext, _, value string) bool {
			if value == "" {
				return false
			}
			pc.ColorPalette = value
			return true
		},
	},
	{
		name:  "product_categories",
		match: func(label string) bool { return textnorm.ContainsAny(label, "kategori", "categor") },
		extract: func(pc *domain.ParsedContext, _, value string) bool {
			for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' || r == '/' }) {
				if part = strings.TrimSpace(part); part != "" {
					pc.ProductCategories = append(pc.ProductCategories, part)
				}
			}
			return len(pc.ProductCategories) > 0
		},
	},
	{
		name:  "door_window",
		match: func(label string) bool { return textnorm.ContainsAny(label, "kapı", "pencere", "door", "window") },
		extract: func(pc *domain.ParsedContext, label, value string) bool {
			entry := value
			if label != value && !textnorm.ContainsAny(label, "konum", "position") {
				entry = label + ": " + value
			}
			if entry == "" {
				return false
			}
			pc.DoorWindowPositions = append(pc.DoorWindowPositions, entry)
			return true
		},
	},
}

// ParseNotes recovers structured hints from the free-text notes field.
// Unrecognized lines are kept verbatim as user notes.
func ParseNotes(notes string) domain.ParsedContext {
	var pc domain.ParsedContext
	var rest []string
	for _, raw := range strings.Split(notes, "\n") {
		line := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "-*•"))
		if line == "" {
			continue
		}
		label, value := splitLabel(line)
		consumed := false
		for _, rule := range noteRules {
			if rule.match(label) && rule.extract(&pc, label, value) {
				consumed = true
				break
			}
		}
		if !consumed {
			rest = append(rest, line)
		}
	}
	pc.UserNotes = strings.Join(rest, "\n")
	return pc
}

// splitLabel separates "Label: value". Lines without a colon use the whole
// line as both label and value.
func splitLabel(line string) (string, string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return line, line
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:])
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
