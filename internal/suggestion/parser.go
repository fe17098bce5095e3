// Package suggestion turns text model replies into design suggestions.
package suggestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/hashtag"
	"dekoassistant/internal/textnorm"
)

// TitleLimit is the maximum title length in runes.
const TitleLimit = 60

// Parser is safe for concurrent use.
type Parser struct {
	translator *hashtag.Translator
	now        func() time.Time
}

// NewParser builds a parser around the hashtag translator. A nil translator
// uses the static vocabulary.
func NewParser(translator *hashtag.Translator) *Parser {
	if translator == nil {
		translator = hashtag.NewTranslator()
	}
	return &Parser{translator: translator, now: time.Now}
}

type modelReply struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Hashtags    json.RawMessage `json:"hashtags"`
	Products    []modelProduct  `json:"products"`
}

type modelProduct struct {
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       flexNumber `json:"price"`
	Style       string     `json:"style"`
	Color       string     `json:"color"`
	IsReal      flexBool   `json:"is_real"`
	ProductID   flexString `json:"product_id"`
	ImageURL    string     `json:"image_url"`
}

// Parse reads raw model text. JSON is tried first, then the line rules.
// ErrMalformedOutput means neither produced a title or description.
func (p *Parser) Parse(raw string) (domain.DesignSuggestion, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.DesignSuggestion{}, fmt.Errorf("%w: empty reply", domain.ErrMalformedOutput)
	}
	if s, err := p.parseJSON(raw); err == nil {
		return s, nil
	}
	s, err := p.parseLines(raw)
	if err != nil {
		return domain.DesignSuggestion{}, err
	}
	return s, nil
}

func (p *Parser) parseJSON(raw string) (domain.DesignSuggestion, error) {
	cleaned := trimCodeFence(raw)
	fields, err := decodeObject(cleaned)
	if err != nil {
		fields, err = decodeObject(extractJSONFragment(raw))
		if err != nil {
			return domain.DesignSuggestion{}, err
		}
	}
	for _, key := range []string{"title", "description", "products"} {
		if _, ok := fields[key]; !ok {
			return domain.DesignSuggestion{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedOutput, key)
		}
	}
	var reply modelReply
	if err := remarshal(fields, &reply); err != nil {
		return domain.DesignSuggestion{}, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}

	s := p.newSuggestion(domain.SourceModel, raw)
	s.Title = textnorm.Truncate(reply.Title, TitleLimit)
	s.Description = strings.TrimSpace(reply.Description)
	s.Hashtags = p.hashtags(decodeTags(reply.Hashtags))
	for _, mp := range reply.Products {
		s.Products = append(s.Products, normalizeProduct(domain.ProductSuggestion{
			Category:    mp.Category,
			Name:        mp.Name,
			Description: mp.Description,
			Price:       mp.Price.ptr(),
			Style:       mp.Style,
			Color:       mp.Color,
			IsReal:      bool(mp.IsReal),
			ProductID:   string(mp.ProductID),
			ImageURL:    mp.ImageURL,
		}))
	}
	return s, nil
}

func (p *Parser) newSuggestion(source, raw string) domain.DesignSuggestion {
	return domain.DesignSuggestion{
		Hashtags:     domain.EmptyHashtags(),
		Products:     []domain.ProductSuggestion{},
		Source:       source,
		RawModelText: raw,
		CreatedAt:    p.now().UTC(),
	}
}

// hashtags translates the tags when the reply carries exactly ten of them and
// each one normalizes to a usable tag. Anything else yields the empty set;
// blanks are never filtered to reach the count.
func (p *Parser) hashtags(tags []string) domain.Hashtags {
	if len(tags) != domain.HashtagCount {
		return domain.EmptyHashtags()
	}
	usable := make([]string, 0, len(tags))
	for _, tag := range tags {
		n := hashtag.Normalize(tag)
		if n == "" {
			return domain.EmptyHashtags()
		}
		usable = append(usable, n)
	}
	res := p.translator.Translate(usable)
	h := domain.Hashtags{Canonical: res.Canonical, Translated: res.Translated, Display: res.Display}
	if !h.Complete() {
		return domain.EmptyHashtags()
	}
	return h
}

// normalizeProduct applies the type tag and the default category.
func normalizeProduct(ps domain.ProductSuggestion) domain.ProductSuggestion {
	ps.Name = strings.TrimSpace(strings.Trim(ps.Name, "*_"))
	ps.Description = strings.TrimSpace(ps.Description)
	ps.Category = strings.TrimSpace(ps.Category)
	if ps.Category == "" {
		ps.Category = InferCategory(ps.Name + " " + ps.Description)
	}
	ps.ProductID = strings.TrimSpace(ps.ProductID)
	ps.Type = domain.ProductTypeGenerated
	if ps.IsReal {
		ps.Type = domain.ProductTypeReal
	}
	return ps
}

func decodeObject(text string) (map[string]json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty payload")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("payload is not an object")
	}
	return fields, nil
}

func remarshal(fields map[string]json.RawMessage, out any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// decodeTags accepts a list, a {"en": [...]} object or a space separated
// string of tags.
func decodeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var obj map[string][]string
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"en", "canonical", "english"} {
			if tags, ok := obj[key]; ok {
				return tags
			}
		}
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return splitTags(text)
	}
	return nil
}

func splitTags(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == ';'
	})
}

type flexNumber struct {
	value *float64
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), "\"")
	if text == "" || text == "null" {
		return nil
	}
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(text, "TL"), "₺"))
	text = strings.ReplaceAll(text, ",", ".")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	f.value = &v
	return nil
}

func (f flexNumber) ptr() *float64 { return f.value }

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(string(data)), "\"")) {
	case "true", "1", "yes", "evet":
		*b = true
	default:
		*b = false
	}
	return nil
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	*s = flexString(text)
	return nil
}

func extractJSONFragment(raw string) string {
	text := trimCodeFence(strings.TrimSpace(raw))
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(text[start : end+1])
	}
	return ""
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
