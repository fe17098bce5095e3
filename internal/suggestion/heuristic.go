package suggestion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/textnorm"
)

type section int

const (
	sectionNone section = iota
	sectionTitle
	sectionDescription
	sectionProducts
	sectionHashtags
)

// headerRules are evaluated in order against the label of a line; the first
// match selects the section.
var headerRules = []struct {
	section  section
	keywords []string
}{
	{sectionTitle, []string{"başlık", "title", "tasarım adı"}},
	{sectionHashtags, []string{"hashtag", "etiket", "tags"}},
	{sectionDescription, []string{"açıklama", "description", "genel bakış", "konsept", "concept"}},
	{sectionProducts, []string{"ürün", "product", "öneri", "mobilya", "furniture"}},
}

// maxHeaderLabel bounds how long a label may be and still count as a header.
const maxHeaderLabel = 40

var (
	bulletPattern = regexp.MustCompile(`^\s*(?:[-*•–]|\d+[.)])\s+`)
	pricePattern  = regexp.MustCompile(`(\d[\d.,]*)\s*(?:TL|₺)`)
)

type lineState struct {
	section     section
	title       string
	description []string
	preamble    []string
	products    []domain.ProductSuggestion
	tags        []string
}

func (p *Parser) parseLines(raw string) (domain.DesignSuggestion, error) {
	st := &lineState{}
	for _, rawLine := range strings.Split(trimCodeFence(raw), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		st.consume(line)
	}

	description := strings.Join(st.description, " ")
	if description == "" {
		description = strings.Join(st.preamble, " ")
	}
	if st.title == "" && description == "" {
		return domain.DesignSuggestion{}, fmt.Errorf("%w: no title or description found", domain.ErrMalformedOutput)
	}

	s := p.newSuggestion(domain.SourceHeuristic, raw)
	s.Title = textnorm.Truncate(st.title, TitleLimit)
	s.Description = strings.TrimSpace(description)
	s.Hashtags = p.hashtags(st.tags)
	for _, ps := range st.products {
		s.Products = append(s.Products, normalizeProduct(ps))
	}
	return s, nil
}

func (st *lineState) consume(line string) {
	bullet := bulletPattern.MatchString(line)
	if bullet && st.section == sectionProducts {
		st.addProduct(bulletPattern.ReplaceAllString(line, ""))
		return
	}

	plain := stripMarkdown(line)
	label, value, hasValue := splitHeader(plain)
	if sec, ok := matchHeader(label); ok {
		st.section = sec
		if hasValue {
			st.inline(sec, value)
		}
		return
	}

	switch st.section {
	case sectionTitle:
		if st.title == "" {
			st.title = plain
			return
		}
		st.description = append(st.description, plain)
	case sectionDescription:
		st.description = append(st.description, plain)
	case sectionProducts:
		if strings.Contains(plain, "(") {
			st.addProduct(plain)
		}
	case sectionHashtags:
		st.tags = append(st.tags, splitTags(plain)...)
	default:
		if isHeading(line) && st.title == "" {
			st.title = plain
			return
		}
		if tags := inlineTags(line); len(tags) > 1 {
			st.tags = append(st.tags, tags...)
			return
		}
		st.preamble = append(st.preamble, plain)
	}
}

func (st *lineState) inline(sec section, value string) {
	switch sec {
	case sectionTitle:
		st.title = value
	case sectionDescription:
		st.description = append(st.description, value)
	case sectionHashtags:
		st.tags = append(st.tags, splitTags(value)...)
	case sectionProducts:
		if strings.Contains(value, "(") {
			st.addProduct(value)
		}
	}
}

func (st *lineState) addProduct(entry string) {
	if ps, ok := parseProductLine(entry); ok {
		st.products = append(st.products, ps)
	}
}

// parseProductLine splits "name (description)", "name: description" and
// "name - description" in that order of preference.
func parseProductLine(entry string) (domain.ProductSuggestion, bool) {
	entry = strings.TrimSpace(stripMarkdown(entry))
	if entry == "" {
		return domain.ProductSuggestion{}, false
	}
	var name, desc string
	switch {
	case strings.Contains(entry, "("):
		open := strings.Index(entry, "(")
		name = entry[:open]
		rest := entry[open+1:]
		if close := strings.LastIndex(rest, ")"); close >= 0 {
			desc = rest[:close] + rest[close+1:]
		} else {
			desc = rest
		}
	case strings.Contains(entry, ":"):
		name, desc, _ = strings.Cut(entry, ":")
	case strings.Contains(entry, " - "):
		name, desc, _ = strings.Cut(entry, " - ")
	case strings.Contains(entry, " – "):
		name, desc, _ = strings.Cut(entry, " – ")
	default:
		name = entry
	}
	name = strings.TrimSpace(name)
	desc = strings.TrimSpace(desc)
	if name == "" {
		name, desc = desc, ""
	}
	if name == "" {
		return domain.ProductSuggestion{}, false
	}
	ps := domain.ProductSuggestion{
		Name:        name,
		Description: desc,
		Category:    InferCategory(name + " " + desc),
	}
	if m := pricePattern.FindStringSubmatch(entry); m != nil {
		if v, ok := parsePrice(m[1]); ok {
			ps.Price = &v
		}
	}
	return ps, true
}

func parsePrice(text string) (float64, bool) {
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", ".")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func matchHeader(label string) (section, bool) {
	if label == "" || utf8.RuneCountInString(label) > maxHeaderLabel {
		return sectionNone, false
	}
	for _, rule := range headerRules {
		if textnorm.ContainsAny(label, rule.keywords...) {
			return rule.section, true
		}
	}
	return sectionNone, false
}

// splitHeader returns the text before the first colon as label. Without a
// colon the whole line is the label.
func splitHeader(line string) (label, value string, hasValue bool) {
	before, after, found := strings.Cut(line, ":")
	if !found {
		return strings.TrimSpace(line), "", false
	}
	value = strings.TrimSpace(stripMarkdown(after))
	return strings.TrimSpace(before), value, value != ""
}

func stripMarkdown(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#")
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "__", "")
	return strings.TrimSpace(strings.Trim(line, "*_ "))
}

func isHeading(line string) bool {
	trimmed := strings.TrimLeft(line, "#")
	return len(trimmed) < len(line) && strings.HasPrefix(trimmed, " ")
}

// inlineTags returns the #tokens of a line.
func inlineTags(line string) []string {
	var tags []string
	for _, field := range splitTags(line) {
		if strings.HasPrefix(field, "#") && len(field) > 1 {
			tags = append(tags, field)
		}
	}
	return tags
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Aydınlatma", []string{"lamba", "aydınlatma", "avize", "abajur", "lambader", "lamp", "light", "chandelier"}},
	{"TV Ünitesi", []string{"tv", "televizyon", "media unit"}},
	{"Sehpa", []string{"sehpa", "coffee table", "side table"}},
	{"Koltuk", []string{"koltuk", "kanepe", "berjer", "sofa", "couch", "armchair"}},
	{"Sandalye", []string{"sandalye", "chair", "tabure", "stool"}},
	{"Masa", []string{"masa", "table", "desk"}},
	{"Komodin", []string{"komodin", "şifonyer", "nightstand"}},
	{"Yatak", []string{"yatak", "bed"}},
	{"Kitaplık", []string{"kitaplık", "bookshelf", "bookcase"}},
	{"Dolap", []string{"dolap", "gardırop", "wardrobe", "cabinet", "konsol"}},
	{"Halı", []string{"halı", "kilim", "rug", "carpet"}},
	{"Perde", []string{"perde", "stor perde", "curtain", "blind"}},
	{"Ayna", []string{"ayna", "mirror"}},
	{"Tablo", []string{"tablo", "poster", "çerçeve", "painting", "artwork", "wall art"}},
	{"Yastık", []string{"yastık", "kırlent", "cushion", "pillow"}},
	{"Vazo", []string{"vazo", "vase"}},
	{"Bitki", []string{"bitki", "saksı", "plant"}},
	{"Raf", []string{"raf", "shelf"}},
	{"Puf", []string{"puf", "pouf", "ottoman"}},
}

// InferCategory picks the first catalog category whose keywords occur in
// text, defaulting to decorative objects.
func InferCategory(text string) string {
	for _, ck := range categoryKeywords {
		if textnorm.ContainsAny(text, ck.keywords...) {
			return ck.category
		}
	}
	return domain.DefaultProductCategory
}
