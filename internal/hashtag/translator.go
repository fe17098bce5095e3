// Package hashtag maps generated English hashtags onto their Turkish
// display form.
package hashtag

import (
	"strings"
)

var vocabulary = map[string]string{
	"interiordesign":    "içmimari",
	"homedecor":         "evdekorasyonu",
	"decoration":        "dekorasyon",
	"homedesign":        "evtasarımı",
	"modern":            "modern",
	"minimalist":        "minimalist",
	"scandinavian":      "iskandinav",
	"industrial":        "endüstriyel",
	"bohemian":          "bohem",
	"classic":           "klasik",
	"rustic":            "rustik",
	"vintage":           "vintage",
	"contemporary":      "çağdaş",
	"luxury":            "lüks",
	"country":           "country",
	"japandi":           "japandi",
	"livingroom":        "salon",
	"bedroom":           "yatakodası",
	"kitchen":           "mutfak",
	"bathroom":          "banyo",
	"diningroom":        "yemekodası",
	"kidsroom":          "çocukodası",
	"homeoffice":        "çalışmaodası",
	"balcony":           "balkon",
	"hallway":           "antre",
	"cozy":              "sıcak",
	"cozyhome":          "sıcakyuva",
	"naturallight":      "doğalışık",
	"lighting":          "aydınlatma",
	"furniture":         "mobilya",
	"sofa":              "koltuk",
	"rug":               "halı",
	"curtains":          "perde",
	"plants":            "bitkiler",
	"wood":              "ahşap",
	"woodendetails":     "ahşapdetaylar",
	"neutraltones":      "nötrtonlar",
	"earthtones":        "topraktonları",
	"pastel":            "pastel",
	"colorful":          "renkli",
	"blackandwhite":     "siyahbeyaz",
	"textures":          "dokular",
	"smallspaces":       "küçükalanlar",
	"spacesaving":       "alantasarrufu",
	"functional":        "fonksiyonel",
	"elegant":           "zarif",
	"relaxing":          "dinlendirici",
	"homeinspiration":   "evilhamı",
	"decorideas":        "dekorasyonfikirleri",
	"renovation":        "yenileme",
	"wallart":           "duvarsanatı",
	"accentwall":        "vurguduvarı",
	"storage":           "depolama",
	"textiles":          "tekstil",
	"ceramics":          "seramik",
	"greenery":          "yeşillik",
	"mood":              "atmosfer",
	"design":            "tasarım",
	"style":             "stil",
	"home":              "ev",
	"dekoassistant":     "dekoasistan",
	"aidesign":          "yapayzekatasarım",
	"moodboard":         "ilhampanosu",
	"warmcolors":        "sıcakrenkler",
	"coolcolors":        "soğukrenkler",
	"openplan":          "açıkplan",
	"sustainabledesign": "sürdürülebilirtasarım",
}

// Result holds the parallel hashtag forms plus the canonical tags the table
// had no entry for.
type Result struct {
	Canonical  []string
	Translated []string
	Display    []string
	Unknown    []string
}

// Translator is stateless; the zero value is ready to use.
type Translator struct{}

// NewTranslator returns a Translator backed by the static vocabulary.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate normalizes each tag and looks it up. Tags that normalize to an
// empty string are skipped; unknown tags pass through unchanged.
func (t *Translator) Translate(tags []string) Result {
	res := Result{
		Canonical:  make([]string, 0, len(tags)),
		Translated: make([]string, 0, len(tags)),
		Display:    make([]string, 0, len(tags)),
	}
	for _, tag := range tags {
		canonical := Normalize(tag)
		if canonical == "" {
			continue
		}
		translated, ok := vocabulary[canonical]
		if !ok {
			translated = canonical
			res.Unknown = append(res.Unknown, canonical)
		}
		res.Canonical = append(res.Canonical, canonical)
		res.Translated = append(res.Translated, translated)
		res.Display = append(res.Display, "#"+translated)
	}
	return res
}

// Known reports whether the canonical tag has a translation.
func (t *Translator) Known(tag string) bool {
	_, ok := vocabulary[Normalize(tag)]
	return ok
}

// Normalize strips hash signs and whitespace and lowercases the tag.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#")
	tag = strings.Join(strings.Fields(tag), "")
	return strings.ToLower(tag)
}

// StockTags is the fixed set used when no model output is available.
func StockTags(style, room string) []string {
	tags := []string{"interiordesign", "homedecor", "decoration", "homedesign"}
	if s := Normalize(style); s != "" && s != "interiordesign" {
		tags = append(tags, s)
	} else {
		tags = append(tags, "modern")
	}
	tags = append(tags, roomTag(room), "cozyhome", "decorideas", "homeinspiration", "dekoassistant")
	return tags
}

func roomTag(room string) string {
	r := strings.ToLower(room)
	switch {
	case strings.Contains(r, "yatak") || strings.Contains(r, "bed"):
		return "bedroom"
	case strings.Contains(r, "mutfak") || strings.Contains(r, "kitchen"):
		return "kitchen"
	case strings.Contains(r, "banyo") || strings.Contains(r, "bath"):
		return "bathroom"
	case strings.Contains(r, "çocuk") || strings.Contains(r, "kid"):
		return "kidsroom"
	case strings.Contains(r, "çalışma") || strings.Contains(r, "ofis") || strings.Contains(r, "office"):
		return "homeoffice"
	case strings.Contains(r, "yemek") || strings.Contains(r, "dining"):
		return "diningroom"
	case strings.Contains(r, "balkon") || strings.Contains(r, "balcony"):
		return "balcony"
	default:
		return "livingroom"
	}
}
