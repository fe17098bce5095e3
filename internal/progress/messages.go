package progress

import (
	"strings"

	"dekoassistant/internal/domain"
)

const (
	LocaleTurkish = "tr"
	LocaleEnglish = "en"

	DefaultLocale = LocaleTurkish
)

var messages = map[string]map[string]string{
	LocaleTurkish: {
		domain.MsgPreparingPrompt:  "Görsel için tasarım bilgileri hazırlanıyor...",
		domain.MsgPromptReady:      "Görsel tarifi hazır.",
		domain.MsgGeneratingImage:  "Yapay zeka görseli oluşturuyor...",
		domain.MsgImageComposition: "Oda yerleşimi kurgulanıyor...",
		domain.MsgImageLighting:    "Işık ve gölgeler ayarlanıyor...",
		domain.MsgImageMaterials:   "Malzeme ve dokular işleniyor...",
		domain.MsgImageFurniture:   "Mobilyalar yerleştiriliyor...",
		domain.MsgImageDetails:     "Son detaylar ekleniyor...",
		domain.MsgProcessingImage:  "Görsel işleniyor...",
		domain.MsgImageSaved:       "Görsel kaydedildi.",
		domain.MsgFinalizing:       "Mood board tamamlanıyor...",
		domain.MsgCompleted:        "Mood board hazır!",
		domain.MsgFailed:           "Görsel oluşturulamadı.",
	},
	LocaleEnglish: {
		domain.MsgPreparingPrompt:  "Preparing the design details for the image...",
		domain.MsgPromptReady:      "Image description is ready.",
		domain.MsgGeneratingImage:  "The AI is generating your image...",
		domain.MsgImageComposition: "Composing the room layout...",
		domain.MsgImageLighting:    "Adjusting light and shadows...",
		domain.MsgImageMaterials:   "Rendering materials and textures...",
		domain.MsgImageFurniture:   "Placing the furniture...",
		domain.MsgImageDetails:     "Adding the final details...",
		domain.MsgProcessingImage:  "Processing the image...",
		domain.MsgImageSaved:       "Image saved.",
		domain.MsgFinalizing:       "Finishing the mood board...",
		domain.MsgCompleted:        "Your mood board is ready!",
		domain.MsgFailed:           "The image could not be generated.",
	},
}

// NormalizeLocale maps a locale tag onto a supported language, defaulting
// to Turkish.
func NormalizeLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(l, "-_"); i > 0 {
		l = l[:i]
	}
	if _, ok := messages[l]; ok {
		return l
	}
	return DefaultLocale
}

// Message resolves key for locale. Unknown keys return the key itself.
func Message(locale, key string) string {
	if text, ok := messages[NormalizeLocale(locale)][key]; ok {
		return text
	}
	if text, ok := messages[DefaultLocale][key]; ok {
		return text
	}
	return key
}
