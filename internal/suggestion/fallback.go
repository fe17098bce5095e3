package suggestion

import (
	"fmt"
	"strings"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/hashtag"
	"dekoassistant/internal/textnorm"
)

type stockProduct struct {
	category    string
	name        string
	description string
}

var stockProducts = []struct {
	keywords []string
	products []stockProduct
}{
	{[]string{"yatak", "bed"}, []stockProduct{
		{"Yatak", "Kumaş başlıklı çift kişilik yatak", "Odanın odak noktasını oluşturan, yumuşak dokulu başlığa sahip yatak."},
		{"Komodin", "Çekmeceli komodin", "Yatağın iki yanında simetri sağlayan kompakt saklama alanı."},
		{"Aydınlatma", "Sıcak ışıklı abajur", "Okuma ve dinlenme için yumuşak, dolaylı ışık."},
	}},
	{[]string{"mutfak", "kitchen"}, []stockProduct{
		{"Masa", "Ahşap yemek masası", "Günlük kullanıma uygun, dayanıklı yüzeyli masa."},
		{"Sandalye", "Minderli sandalye seti", "Masayla uyumlu, rahat oturum sunan sandalyeler."},
		{"Aydınlatma", "Sarkıt lamba", "Masanın üzerinde odaklı ve sıcak aydınlatma."},
	}},
	{[]string{"çalışma", "ofis", "office"}, []stockProduct{
		{"Masa", "Geniş çalışma masası", "Kablo düzenleyicili, ergonomik yükseklikte masa."},
		{"Sandalye", "Ergonomik sandalye", "Uzun süreli çalışmaya uygun bel destekli sandalye."},
		{"Kitaplık", "Açık raflı kitaplık", "Dosya ve dekoratif objeler için düzenli saklama."},
	}},
}

var defaultStockProducts = []stockProduct{
	{"Koltuk", "Üçlü kanepe", "Oturma alanının merkezinde, nötr tonlu ve rahat kanepe."},
	{"Sehpa", "Yuvarlak orta sehpa", "Kanepeyle dengeli oran oluşturan, ahşap detaylı sehpa."},
	{"Halı", "Dokulu yün halı", "Alanı tanımlayan ve sıcaklık katan doğal halı."},
}

// Fallback builds a deterministic suggestion for req without any model
// output. It always carries a complete hashtag set.
func (p *Parser) Fallback(req domain.DesignRequest) domain.DesignSuggestion {
	style := strings.TrimSpace(req.DesignStyle)
	room := strings.TrimSpace(req.RoomType)

	s := p.newSuggestion(domain.SourceFallback, "")
	s.Title = textnorm.Truncate(textnorm.Title(style+" "+room)+" Tasarımı", TitleLimit)

	sentences := []string{
		fmt.Sprintf("%s tarzı, %s için sade ve dengeli bir düzen öneriyoruz.", textnorm.Title(style), textnorm.Fold(room)),
		"Ana mobilyalar alanın akışını bozmadan yerleştirilir, aydınlatma katmanlı kurgulanır.",
	}
	if req.Color != nil && strings.TrimSpace(req.Color.Name) != "" {
		sentences = append(sentences, fmt.Sprintf("Renk paletinde %s tonları ön plana çıkar.", strings.TrimSpace(req.Color.Name)))
	} else {
		sentences = append(sentences, "Nötr tonlar doğal dokularla desteklenir.")
	}
	s.Description = strings.Join(sentences, " ")

	s.Hashtags = p.hashtags(hashtag.StockTags(style, room))
	for _, sp := range productsForRoom(room) {
		s.Products = append(s.Products, normalizeProduct(domain.ProductSuggestion{
			Category:    sp.category,
			Name:        sp.name,
			Description: sp.description,
			Style:       style,
		}))
	}
	return s
}

func productsForRoom(room string) []stockProduct {
	for _, group := range stockProducts {
		if textnorm.ContainsAny(room, group.keywords...) {
			return group.products
		}
	}
	return defaultStockProducts
}
