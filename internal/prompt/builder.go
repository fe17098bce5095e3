// Package prompt renders design requests into prompts for the text and image
// models. Every function here is pure.
package prompt

import (
	"fmt"
	"strings"

	"dekoassistant/internal/domain"
)

// FindProductTool is the function name the hybrid prompt refers to.
const FindProductTool = "find_product"

const replySchema = `{"title":string,"description":string,"hashtags":string[10],"products":[{"category":string,"name":string,"description":string,"price":number|null,"style":string,"color":string,"is_real":boolean,"product_id":string}]}`

// BuildDirect asks the model to invent every product.
func BuildDirect(req domain.DesignRequest, pc domain.ParsedContext) string {
	sb := &strings.Builder{}
	sb.WriteString("Sen deneyimli bir iç mimar ve dekorasyon danışmanısın. Aşağıdaki oda için bir dekorasyon planı hazırla.\n\n")
	writeRoomSection(sb, req, pc)
	sb.WriteString("\nÜrünleri kendin öner: kategori, isim, kısa açıklama ve mümkünse tahmini fiyat ver. Tüm ürünlerde is_real=false olsun.\n")
	writeReplyRules(sb)
	return sb.String()
}

// BuildHybrid asks the model to look products up through find_product first
// and to invent only what the catalog could not supply.
func BuildHybrid(req domain.DesignRequest, pc domain.ParsedContext) string {
	sb := &strings.Builder{}
	sb.WriteString("Sen deneyimli bir iç mimar ve dekorasyon danışmanısın. Aşağıdaki oda için bir dekorasyon planı hazırla.\n\n")
	writeRoomSection(sb, req, pc)
	fmt.Fprintf(sb, "\nÖnce %s aracını kullanarak katalogdaki gerçek ürünleri ara. Kategori şu listeden biri olmalı: %s. ", FindProductTool, strings.Join(domain.ProductCategories, ", "))
	sb.WriteString("Stil ve renk bilgisini aramaya ekle. Bulunan ürünleri is_real=true ve product_id ile, katalogdaki isim ve fiyatıyla listele. ")
	sb.WriteString("Katalogda bulunamayan kategoriler için ürünü kendin öner ve is_real=false yaz.\n")
	writeReplyRules(sb)
	return sb.String()
}

func writeRoomSection(sb *strings.Builder, req domain.DesignRequest, pc domain.ParsedContext) {
	fmt.Fprintf(sb, "Oda tipi: %s\n", strings.TrimSpace(req.RoomType))
	fmt.Fprintf(sb, "Tasarım stili: %s\n", strings.TrimSpace(req.DesignStyle))

	width, length, height := deref(req.Width), deref(req.Length), deref(req.Height)
	if (width == 0 || length == 0) && pc.Dimensions != nil {
		width, length, height = pc.Dimensions.Width, pc.Dimensions.Length, pc.Dimensions.Height
	}
	if shape, ok := DescribeDimensions(width, length); ok {
		fmt.Fprintf(sb, "Oda ölçüleri: %d x %d cm (yaklaşık %.1f m², %s, %s)", width, length, shape.AreaM2, shape.Size, shape.Aspect)
		if height > 0 {
			fmt.Fprintf(sb, ", tavan yüksekliği %d cm", height)
		}
		sb.WriteString("\n")
	}
	for i, area := range pc.ExtraAreas {
		fmt.Fprintf(sb, "Ek alan %d: %d x %d cm, konum x=%d y=%d\n", i+1, area.Width, area.Length, area.X, area.Y)
	}
	if len(pc.DoorWindowPositions) > 0 {
		fmt.Fprintf(sb, "Kapı/pencere konumları: %s\n", strings.Join(pc.DoorWindowPositions, "; "))
	}

	if c := ColorText(req.Color); c != "" {
		fmt.Fprintf(sb, "Renk tercihi: %s\n", c)
	} else if pc.ColorPalette != "" {
		fmt.Fprintf(sb, "Renk tercihi: %s\n", pc.ColorPalette)
	}

	categories := req.Categories.Names()
	if len(categories) == 0 {
		categories = pc.ProductCategories
	}
	if len(categories) > 0 {
		fmt.Fprintf(sb, "İstenen ürün kategorileri: %s\n", strings.Join(categories, ", "))
	}
	if req.Categories != nil && req.Categories.Custom != "" {
		fmt.Fprintf(sb, "Ürün tercihi: %s\n", req.Categories.Custom)
	}
	if req.PriceCeiling != nil && *req.PriceCeiling > 0 {
		fmt.Fprintf(sb, "Ürün başına bütçe üst sınırı: %.0f TL\n", *req.PriceCeiling)
	}
	if n := strings.TrimSpace(pc.UserNotes); n != "" {
		fmt.Fprintf(sb, "Kullanıcı notları: %s\n", n)
	}
}

func writeReplyRules(sb *strings.Builder) {
	sb.WriteString("\nYanıtı yalnızca şu JSON şemasında ver: ")
	sb.WriteString(replySchema)
	sb.WriteString("\nKurallar: başlık en fazla 60 karakter; açıklama 2-4 cümle; hashtags tam olarak 10 adet, İngilizce, küçük harf, boşluksuz ve # işareti olmadan; en az 4 ürün öner. Metin alanları Türkçe olsun.\n")
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```text")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
