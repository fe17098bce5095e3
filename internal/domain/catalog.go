package domain

// ProductCategories is the closed set of catalog categories the text model
// may search. The names match the products.category column.
var ProductCategories = []string{
	"Koltuk",
	"Sandalye",
	"Masa",
	"Sehpa",
	"Yatak",
	"Dolap",
	"Kitaplık",
	"TV Ünitesi",
	"Aydınlatma",
	"Halı",
	"Perde",
	"Ayna",
	"Tablo",
	"Yastık",
	"Vazo",
	"Bitki",
	"Raf",
	"Komodin",
	"Puf",
	"Dekoratif Obje",
}

// DefaultProductCategory is used when a category cannot be inferred.
const DefaultProductCategory = "Dekoratif Obje"

// IsProductCategory reports whether name is one of ProductCategories.
func IsProductCategory(name string) bool {
	for _, c := range ProductCategories {
		if c == name {
			return true
		}
	}
	return false
}
