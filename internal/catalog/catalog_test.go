package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/infra/sqltest"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestEffectiveLimit(t *testing.T) {
	tests := []struct {
		limit *int
		want  int
	}{
		{nil, DefaultLimit},
		{intPtr(0), 0},
		{intPtr(-3), 0},
		{intPtr(7), 7},
		{intPtr(500), MaxLimit},
	}
	for _, tc := range tests {
		if got := (Query{Limit: tc.limit}).EffectiveLimit(); got != tc.want {
			t.Fatalf("EffectiveLimit(%v) = %d, want %d", tc.limit, got, tc.want)
		}
	}
}

func productRow(id, name, category, style, color string, price *float64, image string) []any {
	return []any{id, name, category, style, color, price, "", image}
}

func TestStoreSearch(t *testing.T) {
	db := &sqltest.Executor{
		QueryFunc: func(query string, args []any) (pgx.Rows, error) {
			return sqltest.NewRows(
				productRow("1", "Gri kanepe", "Koltuk", "modern", "gri", floatPtr(12500), "products/kanepe.jpg"),
				productRow("2", "Kadife berjer", "Koltuk", "klasik", "gri", nil, "https://cdn.example.com/berjer.jpg"),
				productRow("3", "Fazla satır", "Koltuk", "", "", nil, ""),
			), nil
		},
	}
	store := NewStore(db, "http://localhost:8080/static/", zerolog.Nop())

	got, err := store.Search(context.Background(), Query{Category: " Koltuk ", Style: "modern", Color: "gri", MaxPrice: floatPtr(20000), Limit: intPtr(2)})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search returned %d rows, want 2", len(got))
	}
	if got[0].ImageURL != "http://localhost:8080/static/products/kanepe.jpg" {
		t.Fatalf("relative image url = %q", got[0].ImageURL)
	}
	if got[1].ImageURL != "https://cdn.example.com/berjer.jpg" {
		t.Fatalf("absolute image url = %q", got[1].ImageURL)
	}
	if got[0].Price == nil || *got[0].Price != 12500 {
		t.Fatalf("price = %v", got[0].Price)
	}

	calls := db.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one query, got %d", len(calls))
	}
	args := calls[0].Args
	if args[0] != "Koltuk" || args[1] != "modern" || args[2] != "gri" || args[4] != 2 {
		t.Fatalf("query args = %#v", args)
	}
	if !strings.HasPrefix(calls[0].Query, "--sql ") {
		t.Fatalf("query missing audit marker")
	}
}

func TestStoreSearchEscapesLikeWildcards(t *testing.T) {
	tests := []struct {
		style, color         string
		wantStyle, wantColor string
	}{
		{"%", "_", `\%`, `\_`},
		{"50%_off", `a\b`, `50\%\_off`, `a\\b`},
		{"modern", "", "modern", ""},
	}
	for _, tc := range tests {
		db := &sqltest.Executor{}
		store := NewStore(db, "", zerolog.Nop())
		if _, err := store.Search(context.Background(), Query{Category: "Koltuk", Style: tc.style, Color: tc.color}); err != nil {
			t.Fatalf("Search returned error: %v", err)
		}
		calls := db.Calls()
		if len(calls) != 1 {
			t.Fatalf("expected one query, got %d", len(calls))
		}
		args := calls[0].Args
		if args[1] != tc.wantStyle || args[2] != tc.wantColor {
			t.Fatalf("style/color %q/%q sent as %#v/%#v, want %q/%q", tc.style, tc.color, args[1], args[2], tc.wantStyle, tc.wantColor)
		}
		if !strings.Contains(calls[0].Query, `escape '\'`) {
			t.Fatalf("query does not declare the escape character")
		}
	}
}

func TestStoreSearchZeroLimitSkipsQuery(t *testing.T) {
	db := &sqltest.Executor{}
	store := NewStore(db, "", zerolog.Nop())
	got, err := store.Search(context.Background(), Query{Category: "Koltuk", Limit: intPtr(0)})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if len(db.Calls()) != 0 {
		t.Fatalf("expected no query for zero limit")
	}
}

func TestStoreSearchNoMatchIsEmpty(t *testing.T) {
	store := NewStore(&sqltest.Executor{}, "", zerolog.Nop())
	got, err := store.Search(context.Background(), Query{Category: "Bilinmeyen"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %d", len(got))
	}
}

func TestStoreSearchQueryError(t *testing.T) {
	boom := errors.New("connection reset")
	db := &sqltest.Executor{QueryFunc: func(string, []any) (pgx.Rows, error) { return nil, boom }}
	store := NewStore(db, "", zerolog.Nop())
	if _, err := store.Search(context.Background(), Query{Category: "Masa"}); !errors.Is(err, boom) {
		t.Fatalf("Search error = %v, want wrapped %v", err, boom)
	}
}

func TestMemorySearchSemantics(t *testing.T) {
	m := NewMemory("/static",
		domain.Product{Name: "Meşe masa", Category: "Masa", Style: "Rustik", Color: "kahverengi", Price: floatPtr(9000), ImagePath: "masa.jpg"},
		domain.Product{Name: "Beyaz masa", Category: "Masa", Style: "Minimalist", Color: "beyaz", Price: floatPtr(4000)},
		domain.Product{Name: "Cam masa", Category: "Masa", Style: "Modern", Color: "şeffaf"},
		domain.Product{Name: "Meşe sandalye", Category: "Sandalye", Style: "Rustik"},
	)
	ctx := context.Background()

	either, _ := m.Search(ctx, Query{Category: "Masa", Style: "rustik", Color: "BEYAZ"})
	if len(either) != 2 {
		t.Fatalf("style OR color should match 2 rows, got %d", len(either))
	}
	if either[0].ImageURL != "/static/masa.jpg" || either[0].ID != "1" {
		t.Fatalf("first row = %#v", either[0])
	}

	cheap, _ := m.Search(ctx, Query{Category: "Masa", MaxPrice: floatPtr(5000)})
	if len(cheap) != 1 || cheap[0].Name != "Beyaz masa" {
		t.Fatalf("price filter = %#v", cheap)
	}

	capped, _ := m.Search(ctx, Query{Category: "Masa", Limit: intPtr(1)})
	if len(capped) != 1 {
		t.Fatalf("limit not applied: %d rows", len(capped))
	}

	none, _ := m.Search(ctx, Query{Category: "Masa", Limit: intPtr(0)})
	if len(none) != 0 {
		t.Fatalf("zero limit returned rows")
	}
}

func TestParseSeed(t *testing.T) {
	data := []byte(`
products:
  - name: Gri kanepe
    category: Koltuk
    style: modern
    price: 12500
    image: products/gri-kanepe.jpg
  - name: Pirinç lambader
    category: Aydınlatma
`)
	products, err := ParseSeed(data)
	if err != nil {
		t.Fatalf("ParseSeed returned error: %v", err)
	}
	if len(products) != 2 || products[0].ImagePath != "products/gri-kanepe.jpg" || *products[0].Price != 12500 {
		t.Fatalf("products = %#v", products)
	}
	if got := Categories(products); strings.Join(got, ",") != "Aydınlatma,Koltuk" {
		t.Fatalf("Categories = %v", got)
	}

	if _, err := ParseSeed([]byte("products:\n  - name: X\n    category: Uzay Gemisi\n")); err == nil {
		t.Fatalf("expected unknown category error")
	}
}

func TestExampleSeedFileLoads(t *testing.T) {
	products, err := LoadSeed(filepath.Join("..", "..", "configs", "catalog.example.yaml"))
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(products) != 4 {
		t.Fatalf("got %d products, want 4", len(products))
	}
	if cats := Categories(products); len(cats) != 4 || cats[0] != "Aydınlatma" {
		t.Fatalf("categories = %v", cats)
	}
}
