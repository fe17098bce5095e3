package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/textnorm"
)

// Memory is a Searcher over an in-process product list. It backs local
// development when no database is configured.
type Memory struct {
	mu       sync.RWMutex
	products []domain.Product
	baseURL  string
}

func NewMemory(baseURL string, products ...domain.Product) *Memory {
	m := &Memory{baseURL: baseURL}
	for _, p := range products {
		m.Add(p)
	}
	return m
}

// Add appends p, assigning a sequential id when p has none.
func (m *Memory) Add(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = strconv.Itoa(len(m.products) + 1)
	}
	m.products = append(m.products, p)
}

func (m *Memory) Search(ctx context.Context, q Query) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := q.EffectiveLimit()
	category := strings.TrimSpace(q.Category)
	if limit == 0 || category == "" {
		return []domain.Product{}, nil
	}
	style := strings.TrimSpace(q.Style)
	color := strings.TrimSpace(q.Color)

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0, limit)
	for _, p := range m.products {
		if p.Category != category {
			continue
		}
		if style != "" || color != "" {
			styleHit := style != "" && textnorm.ContainsAny(p.Style, style)
			colorHit := color != "" && textnorm.ContainsAny(p.Color, color)
			if !styleHit && !colorHit {
				continue
			}
		}
		if q.MaxPrice != nil && (p.Price == nil || *p.Price > *q.MaxPrice) {
			continue
		}
		p.ImageURL = PublicImageURL(m.baseURL, p.ImagePath)
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// SeedFile is the YAML layout read by LoadSeed:
//
//	products:
//	  - name: Gri kanepe
//	    category: Koltuk
//	    style: modern
//	    price: 12500
//	    image: products/gri-kanepe.jpg
type SeedFile struct {
	Products []SeedProduct `yaml:"products"`
}

type SeedProduct struct {
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Style       string   `yaml:"style"`
	Color       string   `yaml:"color"`
	Price       *float64 `yaml:"price"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
}

// LoadSeed reads and validates a catalog seed file. Categories must be one
// of domain.ProductCategories.
func LoadSeed(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]domain.Product, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	products := make([]domain.Product, 0, len(file.Products))
	for i, sp := range file.Products {
		name := strings.TrimSpace(sp.Name)
		if name == "" {
			return nil, fmt.Errorf("seed product %d: name is required", i)
		}
		if !domain.IsProductCategory(sp.Category) {
			return nil, fmt.Errorf("seed product %q: unknown category %q", name, sp.Category)
		}
		if sp.Price != nil && *sp.Price < 0 {
			return nil, fmt.Errorf("seed product %q: negative price", name)
		}
		products = append(products, domain.Product{
			Name:        name,
			Category:    sp.Category,
			Style:       strings.TrimSpace(sp.Style),
			Color:       strings.TrimSpace(sp.Color),
			Price:       sp.Price,
			Description: strings.TrimSpace(sp.Description),
			ImagePath:   strings.TrimSpace(sp.Image),
		})
	}
	return products, nil
}

// Categories returns the distinct categories in products, sorted.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		seen[p.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

var _ Searcher = (*Memory)(nil)
