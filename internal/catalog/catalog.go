// Package catalog searches the read-only product catalog the text model may
// query through the find_product tool.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/infra"
	"dekoassistant/internal/sqlinline"
)

const (
	DefaultLimit = 5
	MaxLimit     = 20
)

// Query describes one catalog lookup. Category must match exactly; Style and
// Color are alternatives, either one qualifies a row. A nil Limit means
// DefaultLimit.
type Query struct {
	Category string
	Style    string
	Color    string
	MaxPrice *float64
	Limit    *int
}

// EffectiveLimit resolves the row cap for q.
func (q Query) EffectiveLimit() int {
	if q.Limit == nil {
		return DefaultLimit
	}
	if *q.Limit > MaxLimit {
		return MaxLimit
	}
	if *q.Limit < 0 {
		return 0
	}
	return *q.Limit
}

// Searcher is the lookup contract used by the tool loop.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]domain.Product, error)
}

// Store queries the products table.
type Store struct {
	db      infra.SQLExecutor
	baseURL string
	logger  zerolog.Logger
}

func NewStore(db infra.SQLExecutor, baseURL string, logger zerolog.Logger) *Store {
	return &Store{db: db, baseURL: baseURL, logger: logger}
}

func (s *Store) Search(ctx context.Context, q Query) ([]domain.Product, error) {
	limit := q.EffectiveLimit()
	category := strings.TrimSpace(q.Category)
	if limit == 0 || category == "" {
		return []domain.Product{}, nil
	}

	rows, err := s.db.Query(ctx, sqlinline.QSearchProducts,
		category,
		escapeLike(strings.TrimSpace(q.Style)),
		escapeLike(strings.TrimSpace(q.Color)),
		q.MaxPrice,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Style, &p.Color, &p.Price, &p.Description, &p.ImagePath); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.ImageURL = PublicImageURL(s.baseURL, p.ImagePath)
		products = append(products, p)
		if len(products) == limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	s.logger.Debug().Str("category", category).Int("found", len(products)).Msg("catalog search")
	return products, nil
}

// Insert adds p and returns its id.
func (s *Store) Insert(ctx context.Context, p domain.Product) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, sqlinline.QInsertProduct,
		p.Name, p.Category, p.Style, p.Color, p.Price, p.Description, p.ImagePath,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

// ReplaceCategory removes every product of category.
func (s *Store) ReplaceCategory(ctx context.Context, category string) error {
	if _, err := s.db.Exec(ctx, sqlinline.QDeleteProductsByCategory, category); err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}

// PublicImageURL rewrites a stored relative image path into a URL under
// baseURL. Absolute URLs are returned as is.
func PublicImageURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return base + "/" + strings.TrimLeft(path, "/")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user text match literally inside an ilike pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }

var _ Searcher = (*Store)(nil)
