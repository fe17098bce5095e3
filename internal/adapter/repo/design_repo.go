package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/infra"
	"dekoassistant/internal/sqlinline"
)

// DesignRepositoryPG implements domain.DesignRepository on PostgreSQL.
type DesignRepositoryPG struct {
	db infra.SQLExecutor
}

func NewDesignRepository(db infra.SQLExecutor) *DesignRepositoryPG {
	return &DesignRepositoryPG{db: db}
}

// SaveDesign inserts d. Hashtags and products are stored as jsonb.
func (r *DesignRepositoryPG) SaveDesign(ctx context.Context, d *domain.DesignSuggestion) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("%w: design id is required", domain.ErrPersistence)
	}
	hashtags, err := json.Marshal(d.Hashtags)
	if err != nil {
		return fmt.Errorf("%w: encode hashtags: %v", domain.ErrPersistence, err)
	}
	products, err := json.Marshal(d.Products)
	if err != nil {
		return fmt.Errorf("%w: encode products: %v", domain.ErrPersistence, err)
	}
	_, err = r.db.Exec(ctx, sqlinline.QInsertDesign,
		d.ID,
		d.UserID,
		d.RoomType,
		d.DesignStyle,
		d.Title,
		d.Description,
		string(hashtags),
		string(products),
		d.Source,
		d.RawModelText,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert design: %v", domain.ErrPersistence, err)
	}
	return nil
}

// GetDesign fetches a design by id.
func (r *DesignRepositoryPG) GetDesign(ctx context.Context, id string) (*domain.DesignSuggestion, error) {
	var (
		d        domain.DesignSuggestion
		hashtags []byte
		products []byte
	)
	err := r.db.QueryRow(ctx, sqlinline.QSelectDesignByID, id).Scan(
		&d.ID,
		&d.UserID,
		&d.RoomType,
		&d.DesignStyle,
		&d.Title,
		&d.Description,
		&hashtags,
		&products,
		&d.Source,
		&d.RawModelText,
		&d.CreatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: select design: %v", domain.ErrPersistence, err)
	}
	d.Hashtags = domain.EmptyHashtags()
	if len(hashtags) > 0 {
		if err := json.Unmarshal(hashtags, &d.Hashtags); err != nil {
			return nil, fmt.Errorf("%w: decode hashtags: %v", domain.ErrPersistence, err)
		}
	}
	d.Products = []domain.ProductSuggestion{}
	if len(products) > 0 {
		if err := json.Unmarshal(products, &d.Products); err != nil {
			return nil, fmt.Errorf("%w: decode products: %v", domain.ErrPersistence, err)
		}
	}
	return &d, nil
}

var _ domain.DesignRepository = (*DesignRepositoryPG)(nil)
