package repo

import (
	"context"
	"fmt"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/infra"
	"dekoassistant/internal/sqlinline"
)

// VisualizationRepositoryPG implements domain.VisualizationRepository on
// PostgreSQL. Image bytes are not stored; rows point at the object store.
type VisualizationRepositoryPG struct {
	db infra.SQLExecutor
}

func NewVisualizationRepository(db infra.SQLExecutor) *VisualizationRepositoryPG {
	return &VisualizationRepositoryPG{db: db}
}

func (r *VisualizationRepositoryPG) SaveVisualization(ctx context.Context, v *domain.VisualizationResult) error {
	if v == nil || v.MoodBoardID == "" {
		return fmt.Errorf("%w: mood board id is required", domain.ErrPersistence)
	}
	_, err := r.db.Exec(ctx, sqlinline.QInsertVisualization,
		v.MoodBoardID,
		v.DesignID,
		v.UserID,
		v.StorageKey,
		v.ImageURL,
		v.Prompt,
		v.Metadata.Model,
		v.Success,
		v.Metadata.Fallback,
		v.ErrorMessage,
		v.Metadata.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert visualization: %v", domain.ErrPersistence, err)
	}
	return nil
}

// GetVisualization returns the stored row. ImageBase64 is left empty.
func (r *VisualizationRepositoryPG) GetVisualization(ctx context.Context, moodBoardID string) (*domain.VisualizationResult, error) {
	var v domain.VisualizationResult
	err := r.db.QueryRow(ctx, sqlinline.QSelectVisualizationByID, moodBoardID).Scan(
		&v.MoodBoardID,
		&v.DesignID,
		&v.UserID,
		&v.StorageKey,
		&v.ImageURL,
		&v.Prompt,
		&v.Metadata.Model,
		&v.Success,
		&v.Metadata.Fallback,
		&v.ErrorMessage,
		&v.Metadata.GeneratedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: select visualization: %v", domain.ErrPersistence, err)
	}
	v.Metadata.Success = v.Success
	return &v, nil
}

var _ domain.VisualizationRepository = (*VisualizationRepositoryPG)(nil)
