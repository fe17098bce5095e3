package repo

import (
	"context"
	"fmt"
	"sync"

	"dekoassistant/internal/domain"
)

// MemoryStore keeps designs and visualizations in process. It is used when
// no database is configured and holds at most limit entries of each kind.
type MemoryStore struct {
	mu             sync.RWMutex
	limit          int
	designs        map[string]domain.DesignSuggestion
	designOrder    []string
	visualizations map[string]domain.VisualizationResult
	vizOrder       []string
}

// DefaultMemoryLimit bounds each collection of a MemoryStore.
const DefaultMemoryLimit = 500

func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemoryStore{
		limit:          limit,
		designs:        make(map[string]domain.DesignSuggestion),
		visualizations: make(map[string]domain.VisualizationResult),
	}
}

func (s *MemoryStore) SaveDesign(_ context.Context, d *domain.DesignSuggestion) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("%w: design id is required", domain.ErrPersistence)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.designs[d.ID]; !exists {
		s.designOrder = append(s.designOrder, d.ID)
	}
	s.designs[d.ID] = cloneDesign(*d)
	for len(s.designOrder) > s.limit {
		delete(s.designs, s.designOrder[0])
		s.designOrder = s.designOrder[1:]
	}
	return nil
}

func (s *MemoryStore) GetDesign(_ context.Context, id string) (*domain.DesignSuggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.designs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneDesign(d)
	return &out, nil
}

// SaveVisualization stores v without its inline image payload.
func (s *MemoryStore) SaveVisualization(_ context.Context, v *domain.VisualizationResult) error {
	if v == nil || v.MoodBoardID == "" {
		return fmt.Errorf("%w: mood board id is required", domain.ErrPersistence)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.visualizations[v.MoodBoardID]; !exists {
		s.vizOrder = append(s.vizOrder, v.MoodBoardID)
	}
	stored := *v
	stored.ImageBase64 = ""
	s.visualizations[v.MoodBoardID] = stored
	for len(s.vizOrder) > s.limit {
		delete(s.visualizations, s.vizOrder[0])
		s.vizOrder = s.vizOrder[1:]
	}
	return nil
}

func (s *MemoryStore) GetVisualization(_ context.Context, moodBoardID string) (*domain.VisualizationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visualizations[moodBoardID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func cloneDesign(d domain.DesignSuggestion) domain.DesignSuggestion {
	d.Products = append([]domain.ProductSuggestion(nil), d.Products...)
	d.Hashtags = domain.Hashtags{
		Canonical:  append([]string{}, d.Hashtags.Canonical...),
		Translated: append([]string{}, d.Hashtags.Translated...),
		Display:    append([]string{}, d.Hashtags.Display...),
	}
	return d
}

var (
	_ domain.DesignRepository        = (*MemoryStore)(nil)
	_ domain.VisualizationRepository = (*MemoryStore)(nil)
)
