package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dekoassistant/internal/domain"
	"dekoassistant/internal/infra/sqltest"
	"dekoassistant/internal/sqlinline"
)

func sampleDesign() *domain.DesignSuggestion {
	price := 4500.0
	return &domain.DesignSuggestion{
		ID:          "5e3c7f1a-9f3e-4d59-8d6c-0c8f3a6f5b11",
		UserID:      "user-7",
		RoomType:    "salon",
		DesignStyle: "modern",
		Title:       "Modern Salon",
		Description: "Ferah bir salon.",
		Hashtags: domain.Hashtags{
			Canonical:  []string{"modern"},
			Translated: []string{"modern"},
			Display:    []string{"#modern"},
		},
		Products: []domain.ProductSuggestion{{
			Type: domain.ProductTypeReal, Category: "Koltuk", Name: "Lina Koltuk",
			Price: &price, IsReal: true, ProductID: "12",
		}},
		Source:       domain.SourceModel,
		RawModelText: "{}",
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestDesignRepositorySaveEncodesJSON(t *testing.T) {
	exec := &sqltest.Executor{}
	repo := NewDesignRepository(exec)
	d := sampleDesign()
	if err := repo.SaveDesign(context.Background(), d); err != nil {
		t.Fatalf("SaveDesign returned error: %v", err)
	}
	calls := exec.Calls()
	if len(calls) != 1 || calls[0].Query != sqlinline.QInsertDesign {
		t.Fatalf("unexpected calls: %#v", calls)
	}
	args := calls[0].Args
	if len(args) != 11 {
		t.Fatalf("got %d args, want 11", len(args))
	}
	var products []domain.ProductSuggestion
	if err := json.Unmarshal([]byte(args[7].(string)), &products); err != nil {
		t.Fatalf("products arg is not JSON: %v", err)
	}
	if len(products) != 1 || products[0].ProductID != "12" {
		t.Fatalf("products arg = %#v", products)
	}
	if !strings.Contains(args[6].(string), `"display":["#modern"]`) {
		t.Fatalf("hashtags arg = %v", args[6])
	}
}

func TestDesignRepositorySaveWrapsErrors(t *testing.T) {
	exec := &sqltest.Executor{ExecFunc: func(string, []any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("connection reset")
	}}
	err := NewDesignRepository(exec).SaveDesign(context.Background(), sampleDesign())
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
	if err := NewDesignRepository(exec).SaveDesign(context.Background(), &domain.DesignSuggestion{}); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("missing id error = %v", err)
	}
}

func TestDesignRepositoryGet(t *testing.T) {
	d := sampleDesign()
	hashtags, _ := json.Marshal(d.Hashtags)
	products, _ := json.Marshal(d.Products)
	exec := &sqltest.Executor{QueryRowFunc: func(query string, args []any) pgx.Row {
		if args[0] != d.ID {
			return sqltest.Row{}
		}
		return sqltest.ValuesRow(d.ID, d.UserID, d.RoomType, d.DesignStyle, d.Title, d.Description,
			hashtags, products, d.Source, d.RawModelText, d.CreatedAt)
	}}
	repo := NewDesignRepository(exec)

	got, err := repo.GetDesign(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("GetDesign returned error: %v", err)
	}
	if got.Title != d.Title || len(got.Products) != 1 || *got.Products[0].Price != 4500 || got.Hashtags.Display[0] != "#modern" {
		t.Fatalf("GetDesign = %#v", got)
	}

	if _, err := repo.GetDesign(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing design error = %v, want ErrNotFound", err)
	}
}

func TestVisualizationRepositoryRoundTrip(t *testing.T) {
	generated := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	exec := &sqltest.Executor{QueryRowFunc: func(string, []any) pgx.Row {
		return sqltest.ValuesRow("mb-1", "", "", "visualizations/mb-1.png", "/static/visualizations/mb-1.png",
			"a calm room", "synthetic-fallback", true, true, "", generated)
	}}
	repo := NewVisualizationRepository(exec)

	v := &domain.VisualizationResult{
		MoodBoardID: "mb-1",
		StorageKey:  "visualizations/mb-1.png",
		ImageURL:    "/static/visualizations/mb-1.png",
		Prompt:      "a calm room",
		Success:     true,
		Metadata:    domain.GenerationMetadata{Model: "synthetic-fallback", Success: true, Fallback: true, GeneratedAt: generated},
	}
	if err := repo.SaveVisualization(context.Background(), v); err != nil {
		t.Fatalf("SaveVisualization returned error: %v", err)
	}
	args := exec.Calls()[0].Args
	if args[6] != "synthetic-fallback" || args[8] != true {
		t.Fatalf("insert args = %#v", args)
	}

	got, err := repo.GetVisualization(context.Background(), "mb-1")
	if err != nil {
		t.Fatalf("GetVisualization returned error: %v", err)
	}
	if !got.Metadata.Fallback || !got.Metadata.Success || got.StorageKey != v.StorageKey {
		t.Fatalf("GetVisualization = %#v", got)
	}
}

func TestVisualizationRepositoryNotFound(t *testing.T) {
	repo := NewVisualizationRepository(&sqltest.Executor{})
	if _, err := repo.GetVisualization(context.Background(), "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	exec := &sqltest.Executor{QueryRowFunc: func(string, []any) pgx.Row { return sqltest.ErrRow(errors.New("boom")) }}
	if _, err := NewVisualizationRepository(exec).GetVisualization(context.Background(), "x"); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := store.SaveDesign(ctx, &domain.DesignSuggestion{ID: id, Hashtags: domain.EmptyHashtags()}); err != nil {
			t.Fatalf("SaveDesign(%s): %v", id, err)
		}
	}
	if _, err := store.GetDesign(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("oldest design should be evicted, err = %v", err)
	}
	if _, err := store.GetDesign(ctx, "c"); err != nil {
		t.Fatalf("newest design missing: %v", err)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	d := sampleDesign()
	_ = store.SaveDesign(ctx, d)
	d.Products[0].Name = "mutated"

	got, _ := store.GetDesign(ctx, d.ID)
	if got.Products[0].Name != "Lina Koltuk" {
		t.Fatalf("stored design shares memory with caller")
	}

	_ = store.SaveVisualization(ctx, &domain.VisualizationResult{MoodBoardID: "mb", ImageBase64: "abc"})
	v, err := store.GetVisualization(ctx, "mb")
	if err != nil || v.ImageBase64 != "" {
		t.Fatalf("visualization = %#v, err = %v", v, err)
	}
}

func TestBootstrapRunsSchemaInOrder(t *testing.T) {
	exec := &sqltest.Executor{}
	if err := Bootstrap(context.Background(), exec); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	calls := exec.Calls()
	if len(calls) != len(sqlinline.Schema) {
		t.Fatalf("ran %d statements, want %d", len(calls), len(sqlinline.Schema))
	}
	for i, c := range calls {
		if c.Query != sqlinline.Schema[i] {
			t.Fatalf("statement %d out of order", i)
		}
	}

	failing := &sqltest.Executor{ExecFunc: func(string, []any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("permission denied")
	}}
	if err := Bootstrap(context.Background(), failing); err == nil || !strings.Contains(err.Error(), "step 1") {
		t.Fatalf("Bootstrap error = %v", err)
	}
}
