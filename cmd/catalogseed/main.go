package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"dekoassistant/internal/adapter/repo"
	"dekoassistant/internal/catalog"
	"dekoassistant/internal/infra"
)

func main() {
	var (
		fileFlag    string
		replaceFlag bool
		dryRunFlag  bool
	)

	flag.StringVar(&fileFlag, "file", "", "YAML catalog file to import")
	flag.BoolVar(&replaceFlag, "replace", false, "delete existing products of each imported category first")
	flag.BoolVar(&dryRunFlag, "dry-run", false, "validate the file without touching the database")
	flag.Parse()

	path := strings.TrimSpace(fileFlag)
	if path == "" {
		exitWithError(errors.New("-file is required"))
	}
	products, err := catalog.LoadSeed(path)
	if err != nil {
		exitWithError(err)
	}
	categories := catalog.Categories(products)
	if dryRunFlag {
		fmt.Printf("%d products in %d categories: %s\n", len(products), len(categories), strings.Join(categories, ", "))
		return
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	if cfg.DatabaseURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		exitWithError(err)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", cfg.LogLevel).With().Str("cmd", "catalogseed").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	if err := repo.Bootstrap(ctx, runner); err != nil {
		exitWithError(err)
	}
	store := catalog.NewStore(runner, cfg.StorageBaseURL, logger)

	if replaceFlag {
		for _, c := range categories {
			if err := store.ReplaceCategory(ctx, c); err != nil {
				exitWithError(fmt.Errorf("category %s: %w", c, err))
			}
		}
	}
	for _, p := range products {
		id, err := store.Insert(ctx, p)
		if err != nil {
			exitWithError(fmt.Errorf("product %q: %w", p.Name, err))
		}
		logger.Debug().Str("id", id).Str("name", p.Name).Msg("product imported")
	}

	fmt.Printf("imported %d products into %d categories\n", len(products), len(categories))
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "catalogseed: %v\n", err)
	os.Exit(1)
}
