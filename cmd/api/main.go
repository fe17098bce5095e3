package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"dekoassistant/internal/adapter/repo"
	"dekoassistant/internal/catalog"
	"dekoassistant/internal/design"
	"dekoassistant/internal/domain"
	"dekoassistant/internal/http/handlers"
	httpapi "dekoassistant/internal/http/httpapi"
	"dekoassistant/internal/infra"
	"dekoassistant/internal/infra/geoip"
	"dekoassistant/internal/observability/metrics"
	"dekoassistant/internal/progress"
	"dekoassistant/internal/providers/genai"
	"dekoassistant/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	m := metrics.New()
	ctx := context.Background()

	// Persistence: PostgreSQL when configured, in-memory otherwise.
	var (
		designs        domain.DesignRepository
		visualizations domain.VisualizationRepository
		products       catalog.Searcher
		ready          func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		if err := repo.Bootstrap(ctx, runner); err != nil {
			logger.Fatal().Err(err).Msg("failed to bootstrap schema")
		}
		designs = repo.NewDesignRepository(runner)
		visualizations = repo.NewVisualizationRepository(runner)
		products = catalog.NewStore(runner, cfg.StorageBaseURL, logger)
		ready = pool.Ping
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory stores")
		mem := repo.NewMemoryStore(repo.DefaultMemoryLimit)
		designs, visualizations = mem, mem
	}
	if cfg.CatalogFile != "" {
		seed, err := catalog.LoadSeed(cfg.CatalogFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load catalog file")
		}
		products = catalog.NewMemory(cfg.StorageBaseURL, seed...)
		logger.Info().Int("products", len(seed)).Str("file", cfg.CatalogFile).Msg("serving catalog from file")
	}

	store, staticDir := openStore(ctx, cfg, logger)

	models, err := genai.Connect(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create genai client")
	}
	if models == nil {
		logger.Warn().Msg("GEMINI_API_KEY not set, designs use the fallback and renders are synthetic")
	}
	tn := cfg.Tuning
	breaker := genai.BreakerSettings{
		ConsecutiveFailures: uint32(tn.BreakerFailures),
		OpenTimeout:         tn.BreakerOpenTimeout,
	}
	text := genai.NewTextClient(models, genai.TextOptions{
		Options:           genai.Options{Model: cfg.GeminiTextModel, Timeout: cfg.UpstreamTimeout, Logger: logger, Metrics: m},
		MaxToolIterations: tn.MaxToolIterations,
		Breaker:           breaker,
	})
	image := genai.NewImageClient(models, genai.ImageOptions{
		Options:      genai.Options{Model: cfg.GeminiImageModel, Timeout: cfg.UpstreamTimeout, Logger: logger, Metrics: m},
		PrimaryTick:  tn.PrimaryTick,
		FallbackTick: tn.FallbackTick,
		Steps:        simulatedSteps(tn.SimulatedSteps),
		Breaker:      breaker,
	})

	hub := progress.NewHub(logger, m)

	svc := design.NewService(design.Options{
		Text:              text,
		Image:             image,
		Catalog:           products,
		Designs:           designs,
		Visualizations:    visualizations,
		Store:             store,
		Progress:          hub,
		ToolsEnabled:      cfg.CatalogToolsEnabled,
		CatalogLimit:      tn.CatalogLimit,
		PromptBudget:      tn.ImagePromptBudget,
		Stages:            stages(tn.Stages),
		BackgroundTimeout: cfg.BackgroundTimeout,
		Logger:            logger,
		Metrics:           m,
	})

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	app := handlers.NewApp(svc, logger)
	app.Ready = ready
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		Metrics:         m,
		Progress:        progress.NewHandler(hub, logger, httpapi.LocaleOf, cfg.CORSOrigins),
		StaticDir:       staticDir,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		JWTSecret:       cfg.JWTSecret,
		DefaultLocale:   "tr",
		CountryLookup:   geoip.LookupFunc(resolver),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := svc.Wait(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("background renders still running")
	}
	logger.Info().Msg("server stopped")
}

// openStore picks S3 when a bucket is configured and the local directory
// otherwise. staticDir is empty for S3 since files are served by the bucket.
func openStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (storage.ObjectStore, string) {
	s3cfg := storage.S3Config{
		Bucket:         cfg.S3Bucket,
		Region:         cfg.S3Region,
		Endpoint:       cfg.S3Endpoint,
		PublicURL:      cfg.S3PublicURL,
		KeyPrefix:      cfg.S3KeyPrefix,
		ForcePathStyle: cfg.S3ForcePathStyle,
	}
	if s3cfg.Enabled() {
		s3, err := storage.NewS3Store(ctx, s3cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure s3 storage")
		}
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("storing visualizations in s3")
		return s3, ""
	}
	fs, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage directory")
	}
	return fs, fs.BasePath()
}

func stages(t infra.StageTuning) design.Stages {
	return design.Stages{
		PreparingPrompt: t.PreparingPrompt,
		PromptReady:     t.PromptReady,
		GeneratingImage: t.GeneratingImage,
		ProcessingImage: t.ProcessingImage,
		ImageSaved:      t.ImageSaved,
		Finalizing:      t.Finalizing,
	}
}

func simulatedSteps(in []infra.StepTuning) []genai.SimulatedStep {
	out := make([]genai.SimulatedStep, 0, len(in))
	for _, s := range in {
		out = append(out, genai.SimulatedStep{Percentage: s.Percentage, MessageKey: s.MessageKey})
	}
	return out
}
