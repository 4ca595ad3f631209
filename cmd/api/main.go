package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"studio/internal/adapter/repo"
	"studio/internal/catalog"
	"studio/internal/gateway"
	"studio/internal/http/handlers"
	"studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/infra/geoip"
	"studio/internal/middleware"
	"studio/internal/orchestrator"
	"studio/internal/prefs"
	"studio/internal/providers/genai"
	"studio/internal/storage"
	"studio/internal/watermark"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if pool != nil {
		defer pool.Close()
	}
	audits := repo.NewGenerationRepository(pool)
	if err := audits.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare audit schema")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	if resolver != nil {
		defer resolver.Close()
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	client, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		ImageModel: cfg.GeminiModel,
		VideoModel: cfg.GeminiVideoModel,
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}

	gw, err := gateway.New(gateway.Options{
		Client:       client,
		Logger:       &logger,
		PollInterval: cfg.VideoPollInterval,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gateway")
	}

	orderStore := prefs.NewFileStore(filepath.Join(cfg.StoragePath, "transformation-order.json"), &logger)
	registry, err := catalog.NewRegistry(catalog.DefaultTransformations(), orderStore)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid transformation catalog")
	}

	videos, err := storage.NewFileStore(filepath.Join(cfg.StoragePath, "videos"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare video storage")
	}

	var audit orchestrator.AuditSink
	var stats handlers.StatsSource
	if audits != nil {
		audit = audits
		stats = audits
	}

	app := handlers.NewApp(handlers.Options{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Gateway:  gw,
		Marker:   watermark.New(cfg.WatermarkSignature, &logger),
		Videos:   videos,
		Audit:    audit,
		Stats:    stats,
	})

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:        logger,
		DefaultLocale: cfg.DefaultLocale,
		CountryLookup: lookup,
	})

	server := infra.NewHTTPServer(cfg, router)
	logger.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("studio API listening")
	if err := server.Run(ctx, 15*time.Second); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}
