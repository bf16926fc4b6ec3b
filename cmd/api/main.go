package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fitroom/internal/adapter/repo"
	"fitroom/internal/http/handlers"
	httpapi "fitroom/internal/http/httpapi"
	"fitroom/internal/identity"
	"fitroom/internal/infra"
	"fitroom/internal/infra/geoip"
	"fitroom/internal/middleware"
	"fitroom/internal/providers/tryon"
	"fitroom/internal/retry"
	"fitroom/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	if err := repo.RunMigrations(ctx, runner); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	var store storage.ObjectStore
	var fileStore *storage.FileStore
	switch cfg.StorageDriver {
	case infra.StorageDriverLocal:
		fileStore, err = storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL, cfg.StorageURLSecret)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open local storage")
		}
		store = fileStore
	default:
		store, err = storage.NewS3Store(ctx, storage.S3Options{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure s3 storage")
		}
	}

	var generator tryon.Generator
	if cfg.TryOnMode == tryon.ModeLive {
		generator, err = tryon.NewGeminiGenerator(tryon.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Store:   store,
			Logger:  &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure generation backend")
		}
	} else {
		generator = tryon.NewStubGenerator(store)
	}

	policy := retry.NewPolicy()
	policy.Budget = cfg.GenerationBudget
	policy.AttemptTimeout = cfg.GenerationAttemptTimeout
	policy.MaxAttempts = cfg.GenerationRetryAttempts
	policy.BaseDelay = cfg.GenerationRetryDelay

	var country middleware.CountryLookup
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Msg("geoip database unavailable, locale falls back to headers")
		} else {
			country = resolver.CountryCode
		}
	}

	app := handlers.NewApp(
		cfg,
		logger,
		repo.NewJobRepository(runner),
		repo.NewMetricsRepository(runner),
		store,
		generator,
		policy,
	)

	router := httpapi.NewRouter(app, httpapi.Options{
		Config:      cfg,
		Verifier:    identity.NewHTTPVerifier(cfg.AuthEndpoint, cfg.AuthAPIKey),
		Country:     country,
		SignedFiles: fileStore,
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
	logger.Info().Msg("server stopped")
}
