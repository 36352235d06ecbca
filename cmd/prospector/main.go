package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/prospect-labs/prospector/internal/cache"
	"github.com/prospect-labs/prospector/internal/config"
	"github.com/prospect-labs/prospector/internal/db"
	dbMemory "github.com/prospect-labs/prospector/internal/db/memory"
	dbPostgres "github.com/prospect-labs/prospector/internal/db/postgres"
	dbRedis "github.com/prospect-labs/prospector/internal/db/redis"
	"github.com/prospect-labs/prospector/internal/domain/schema"
	logpkg "github.com/prospect-labs/prospector/internal/logger"
	"github.com/prospect-labs/prospector/internal/metrics"
	"github.com/prospect-labs/prospector/internal/query"
	prospectrepo "github.com/prospect-labs/prospector/internal/repository/prospect"
	savedsearchrepo "github.com/prospect-labs/prospector/internal/repository/savedsearch"
	chiTransport "github.com/prospect-labs/prospector/internal/transport/chi"
	geocodeClient "github.com/prospect-labs/prospector/internal/transport/geocode"
	geocodeuc "github.com/prospect-labs/prospector/internal/usecase/geocode"
	healthuc "github.com/prospect-labs/prospector/internal/usecase/health"
	optionsuc "github.com/prospect-labs/prospector/internal/usecase/options"
	searchuc "github.com/prospect-labs/prospector/internal/usecase/search"
	"github.com/prospect-labs/prospector/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prospector API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	ctx := context.Background()

	// Relational backend
	store, err := dbPostgres.NewStore(ctx, dbPostgres.Config{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Cache store based on driver
	var kv db.Store
	switch cfg.Cache.Driver {
	case "memory":
		kv = dbMemory.NewStore()
	case "redis":
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		if err := redisStore.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		kv = redisStore
	default:
		logger.Fatal("Unknown cache driver", zap.String("driver", cfg.Cache.Driver))
	}
	defer kv.Close()

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Filter schema
	prospectSchema, err := schema.Prospects(cfg.Search.MinRadiusMiles, cfg.Search.MaxRadiusMiles)
	if err != nil {
		logger.Fatal("Failed to build filter schema", zap.Error(err))
	}

	// Geocoding: HTTP oracle behind a memoizing resolver
	oracle, err := geocodeClient.NewClient(geocodeClient.Config{
		BaseURL:    cfg.Geocoder.BaseURL,
		APIKey:     cfg.Geocoder.APIKey,
		Timeout:    time.Duration(cfg.Geocoder.TimeoutSec) * time.Second,
		RatePerSec: cfg.Geocoder.RatePerSec,
	})
	if err != nil {
		logger.Fatal("Failed to create geocoding client", zap.Error(err))
	}
	resolver := geocodeuc.New(oracle, metrics.GeocodeLookupTotal, logger)

	compiler := query.New(prospectSchema, resolver)

	// Repositories
	prospectRepo := prospectrepo.New(store, logger)
	savedRepo := savedsearchrepo.New(store)

	// Shared result cache over the KV store
	resultCache := cache.New(kv, time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.ResultCacheTotal, logger)
	versions := cache.NewVersions()

	// Use case services
	searchSvc := searchuc.New(
		prospectSchema, compiler, prospectRepo, resultCache,
		cfg.Search.MaxResults, cfg.Search.DefaultPageSize,
		metrics.QueryDuration, logger,
	)
	optionsSvc := optionsuc.New(
		prospectSchema, compiler, prospectRepo, resultCache,
		versions, cfg.Search.MaxOptions, logger,
	)
	healthSvc := healthuc.New(store, kv)

	// HTTP server
	server := chiTransport.NewServer(searchSvc, optionsSvc, savedRepo, healthSvc, cfg.Search.MaxPageSize, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
