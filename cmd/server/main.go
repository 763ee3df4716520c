// Package main boots the catalog backend HTTP server.
//
// Startup order: environment (.env optional), config, logging, SQLite +
// migrations, Redis list cache (optional, degrades to in-process), token
// manager, OpenTelemetry, router, then the HTTP server with graceful
// shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-catalog-backend/internal/auth"
	"github.com/tbourn/go-catalog-backend/internal/cache"
	"github.com/tbourn/go-catalog-backend/internal/config"
	httpapi "github.com/tbourn/go-catalog-backend/internal/http"
	"github.com/tbourn/go-catalog-backend/internal/observability"
	"github.com/tbourn/go-catalog-backend/internal/repo"
	"github.com/tbourn/go-catalog-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is a local-development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	listCache := buildCache(cfg.Cache)
	defer func() {
		if err := listCache.Close(); err != nil {
			log.Warn().Err(err).Msg("cache close failed")
		}
	}()

	tokens, err := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token manager init failed")
	}

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("opentelemetry init failed")
	}
	defer func() {
		ctxOTel, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctxOTel); err != nil {
			log.Warn().Err(err).Msg("opentelemetry shutdown failed")
		}
	}()

	r := gin.New()
	httpapi.RegisterRoutes(r, db, httpapi.Deps{Cache: listCache, Tokens: tokens}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	log.Info().Str("signal", s.String()).Msg("shutdown signal received")

	ctxSrv, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxSrv); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}

// buildCache wires the Redis list cache when an address is configured, and
// otherwise falls back to the in-process cache so list reads still benefit
// from bounded-staleness caching in single-node deployments.
func buildCache(cfg config.CacheConfig) cache.Cache {
	if cfg.RedisAddr == "" {
		log.Info().Msg("no redis address configured; using in-process list cache")
		return cache.NewMemory()
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	c, err := cache.NewRedis(cache.RedisConfig{Client: rdb, CloseClient: true})
	if err != nil {
		log.Warn().Err(err).Msg("redis cache init failed; using in-process list cache")
		return cache.NewMemory()
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis list cache enabled")
	return c
}
