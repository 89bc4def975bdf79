package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/trivia-trens/trivia-monitora/services/api/config"
	"github.com/trivia-trens/trivia-monitora/services/api/db"
	httpserver "github.com/trivia-trens/trivia-monitora/services/api/http"
	"github.com/trivia-trens/trivia-monitora/services/api/logging"
	"github.com/trivia-trens/trivia-monitora/services/api/metrics"
	"github.com/trivia-trens/trivia-monitora/services/api/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logging error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("db connection error")
	}
	defer store.Close()

	if store.Configured() {
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			logger.WithError(err).Warn("database not reachable yet, level routes will serve fallback data")
		}
		pingCancel()
		metrics.Init(store.PoolStats)
	} else {
		logger.Warn("DATABASE_URL not set, level routes will serve fallback data")
		metrics.Init(nil)
	}

	if !cfg.StorageConfigured() {
		logger.Warn("storage credentials not set, vehicle photos are disabled")
	}
	if cfg.JWTSecret == "" {
		logger.Warn("SUPABASE_JWT_SECRET not set, authenticated routes will reject every request")
	}

	photos := storage.New(cfg.SupabaseURL, cfg.ServiceRoleKey, cfg.StorageBucket)
	srv := httpserver.New(cfg, store, photos, logger)
	logger.WithFields(logrus.Fields{
		"addr":          cfg.ListenAddr(),
		"fetch_timeout": cfg.FetchTimeout.String(),
		"sample_data":   cfg.ForceSampleData,
	}).Info("REST API listening")

	if err := srv.Run(ctx); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
