// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

// Package main is the entry point for the Kappa server.
//
// Kappa serves collaborative-filtering comic recommendations. A request
// carries the visitor's rating list; the pipeline merges it into the
// community data, clusters comics by genre and rating statistics
// (k-means or DBSCAN), and predicts ratings for unseen comics with
// user-based KNN.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered sources (env vars, config.yaml, defaults)
//  2. Logging: zerolog, JSON by default
//  3. Database: DuckDB with the ratings, comics and comic_genres tables
//  4. Import: legacy CSV exports loaded when the ratings table is empty
//  5. Snapshot: initial in-memory community snapshot
//  6. Supervisor: HTTP server and snapshot refresher under suture
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the server stops
// accepting connections, in-flight requests get the shutdown timeout to
// finish, and the database is checkpointed before close.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kappaworks/kappa/internal/api"
	"github.com/kappaworks/kappa/internal/config"
	"github.com/kappaworks/kappa/internal/database"
	"github.com/kappaworks/kappa/internal/importer"
	"github.com/kappaworks/kappa/internal/logging"
	"github.com/kappaworks/kappa/internal/recommend"
	"github.com/kappaworks/kappa/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The default logger is active before Init runs.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("similarity", cfg.Recommend.Similarity).
		Int("kmeans_clusters", cfg.Recommend.KMeansClusters).
		Msg("Starting Kappa")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := importIfEmpty(ctx, db, cfg); err != nil {
		logging.Fatal().Err(err).Msg("Startup CSV import failed")
	}

	provider := recommend.NewProvider(db)
	if err := provider.Refresh(ctx); err != nil {
		// The refresher service retries; readiness stays false until a
		// snapshot loads.
		logging.Warn().Err(err).Msg("Initial snapshot load failed")
	}

	engine, err := recommend.NewEngine(recommend.Config{
		KMeansClusters:     cfg.Recommend.KMeansClusters,
		DBSCANEpsilon:      cfg.Recommend.DBSCANEpsilon,
		DBSCANMinPoints:    cfg.Recommend.DBSCANMinPoints,
		KNNK:               cfg.Recommend.KNNK,
		MinRatingThreshold: cfg.Recommend.MinRatingThreshold,
		Similarity:         cfg.Recommend.Similarity,
		MeanScale:          cfg.Recommend.MeanScale,
		CountScale:         cfg.Recommend.CountScale,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid recommendation configuration")
	}

	router := api.NewRouter(db, provider, engine, cfg)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	sup := supervisor.New(supervisor.DefaultConfig())
	sup.Add(supervisor.NewHTTPServerService(server, 10*time.Second))
	sup.Add(supervisor.NewSnapshotRefresherService(provider, cfg.Recommend.SnapshotRefreshInterval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor")
	if err := <-sup.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor exited with error")
	}

	if unstopped, err := sup.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Kappa stopped")
}

// importIfEmpty runs the legacy CSV import when enabled and the ratings
// table has no rows yet.
func importIfEmpty(ctx context.Context, db *database.DB, cfg *config.Config) error {
	if !cfg.Data.ImportOnStartup {
		return nil
	}

	count, err := db.CountRatings(ctx)
	if err != nil {
		return fmt.Errorf("counting ratings: %w", err)
	}
	if count > 0 {
		logging.Info().Int("ratings", count).Msg("Database already populated, skipping CSV import")
		return nil
	}

	return importer.New(db, cfg.Data).Run(ctx)
}
