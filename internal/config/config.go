// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

// Package config loads and validates application configuration.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, an optional YAML config file,
// and built-in defaults. Invalid configuration is fatal at startup;
// nothing is re-validated per request.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" is valid for tests.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// DataConfig holds settings for the legacy CSV data files and their import.
type DataConfig struct {
	// Dir is the directory containing the legacy CSV exports.
	Dir        string `koanf:"dir"`
	RatingFile string `koanf:"rating_file"`
	GenreFile  string `koanf:"genre_file"`
	ComicFile  string `koanf:"comic_file"`

	// ImportOnStartup imports the CSV files into DuckDB at startup when the
	// ratings table is empty.
	ImportOnStartup bool `koanf:"import_on_startup"`
}

// RecommendConfig holds the recommendation pipeline hyperparameters.
type RecommendConfig struct {
	// KMeansClusters is the number of centroid clusters (K). Must be >= 1.
	KMeansClusters int `koanf:"kmeans_clusters"`

	// DBSCANEpsilon is the density neighborhood radius. Must be > 0.
	DBSCANEpsilon float64 `koanf:"dbscan_epsilon"`

	// DBSCANMinPoints is the minimum neighborhood size for a core point.
	DBSCANMinPoints int `koanf:"dbscan_min_points"`

	// KNNK is the number of neighbor users used for prediction. Must be >= 1.
	KNNK int `koanf:"knn_k"`

	// MinRatingThreshold filters predictions below this value from results.
	MinRatingThreshold float64 `koanf:"min_rating_threshold"`

	// MinUserRatings / MaxUserRatings bound the request rating list length.
	MinUserRatings int `koanf:"min_user_ratings"`
	MaxUserRatings int `koanf:"max_user_ratings"`

	// Similarity selects the user-user similarity metric:
	// "pearson", "cosine", or "euclidean" (inverse distance).
	Similarity string `koanf:"similarity"`

	// MeanScale and CountScale weigh the aggregate rating statistics in the
	// clustering feature vector so they stay comparable to one genre flag.
	MeanScale  float64 `koanf:"mean_scale"`
	CountScale float64 `koanf:"count_scale"`

	// SnapshotRefreshInterval is how often the in-memory data snapshot is
	// reloaded from the database.
	SnapshotRefreshInterval time.Duration `koanf:"snapshot_refresh_interval"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// validSimilarities lists the accepted similarity metric names.
var validSimilarities = map[string]bool{
	"pearson":   true,
	"cosine":    true,
	"euclidean": true,
}

// Validate checks the configuration for fatal errors. Configuration errors
// abort startup; they are never surfaced per request.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be > 0, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	r := &c.Recommend
	if r.KMeansClusters < 1 {
		return fmt.Errorf("recommend.kmeans_clusters must be >= 1, got %d", r.KMeansClusters)
	}
	if r.DBSCANEpsilon <= 0 {
		return fmt.Errorf("recommend.dbscan_epsilon must be > 0, got %g", r.DBSCANEpsilon)
	}
	if r.DBSCANMinPoints < 1 {
		return fmt.Errorf("recommend.dbscan_min_points must be >= 1, got %d", r.DBSCANMinPoints)
	}
	if r.KNNK < 1 {
		return fmt.Errorf("recommend.knn_k must be >= 1, got %d", r.KNNK)
	}
	if r.MinUserRatings < 1 {
		return fmt.Errorf("recommend.min_user_ratings must be >= 1, got %d", r.MinUserRatings)
	}
	if r.MaxUserRatings < r.MinUserRatings {
		return fmt.Errorf("recommend.max_user_ratings (%d) must be >= min_user_ratings (%d)",
			r.MaxUserRatings, r.MinUserRatings)
	}
	if !validSimilarities[r.Similarity] {
		return fmt.Errorf("recommend.similarity must be one of pearson, cosine, euclidean; got %q", r.Similarity)
	}
	if r.MeanScale <= 0 || r.CountScale <= 0 {
		return fmt.Errorf("recommend.mean_scale and recommend.count_scale must be > 0")
	}
	if r.SnapshotRefreshInterval <= 0 {
		return fmt.Errorf("recommend.snapshot_refresh_interval must be > 0, got %s", r.SnapshotRefreshInterval)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be >= 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be > 0, got %s", c.Security.RateLimitWindow)
		}
	}

	return nil
}
