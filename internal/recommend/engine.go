// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kappaworks/kappa/internal/logging"
	"github.com/kappaworks/kappa/internal/metrics"
)

// Algorithm selects the clustering variant for a request.
type Algorithm string

const (
	// AlgorithmKMeans is the centroid clustering variant.
	AlgorithmKMeans Algorithm = "kmeans"
	// AlgorithmDBSCAN is the density clustering variant.
	AlgorithmDBSCAN Algorithm = "dbscan"
)

// Config holds the pipeline hyperparameters.
type Config struct {
	// KMeansClusters is K for the centroid variant. Must be >= 1.
	KMeansClusters int

	// DBSCANEpsilon is the density neighborhood radius. Must be > 0.
	DBSCANEpsilon float64

	// DBSCANMinPoints is the minimum neighborhood size for a core point.
	DBSCANMinPoints int

	// KNNK is the number of neighbor users per prediction. Must be >= 1.
	KNNK int

	// MinRatingThreshold filters predictions below this value.
	MinRatingThreshold float64

	// Similarity names the user-user similarity metric.
	Similarity string

	// MeanScale and CountScale weigh the aggregate statistics in the
	// clustering feature vectors.
	MeanScale  float64
	CountScale float64
}

// DefaultConfig returns the hyperparameters of the legacy service.
func DefaultConfig() Config {
	return Config{
		KMeansClusters:     2,
		DBSCANEpsilon:      7.8,
		DBSCANMinPoints:    11,
		KNNK:               10,
		MinRatingThreshold: 3.0,
		Similarity:         "pearson",
		MeanScale:          0.2,
		CountScale:         0.2,
	}
}

// Validate checks the hyperparameters. Violations are configuration
// errors and fatal at startup, never per request.
func (c *Config) Validate() error {
	if c.KMeansClusters < 1 {
		return fmt.Errorf("kmeans clusters must be >= 1, got %d", c.KMeansClusters)
	}
	if c.DBSCANEpsilon <= 0 {
		return fmt.Errorf("dbscan epsilon must be > 0, got %g", c.DBSCANEpsilon)
	}
	if c.DBSCANMinPoints < 1 {
		return fmt.Errorf("dbscan min points must be >= 1, got %d", c.DBSCANMinPoints)
	}
	if c.KNNK < 1 {
		return fmt.Errorf("knn k must be >= 1, got %d", c.KNNK)
	}
	if c.MeanScale <= 0 || c.CountScale <= 0 {
		return fmt.Errorf("feature scales must be > 0")
	}
	return nil
}

// Engine runs the recommendation pipeline. It is stateless across
// requests; every invocation works on the snapshot it is handed.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine after validating the configuration.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommendation config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's hyperparameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// clusterer builds the clustering variant for the requested algorithm.
func (e *Engine) clusterer(algorithm Algorithm) (Clusterer, error) {
	switch algorithm {
	case AlgorithmKMeans:
		return NewKMeans(e.cfg.KMeansClusters), nil
	case AlgorithmDBSCAN:
		return NewDBSCAN(e.cfg.DBSCANEpsilon, e.cfg.DBSCANMinPoints), nil
	default:
		return nil, fmt.Errorf("unknown clustering algorithm %q", algorithm)
	}
}

// Recommend runs the full pipeline: merge, feature build, clustering,
// candidate selection, prediction, and result assembly. An empty list is
// a valid, successful result.
//
// The snapshot is read-only; all intermediate state is request-local.
func (e *Engine) Recommend(ctx context.Context, snap *Snapshot, input []UserRating, algorithm Algorithm) ([]Recommendation, error) {
	clusterer, err := e.clusterer(algorithm)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	log := logging.Ctx(ctx)

	// Matrix merge
	stage := time.Now()
	merge := Merge(snap.Matrix, input, snap.Catalog)
	if len(merge.Dropped) > 0 {
		log.Warn().
			Ints("comic_ids", merge.Dropped).
			Msg("dropped ratings for comics missing from the catalog")
	}
	metrics.ObservePipelineStage("merge", time.Since(stage))

	// Feature build
	stage = time.Now()
	features := BuildFeatures(merge.Matrix, snap.Catalog, snap.Genres, e.cfg.MeanScale, e.cfg.CountScale)
	metrics.ObservePipelineStage("features", time.Since(stage))

	// Clustering
	stage = time.Now()
	assignment := clusterer.Assign(features)
	metrics.ObservePipelineStage("cluster", time.Since(stage))
	log.Debug().
		Str("algorithm", clusterer.Name()).
		Int("items", features.Len()).
		Int("clusters", assignment.Clusters()).
		Int("noise", assignment.NoiseCount()).
		Msg("clustering completed")

	// Candidate selection
	stage = time.Now()
	candidates := SelectCandidates(assignment, merge.Matrix, merge.Rated)
	metrics.ObservePipelineStage("candidates", time.Since(stage))
	if len(candidates) == 0 {
		log.Info().
			Str("algorithm", clusterer.Name()).
			Dur("elapsed", time.Since(started)).
			Msg("no candidates found, returning empty result")
		metrics.ObserveRecommendation(string(algorithm), 0, time.Since(started))
		return []Recommendation{}, nil
	}

	// Prediction
	stage = time.Now()
	predictor := NewPredictor(e.cfg.KNNK, e.cfg.Similarity)
	predictions := make([]Prediction, 0, len(candidates))
	for _, id := range candidates {
		predictions = append(predictions, predictor.Predict(merge.Matrix, merge.Visitor, id))
	}
	metrics.ObservePipelineStage("predict", time.Since(stage))

	// Result assembly
	stage = time.Now()
	results := e.assemble(predictions, snap.Catalog)
	metrics.ObservePipelineStage("assemble", time.Since(stage))

	log.Info().
		Str("algorithm", clusterer.Name()).
		Int("candidates", len(candidates)).
		Int("recommendations", len(results)).
		Dur("elapsed", time.Since(started)).
		Msg("recommendation pipeline completed")
	metrics.ObserveRecommendation(string(algorithm), len(results), time.Since(started))

	return results, nil
}

// assemble filters predictions below the configured threshold, sorts
// descending by predicted rating (ties broken by ascending comic id), and
// enriches each survivor with catalog metadata. Comics without metadata
// keep null title and image fields; they are never dropped for that.
func (e *Engine) assemble(predictions []Prediction, catalog map[int]Comic) []Recommendation {
	results := make([]Recommendation, 0, len(predictions))
	for _, p := range predictions {
		if p.Rating < e.cfg.MinRatingThreshold {
			continue
		}
		rec := Recommendation{
			ID:        p.ComicID,
			Rating:    p.Rating,
			Neighbors: p.Neighbors,
		}
		if c, ok := catalog[p.ComicID]; ok {
			rec.Title = c.Title
			rec.ImageURL = c.ImageURL
		}
		results = append(results, rec)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Rating != results[j].Rating {
			return results[i].Rating > results[j].Rating
		}
		return results[i].ID < results[j].ID
	})
	return results
}
