// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/kappaworks/kappa/internal/logging"
	"github.com/kappaworks/kappa/internal/metrics"
)

// Snapshot is an immutable view of the community data a request runs
// against: the rating matrix, the comic catalog, and the genre universe
// derived from it. Snapshots are replaced wholesale, never mutated, so
// in-flight requests keep a consistent view.
type Snapshot struct {
	Matrix   *Matrix
	Catalog  map[int]Comic
	Genres   []string
	LoadedAt time.Time
}

// NewSnapshot assembles a snapshot from rating rows and the catalog.
// The genre universe is the sorted union of all catalog genres, fixing
// the feature vector layout for the snapshot's lifetime.
func NewSnapshot(ratings []Rating, catalog map[int]Comic) *Snapshot {
	genreSet := make(map[string]struct{})
	for _, c := range catalog {
		for _, g := range c.Genres {
			genreSet[g] = struct{}{}
		}
	}
	genres := make([]string, 0, len(genreSet))
	for g := range genreSet {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	return &Snapshot{
		Matrix:   NewMatrix(ratings),
		Catalog:  catalog,
		Genres:   genres,
		LoadedAt: time.Now(),
	}
}

// Store supplies community data for snapshot construction.
// Implemented by the database package.
type Store interface {
	AllRatings(ctx context.Context) ([]Rating, error)
	Catalog(ctx context.Context) (map[int]Comic, error)
}

// Provider holds the current snapshot and refreshes it atomically.
// Readers never block refreshes and vice versa; a refresh swaps the
// pointer only after the new snapshot is fully built.
type Provider struct {
	store   Store
	current atomic.Pointer[Snapshot]
}

// NewProvider creates a provider backed by the given store.
// Call Refresh before serving requests.
func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// Current returns the latest snapshot, or nil if Refresh has never succeeded.
func (p *Provider) Current() *Snapshot {
	return p.current.Load()
}

// Refresh loads a fresh snapshot from the store and swaps it in.
// On failure the previous snapshot stays in place.
func (p *Provider) Refresh(ctx context.Context) error {
	started := time.Now()

	ratings, err := p.store.AllRatings(ctx)
	if err != nil {
		metrics.RecordSnapshotRefresh(0, 0, err)
		return fmt.Errorf("loading ratings: %w", err)
	}
	catalog, err := p.store.Catalog(ctx)
	if err != nil {
		metrics.RecordSnapshotRefresh(0, 0, err)
		return fmt.Errorf("loading catalog: %w", err)
	}

	snap := NewSnapshot(ratings, catalog)
	p.current.Store(snap)
	metrics.RecordSnapshotRefresh(len(ratings), len(catalog), nil)

	logging.Info().
		Int("ratings", len(ratings)).
		Int("comics", len(catalog)).
		Int("genres", len(snap.Genres)).
		Dur("elapsed", time.Since(started)).
		Msg("snapshot refreshed")
	return nil
}
