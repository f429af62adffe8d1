// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// fakeStore implements Store with canned data.
type fakeStore struct {
	ratings []Rating
	catalog map[int]Comic
	err     error
}

func (f *fakeStore) AllRatings(ctx context.Context) ([]Rating, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ratings, nil
}

func (f *fakeStore) Catalog(ctx context.Context) (map[int]Comic, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.catalog, nil
}

func TestNewSnapshotGenreUniverse(t *testing.T) {
	catalog := map[int]Comic{
		1: {ID: 1, Genres: []string{"Fantasy", "Action"}},
		2: {ID: 2, Genres: []string{"Action", "Romance"}},
		3: {ID: 3},
	}

	snap := NewSnapshot(nil, catalog)

	want := []string{"Action", "Fantasy", "Romance"}
	if !reflect.DeepEqual(snap.Genres, want) {
		t.Errorf("Genres = %v, want %v", snap.Genres, want)
	}
	if snap.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestProviderRefresh(t *testing.T) {
	store := &fakeStore{
		ratings: []Rating{{Username: "alice", ComicID: 1, Rating: 5}},
		catalog: map[int]Comic{1: {ID: 1}},
	}
	p := NewProvider(store)

	if p.Current() != nil {
		t.Fatal("Current() non-nil before first refresh")
	}

	if err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	snap := p.Current()
	if snap == nil {
		t.Fatal("Current() nil after refresh")
	}
	if snap.Matrix.Users() != 1 {
		t.Errorf("snapshot Users() = %d, want 1", snap.Matrix.Users())
	}
}

func TestProviderRefreshFailureKeepsPrevious(t *testing.T) {
	store := &fakeStore{
		ratings: []Rating{{Username: "alice", ComicID: 1, Rating: 5}},
		catalog: map[int]Comic{1: {ID: 1}},
	}
	p := NewProvider(store)
	if err := p.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	good := p.Current()

	store.err = errors.New("db unavailable")
	if err := p.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() succeeded with failing store, want error")
	}

	if p.Current() != good {
		t.Error("failed refresh replaced the previous snapshot")
	}
}
