// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package importer

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kappaworks/kappa/internal/config"
	"github.com/kappaworks/kappa/internal/database"
)

func TestParseRatings(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		want    int
		wantErr bool
	}{
		{
			name: "standard export",
			csv:  "comicID,username,rating\n12,alice,4.5\n7,bob,3\n",
			want: 2,
		},
		{
			name: "reordered columns match by header",
			csv:  "username,rating,comicID\nalice,5,3\n",
			want: 1,
		},
		{
			name: "unparseable rows dropped",
			csv:  "comicID,username,rating\nnotanum,alice,4\n12,,4\n12,alice,nope\n9,carl,2\n",
			want: 1,
		},
		{
			name:    "missing rating column",
			csv:     "comicID,username\n1,alice\n",
			wantErr: true,
		},
		{
			name: "header only yields empty set",
			csv:  "comicID,username,rating\n",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRatings(strings.NewReader(tt.csv))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRatings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(got) != tt.want {
				t.Errorf("ParseRatings() returned %d rows, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseRatingsValues(t *testing.T) {
	got, err := ParseRatings(strings.NewReader("comicID,username,rating\n12, alice ,4.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	r := got[0]
	if r.Username != "alice" || r.ComicID != 12 || r.Rating != 4.5 {
		t.Errorf("row = %+v, want {alice 12 4.5}", r)
	}
}

func TestParseComics(t *testing.T) {
	csv := "comic_id,title,image_url\n" +
		"1,Sky Island,https://img/1.jpg\n" +
		"2,,\n" +
		"broken,x,y\n"

	got, err := ParseComics(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d comics, want 2", len(got))
	}

	c1 := got[0]
	if c1.ID != 1 || c1.Title == nil || *c1.Title != "Sky Island" {
		t.Errorf("comic 1 = %+v", c1)
	}
	c2 := got[1]
	if c2.ID != 2 || c2.Title != nil || c2.ImageURL != nil {
		t.Errorf("comic 2 metadata = (%v, %v), want NULLs", c2.Title, c2.ImageURL)
	}
}

func TestParseGenres(t *testing.T) {
	csv := "comicID,Action,Fantasy,Romance\n" +
		"1,1,0,1\n" +
		"2,0,0,0\n"

	got, err := ParseGenres(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(got[1], []string{"Action", "Romance"}) {
		t.Errorf("comic 1 genres = %v, want [Action Romance]", got[1])
	}
	if len(got[2]) != 0 {
		t.Errorf("comic 2 genres = %v, want none", got[2])
	}
}

func TestParseGenresMissingComicColumn(t *testing.T) {
	if _, err := ParseGenres(strings.NewReader("Action,Fantasy\n1,0\n")); err == nil {
		t.Error("ParseGenres() without comicID column succeeded, want error")
	}
}

func TestImporterRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ratings.csv", "comicID,username,rating\n1,alice,5\n2,alice,4\n1,bob,3\n")
	writeFile(t, dir, "genres.csv", "comicID,Action,Drama\n1,1,0\n2,0,1\n")
	writeFile(t, dir, "comics.csv", "comic_id,title,image_url\n1,One,\n2,Two,https://img/2.jpg\n")

	db := setupTestDB(t)
	im := New(db, config.DataConfig{
		Dir:        dir,
		RatingFile: "ratings.csv",
		GenreFile:  "genres.csv",
		ComicFile:  "comics.csv",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := im.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	n, err := db.CountRatings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("CountRatings() = %d, want 3", n)
	}

	catalog, err := db.Catalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(catalog) != 2 {
		t.Fatalf("catalog has %d comics, want 2", len(catalog))
	}
	if !reflect.DeepEqual(catalog[1].Genres, []string{"Action"}) {
		t.Errorf("comic 1 genres = %v, want [Action]", catalog[1].Genres)
	}
}

func TestImporterRunMissingFilesSkipped(t *testing.T) {
	db := setupTestDB(t)
	im := New(db, config.DataConfig{
		Dir:        t.TempDir(),
		RatingFile: "absent.csv",
		GenreFile:  "absent.csv",
		ComicFile:  "absent.csv",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := im.Run(ctx); err != nil {
		t.Errorf("Run() with missing files error = %v, want nil", err)
	}
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB"})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
