// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

// Package importer loads the legacy CSV exports into DuckDB.
//
// Three files make up an export: a ratings file (comicID, username,
// rating), a wide genre matrix (comicID plus one 0/1 column per genre)
// and a comics file (comic_id, title, image_url). Column order is not
// fixed; headers are matched by name. Rows that fail to parse are
// dropped with a warning rather than aborting the import.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kappaworks/kappa/internal/config"
	"github.com/kappaworks/kappa/internal/database"
	"github.com/kappaworks/kappa/internal/logging"
	"github.com/kappaworks/kappa/internal/metrics"
	"github.com/kappaworks/kappa/internal/recommend"
)

// Importer loads CSV exports into the database.
type Importer struct {
	db  *database.DB
	cfg config.DataConfig
}

// New creates an importer for the configured data directory.
func New(db *database.DB, cfg config.DataConfig) *Importer {
	return &Importer{db: db, cfg: cfg}
}

// Run imports all three CSV files. Each file is optional: a missing file
// is skipped with a warning so partial exports still load.
func (im *Importer) Run(ctx context.Context) error {
	started := time.Now()

	ratings, err := im.importRatings(ctx)
	if err != nil {
		return err
	}
	comics, err := im.importComics(ctx)
	if err != nil {
		return err
	}
	genres, err := im.importGenres(ctx)
	if err != nil {
		return err
	}

	logging.Info().
		Int("ratings", ratings).
		Int("comics", comics).
		Int("genre_rows", genres).
		Dur("elapsed", time.Since(started)).
		Msg("CSV import completed")
	return nil
}

func (im *Importer) importRatings(ctx context.Context) (int, error) {
	path := filepath.Join(im.cfg.Dir, im.cfg.RatingFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn().Str("path", path).Msg("Rating CSV not found, skipping")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open rating CSV: %w", err)
	}
	defer closeFile(f)

	ratings, err := ParseRatings(f)
	if err != nil {
		metrics.RecordImport("ratings", 0, err)
		return 0, fmt.Errorf("failed to parse rating CSV %s: %w", path, err)
	}
	if err := im.db.InsertRatings(ctx, ratings); err != nil {
		metrics.RecordImport("ratings", 0, err)
		return 0, err
	}
	metrics.RecordImport("ratings", len(ratings), nil)
	return len(ratings), nil
}

func (im *Importer) importComics(ctx context.Context) (int, error) {
	path := filepath.Join(im.cfg.Dir, im.cfg.ComicFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn().Str("path", path).Msg("Comic CSV not found, skipping")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open comic CSV: %w", err)
	}
	defer closeFile(f)

	comics, err := ParseComics(f)
	if err != nil {
		metrics.RecordImport("comics", 0, err)
		return 0, fmt.Errorf("failed to parse comic CSV %s: %w", path, err)
	}
	if err := im.db.UpsertComics(ctx, comics); err != nil {
		metrics.RecordImport("comics", 0, err)
		return 0, err
	}
	metrics.RecordImport("comics", len(comics), nil)
	return len(comics), nil
}

func (im *Importer) importGenres(ctx context.Context) (int, error) {
	path := filepath.Join(im.cfg.Dir, im.cfg.GenreFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn().Str("path", path).Msg("Genre CSV not found, skipping")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open genre CSV: %w", err)
	}
	defer closeFile(f)

	genres, err := ParseGenres(f)
	if err != nil {
		metrics.RecordImport("genres", 0, err)
		return 0, fmt.Errorf("failed to parse genre CSV %s: %w", path, err)
	}
	if err := im.db.ReplaceComicGenres(ctx, genres); err != nil {
		metrics.RecordImport("genres", 0, err)
		return 0, err
	}
	rows := 0
	for _, gs := range genres {
		rows += len(gs)
	}
	metrics.RecordImport("genres", rows, nil)
	return rows, nil
}

// ParseRatings reads a ratings CSV with comicID, username and rating
// columns. Unparseable rows are dropped.
func ParseRatings(r io.Reader) ([]recommend.Rating, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := headerIndex(header)

	comicCol, ok := cols["comicid"]
	if !ok {
		return nil, fmt.Errorf("missing comicID column")
	}
	userCol, ok := cols["username"]
	if !ok {
		return nil, fmt.Errorf("missing username column")
	}
	ratingCol, ok := cols["rating"]
	if !ok {
		return nil, fmt.Errorf("missing rating column")
	}

	var ratings []recommend.Rating
	dropped := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read error at line %d: %w", line, err)
		}

		comicID, err := strconv.Atoi(strings.TrimSpace(record[comicCol]))
		if err != nil {
			dropped++
			continue
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(record[ratingCol]), 64)
		if err != nil {
			dropped++
			continue
		}
		username := strings.TrimSpace(record[userCol])
		if username == "" {
			dropped++
			continue
		}

		ratings = append(ratings, recommend.Rating{
			Username: username,
			ComicID:  comicID,
			Rating:   rating,
		})
	}

	if dropped > 0 {
		logging.Warn().Int("rows", dropped).Msg("Dropped unparseable rating rows")
	}
	return ratings, nil
}

// ParseComics reads a comics CSV with comic_id, title and image_url
// columns. Empty title or image_url cells become NULLs.
func ParseComics(r io.Reader) ([]recommend.Comic, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := headerIndex(header)

	idCol, ok := cols["comic_id"]
	if !ok {
		return nil, fmt.Errorf("missing comic_id column")
	}
	titleCol, hasTitle := cols["title"]
	imageCol, hasImage := cols["image_url"]

	var comics []recommend.Comic
	dropped := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read error at line %d: %w", line, err)
		}

		id, err := strconv.Atoi(strings.TrimSpace(record[idCol]))
		if err != nil {
			dropped++
			continue
		}

		c := recommend.Comic{ID: id}
		if hasTitle {
			if title := strings.TrimSpace(record[titleCol]); title != "" {
				c.Title = &title
			}
		}
		if hasImage {
			if url := strings.TrimSpace(record[imageCol]); url != "" {
				c.ImageURL = &url
			}
		}
		comics = append(comics, c)
	}

	if dropped > 0 {
		logging.Warn().Int("rows", dropped).Msg("Dropped unparseable comic rows")
	}
	return comics, nil
}

// ParseGenres reads the wide genre matrix: a comicID column plus one
// column per genre holding 0/1 flags. The result is normalized to genre
// name lists keyed by comic id.
func ParseGenres(r io.Reader) (map[int][]string, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	comicCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "comicid") {
			comicCol = i
			break
		}
	}
	if comicCol < 0 {
		return nil, fmt.Errorf("missing comicID column")
	}

	genres := make(map[int][]string)
	dropped := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read error at line %d: %w", line, err)
		}

		comicID, err := strconv.Atoi(strings.TrimSpace(record[comicCol]))
		if err != nil {
			dropped++
			continue
		}

		var names []string
		for i, cell := range record {
			if i == comicCol {
				continue
			}
			flag, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil || flag == 0 {
				continue
			}
			names = append(names, strings.TrimSpace(header[i]))
		}
		genres[comicID] = names
	}

	if dropped > 0 {
		logging.Warn().Int("rows", dropped).Msg("Dropped unparseable genre rows")
	}
	return genres, nil
}

// headerIndex maps lowercased, trimmed column names to their positions.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func closeFile(f *os.File) {
	if err := f.Close(); err != nil {
		logging.Warn().Err(err).Str("file", f.Name()).Msg("Failed to close file")
	}
}
