// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kappaworks/kappa/internal/logging"
	"github.com/kappaworks/kappa/internal/metrics"
	"github.com/kappaworks/kappa/internal/recommend"
)

// AllRatings returns every community rating row. Implements recommend.Store.
func (db *DB) AllRatings(ctx context.Context) ([]recommend.Rating, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT username, comic_id, rating FROM ratings`)
	metrics.RecordDBQuery("SELECT", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer closeRows(rows)

	var ratings []recommend.Rating
	for rows.Next() {
		var r recommend.Rating
		if err := rows.Scan(&r.Username, &r.ComicID, &r.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating row: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rating rows iteration failed: %w", err)
	}
	return ratings, nil
}

// Catalog returns all comics keyed by id with their genres attached.
// Implements recommend.Store.
func (db *DB) Catalog(ctx context.Context) (map[int]recommend.Comic, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT comic_id, title, image_url FROM comics`)
	metrics.RecordDBQuery("SELECT", "comics", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query comics: %w", err)
	}
	defer closeRows(rows)

	catalog := make(map[int]recommend.Comic)
	for rows.Next() {
		var c recommend.Comic
		var title, imageURL sql.NullString
		if err := rows.Scan(&c.ID, &title, &imageURL); err != nil {
			return nil, fmt.Errorf("failed to scan comic row: %w", err)
		}
		if title.Valid {
			c.Title = &title.String
		}
		if imageURL.Valid {
			c.ImageURL = &imageURL.String
		}
		catalog[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comic rows iteration failed: %w", err)
	}

	start = time.Now()
	genreRows, err := db.conn.QueryContext(ctx,
		`SELECT comic_id, genre FROM comic_genres ORDER BY comic_id, genre`)
	metrics.RecordDBQuery("SELECT", "comic_genres", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query comic genres: %w", err)
	}
	defer closeRows(genreRows)

	for genreRows.Next() {
		var comicID int
		var genre string
		if err := genreRows.Scan(&comicID, &genre); err != nil {
			return nil, fmt.Errorf("failed to scan genre row: %w", err)
		}
		if c, ok := catalog[comicID]; ok {
			c.Genres = append(c.Genres, genre)
			catalog[comicID] = c
		}
	}
	if err := genreRows.Err(); err != nil {
		return nil, fmt.Errorf("genre rows iteration failed: %w", err)
	}

	return catalog, nil
}

// Stats holds row counts for health reporting.
type Stats struct {
	Ratings int `json:"ratings"`
	Genres  int `json:"genres"`
	Comics  int `json:"comics"`
	Users   int `json:"users"`
}

// GetStats returns row counts across the core tables.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	start := time.Now()
	err := db.conn.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM ratings),
			(SELECT COUNT(DISTINCT genre) FROM comic_genres),
			(SELECT COUNT(*) FROM comics),
			(SELECT COUNT(DISTINCT username) FROM ratings)`).
		Scan(&s.Ratings, &s.Genres, &s.Comics, &s.Users)
	metrics.RecordDBQuery("SELECT", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return &s, nil
}

// CountRatings returns the number of rating rows. Used to decide whether
// the startup CSV import should run.
func (db *DB) CountRatings(ctx context.Context) (int, error) {
	var n int
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&n)
	metrics.RecordDBQuery("SELECT", "ratings", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count ratings: %w", err)
	}
	return n, nil
}

// InsertRatings bulk-inserts rating rows in a single transaction.
func (db *DB) InsertRatings(ctx context.Context, ratings []recommend.Rating) error {
	if len(ratings) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ratings (username, comic_id, rating) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare rating insert: %w", err)
	}
	defer closeStmt(stmt)

	for _, r := range ratings {
		if _, err := stmt.ExecContext(ctx, r.Username, r.ComicID, r.Rating); err != nil {
			metrics.RecordDBQuery("INSERT", "ratings", time.Since(start), err)
			return fmt.Errorf("failed to insert rating (%s, %d): %w", r.Username, r.ComicID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBQuery("INSERT", "ratings", time.Since(start), err)
		return fmt.Errorf("failed to commit ratings: %w", err)
	}
	metrics.RecordDBQuery("INSERT", "ratings", time.Since(start), nil)
	return nil
}

// UpsertComics inserts or replaces catalog rows in a single transaction.
func (db *DB) UpsertComics(ctx context.Context, comics []recommend.Comic) error {
	if len(comics) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO comics (comic_id, title, image_url) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare comic upsert: %w", err)
	}
	defer closeStmt(stmt)

	for _, c := range comics {
		if _, err := stmt.ExecContext(ctx, c.ID, nullableString(c.Title), nullableString(c.ImageURL)); err != nil {
			metrics.RecordDBQuery("INSERT", "comics", time.Since(start), err)
			return fmt.Errorf("failed to upsert comic %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBQuery("INSERT", "comics", time.Since(start), err)
		return fmt.Errorf("failed to commit comics: %w", err)
	}
	metrics.RecordDBQuery("INSERT", "comics", time.Since(start), nil)
	return nil
}

// ReplaceComicGenres replaces the genre rows of the given comics.
// Genres are keyed by comic id.
func (db *DB) ReplaceComicGenres(ctx context.Context, genres map[int][]string) error {
	if len(genres) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	del, err := tx.PrepareContext(ctx, `DELETE FROM comic_genres WHERE comic_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare genre delete: %w", err)
	}
	defer closeStmt(del)

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO comic_genres (comic_id, genre) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare genre insert: %w", err)
	}
	defer closeStmt(ins)

	for comicID, gs := range genres {
		if _, err := del.ExecContext(ctx, comicID); err != nil {
			metrics.RecordDBQuery("DELETE", "comic_genres", time.Since(start), err)
			return fmt.Errorf("failed to clear genres of comic %d: %w", comicID, err)
		}
		for _, g := range gs {
			if _, err := ins.ExecContext(ctx, comicID, g); err != nil {
				metrics.RecordDBQuery("INSERT", "comic_genres", time.Since(start), err)
				return fmt.Errorf("failed to insert genre (%d, %s): %w", comicID, g, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBQuery("INSERT", "comic_genres", time.Since(start), err)
		return fmt.Errorf("failed to commit genres: %w", err)
	}
	metrics.RecordDBQuery("INSERT", "comic_genres", time.Since(start), nil)
	return nil
}

// nullableString maps a *string to a driver value preserving NULL.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close rows")
	}
}

func closeStmt(stmt *sql.Stmt) {
	if err := stmt.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close prepared statement")
	}
}

// rollbackQuietly rolls back a transaction, ignoring the error after a
// successful commit.
func rollbackQuietly(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Warn().Err(err).Msg("Failed to roll back transaction")
	}
}
