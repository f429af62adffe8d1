// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS ratings_id_seq`,

		// One row per community rating. Duplicate (username, comic_id)
		// pairs may exist in the raw data; snapshot construction
		// deduplicates by keeping the maximum.
		`CREATE TABLE IF NOT EXISTS ratings (
			id BIGINT PRIMARY KEY DEFAULT nextval('ratings_id_seq'),
			username TEXT NOT NULL,
			comic_id INTEGER NOT NULL,
			rating DOUBLE NOT NULL CHECK (rating >= 1 AND rating <= 5),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Catalog metadata. Title and image_url are nullable: the source
		// data has gaps and the API surfaces them as JSON null.
		`CREATE TABLE IF NOT EXISTS comics (
			comic_id INTEGER PRIMARY KEY,
			title TEXT,
			image_url TEXT
		)`,

		// Normalized genre rows, one per (comic, genre) pair.
		`CREATE TABLE IF NOT EXISTS comic_genres (
			comic_id INTEGER NOT NULL,
			genre TEXT NOT NULL,
			PRIMARY KEY (comic_id, genre)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_ratings_username ON ratings(username)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_comic_id ON ratings(comic_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comic_genres_comic_id ON comic_genres(comic_id)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}
