// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

// Package recommend implements the comic recommendation pipeline.
//
// A request carries a short list of self-reported ratings. The pipeline
// merges them into a working copy of the community rating matrix under a
// synthetic visitor user, builds a clustering feature space from genre
// flags and aggregate rating statistics, partitions comics into clusters
// (KMeans or DBSCAN), selects unrated candidates from the visitor's
// clusters, and predicts a rating per candidate with weighted user-based
// k-nearest-neighbor collaborative filtering.
//
// Every stage is pure in-memory computation over an immutable Snapshot;
// nothing is written back, so concurrent requests are independent.
package recommend

import "sort"

// Rating is a single community rating row.
type Rating struct {
	Username string  `json:"username"`
	ComicID  int     `json:"comic_id"`
	Rating   float64 `json:"rating"`
}

// UserRating is one entry of the requester's rating list.
// Title is accepted for client convenience and ignored by the pipeline.
type UserRating struct {
	ID     int     `json:"id"`
	Rating float64 `json:"rating"`
	Title  string  `json:"title,omitempty"`
}

// Comic is catalog metadata for a single comic.
// Title and ImageURL are nil when the catalog has no metadata for the comic.
type Comic struct {
	ID       int      `json:"comic_id"`
	Title    *string  `json:"title"`
	ImageURL *string  `json:"image_url"`
	Genres   []string `json:"genres,omitempty"`
}

// Prediction is a predicted rating for a single candidate comic.
// Neighbors is the number of ratings that supported the prediction.
type Prediction struct {
	ComicID   int
	Rating    float64
	Neighbors int
}

// Recommendation is one entry of the ordered result list.
type Recommendation struct {
	ID        int     `json:"id"`
	Rating    float64 `json:"rating"`
	Neighbors int     `json:"neighbors"`
	Title     *string `json:"title"`
	ImageURL  *string `json:"image_url"`
}

// Matrix is a sparse user-item rating matrix with both orientations
// indexed for O(1) lookups. A missing entry means "unrated".
//
// A Matrix is never mutated after construction; Merge produces a new one.
type Matrix struct {
	byUser map[string]map[int]float64
	byItem map[int]map[string]float64
}

// NewMatrix builds a matrix from rating rows. Duplicate (user, comic)
// pairs keep the maximum rating, matching the legacy pivot behavior.
func NewMatrix(ratings []Rating) *Matrix {
	m := &Matrix{
		byUser: make(map[string]map[int]float64),
		byItem: make(map[int]map[string]float64),
	}
	for _, r := range ratings {
		m.set(r.Username, r.ComicID, r.Rating)
	}
	return m
}

// set records a rating, keeping the max on duplicates.
func (m *Matrix) set(user string, comicID int, rating float64) {
	if row := m.byUser[user]; row == nil {
		m.byUser[user] = map[int]float64{comicID: rating}
	} else if prev, ok := row[comicID]; !ok || rating > prev {
		row[comicID] = rating
	}
	if col := m.byItem[comicID]; col == nil {
		m.byItem[comicID] = map[string]float64{user: rating}
	} else if prev, ok := col[user]; !ok || rating > prev {
		col[user] = rating
	}
}

// Users returns the number of distinct users.
func (m *Matrix) Users() int {
	return len(m.byUser)
}

// Items returns all comic ids with at least one rating, in ascending order.
func (m *Matrix) Items() []int {
	ids := make([]int, 0, len(m.byItem))
	for id := range m.byItem {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// HasItem reports whether the comic has at least one rating.
func (m *Matrix) HasItem(comicID int) bool {
	return len(m.byItem[comicID]) > 0
}

// UserRatings returns the rating vector of a user (comic id -> rating).
// The returned map must not be modified.
func (m *Matrix) UserRatings(user string) map[int]float64 {
	return m.byUser[user]
}

// ItemRatings returns all ratings of a comic (username -> rating).
// The returned map must not be modified.
func (m *Matrix) ItemRatings(comicID int) map[string]float64 {
	return m.byItem[comicID]
}

// ItemStats returns the mean rating and rating count of a comic.
func (m *Matrix) ItemStats(comicID int) (mean float64, count int) {
	col := m.byItem[comicID]
	if len(col) == 0 {
		return 0, 0
	}
	var sum float64
	for _, r := range col {
		sum += r
	}
	return sum / float64(len(col)), len(col)
}

// clone returns a deep copy suitable for per-request mutation.
func (m *Matrix) clone() *Matrix {
	c := &Matrix{
		byUser: make(map[string]map[int]float64, len(m.byUser)),
		byItem: make(map[int]map[string]float64, len(m.byItem)),
	}
	for user, row := range m.byUser {
		nr := make(map[int]float64, len(row))
		for id, r := range row {
			nr[id] = r
		}
		c.byUser[user] = nr
	}
	for id, col := range m.byItem {
		nc := make(map[string]float64, len(col))
		for user, r := range col {
			nc[user] = r
		}
		c.byItem[id] = nc
	}
	return c
}
