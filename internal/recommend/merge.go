// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import (
	"github.com/google/uuid"
)

// visitorPrefix marks the synthetic user carrying the requester's ratings.
// The uuid suffix guarantees no collision with stored usernames.
const visitorPrefix = "visitor-"

// MergeResult is the outcome of folding a visitor's ratings into a working
// copy of the community matrix.
type MergeResult struct {
	// Matrix is the merged rating matrix. The community matrix is untouched.
	Matrix *Matrix

	// Visitor is the synthetic username the input was inserted under.
	Visitor string

	// Rated is the set of comic ids the visitor effectively rated.
	Rated map[int]bool

	// Dropped lists input comic ids absent from the catalog. They are
	// excluded from the merge; the caller logs them as a warning.
	Dropped []int
}

// Merge inserts the visitor's ratings into a copy of the community matrix
// under a fresh synthetic username. Comic ids unknown to the catalog are
// dropped silently; duplicate ids keep the maximum rating. Persisted state
// is never touched.
func Merge(community *Matrix, input []UserRating, catalog map[int]Comic) *MergeResult {
	merged := community.clone()
	visitor := visitorPrefix + uuid.New().String()

	rated := make(map[int]bool, len(input))
	var dropped []int
	for _, ur := range input {
		if _, ok := catalog[ur.ID]; !ok {
			dropped = append(dropped, ur.ID)
			continue
		}
		merged.set(visitor, ur.ID, ur.Rating)
		rated[ur.ID] = true
	}

	return &MergeResult{
		Matrix:  merged,
		Visitor: visitor,
		Rated:   rated,
		Dropped: dropped,
	}
}
