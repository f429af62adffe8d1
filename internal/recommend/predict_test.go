// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import (
	"math"
	"testing"
)

func TestPredictWeightedAverage(t *testing.T) {
	// visitor agrees perfectly with alice (sim 1) and disagrees with bob.
	// alice rated the candidate 5, bob rated it 1: the prediction must
	// lean heavily toward alice.
	m := NewMatrix([]Rating{
		{Username: "visitor-x", ComicID: 1, Rating: 1},
		{Username: "visitor-x", ComicID: 2, Rating: 3},
		{Username: "visitor-x", ComicID: 3, Rating: 5},

		{Username: "alice", ComicID: 1, Rating: 1},
		{Username: "alice", ComicID: 2, Rating: 3},
		{Username: "alice", ComicID: 3, Rating: 5},
		{Username: "alice", ComicID: 10, Rating: 5},

		{Username: "bob", ComicID: 1, Rating: 5},
		{Username: "bob", ComicID: 2, Rating: 3},
		{Username: "bob", ComicID: 3, Rating: 1},
		{Username: "bob", ComicID: 10, Rating: 1},
	})

	p := NewPredictor(10, "pearson")
	pred := p.Predict(m, "visitor-x", 10)

	if pred.ComicID != 10 {
		t.Errorf("ComicID = %d, want 10", pred.ComicID)
	}
	// bob has similarity -1 and carries no weight; only alice counts.
	if math.Abs(pred.Rating-5) > 1e-9 {
		t.Errorf("Rating = %v, want 5", pred.Rating)
	}
	if pred.Neighbors != 1 {
		t.Errorf("Neighbors = %d, want 1", pred.Neighbors)
	}
}

func TestPredictRespectsK(t *testing.T) {
	// Three positively-correlated raters; K=1 must keep only the closest.
	m := NewMatrix([]Rating{
		{Username: "v", ComicID: 1, Rating: 1},
		{Username: "v", ComicID: 2, Rating: 5},

		{Username: "close", ComicID: 1, Rating: 1},
		{Username: "close", ComicID: 2, Rating: 5},
		{Username: "close", ComicID: 10, Rating: 4},

		{Username: "far", ComicID: 1, Rating: 2},
		{Username: "far", ComicID: 2, Rating: 4},
		{Username: "far", ComicID: 10, Rating: 2},
	})

	pred := NewPredictor(1, "euclidean").Predict(m, "v", 10)
	if pred.Neighbors != 1 {
		t.Fatalf("Neighbors = %d, want 1", pred.Neighbors)
	}
	if math.Abs(pred.Rating-4) > 1e-9 {
		t.Errorf("Rating = %v, want 4 (closest neighbor only)", pred.Rating)
	}
}

func TestPredictFallbackToMean(t *testing.T) {
	// The visitor shares no comics with any rater of the candidate:
	// every similarity is undefined or non-positive, so the prediction
	// falls back to the candidate's mean rating.
	m := NewMatrix([]Rating{
		{Username: "v", ComicID: 1, Rating: 5},

		{Username: "alice", ComicID: 10, Rating: 4},
		{Username: "bob", ComicID: 10, Rating: 2},
	})

	pred := NewPredictor(10, "pearson").Predict(m, "v", 10)
	if math.Abs(pred.Rating-3) > 1e-9 {
		t.Errorf("Rating = %v, want mean 3", pred.Rating)
	}
	if pred.Neighbors != 2 {
		t.Errorf("Neighbors = %d, want rater count 2", pred.Neighbors)
	}
}

func TestPredictExcludesVisitorAsNeighbor(t *testing.T) {
	// The visitor rated the comic themselves (possible when predicting
	// outside the candidate path); their own rating must not count.
	m := NewMatrix([]Rating{
		{Username: "v", ComicID: 1, Rating: 5},
		{Username: "v", ComicID: 10, Rating: 5},

		{Username: "alice", ComicID: 10, Rating: 2},
	})

	pred := NewPredictor(10, "pearson").Predict(m, "v", 10)
	// alice overlaps with v on comic 10 only, giving similarity 0 and no
	// weight: the prediction falls back to the item mean over all raters.
	if math.Abs(pred.Rating-3.5) > 1e-9 {
		t.Errorf("Rating = %v, want mean 3.5", pred.Rating)
	}
}
