// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import "sort"

// neighbor is a community user considered for a prediction.
type neighbor struct {
	user string
	sim  float64
}

// Predictor computes a predicted rating for a candidate comic via weighted
// user-based k-nearest-neighbor collaborative filtering.
//
// For a visitor v and candidate c:
//
//	pred(v, c) = sum_{u in N(v,c)} sim(v, u) * r(u, c) / sum_{u in N(v,c)} sim(v, u)
//
// where N(v, c) is the K users with the highest positive similarity to v
// among those who rated c. When no neighbor carries positive weight the
// prediction falls back to the unweighted mean rating of c.
type Predictor struct {
	K   int
	Sim SimilarityFunc
}

// NewPredictor creates a predictor with k neighbors and the named
// similarity metric.
func NewPredictor(k int, similarity string) *Predictor {
	return &Predictor{K: k, Sim: SimilarityByName(similarity)}
}

// Predict returns the predicted rating of the candidate comic for the
// visitor. The weighted average keeps the result inside the natural
// rating range of the neighbors' ratings.
func (p *Predictor) Predict(m *Matrix, visitor string, comicID int) Prediction {
	visitorVec := m.UserRatings(visitor)
	raters := m.ItemRatings(comicID)

	neighbors := make([]neighbor, 0, len(raters))
	for user := range raters {
		if user == visitor {
			continue
		}
		sim, ok := p.Sim(visitorVec, m.UserRatings(user))
		if !ok {
			continue // no overlap, similarity undefined
		}
		neighbors = append(neighbors, neighbor{user: user, sim: sim})
	}

	// Highest similarity first; username breaks ties deterministically.
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].sim != neighbors[j].sim {
			return neighbors[i].sim > neighbors[j].sim
		}
		return neighbors[i].user < neighbors[j].user
	})
	if len(neighbors) > p.K {
		neighbors = neighbors[:p.K]
	}

	var weightedSum, weightSum float64
	used := 0
	for _, n := range neighbors {
		if n.sim <= 0 {
			continue
		}
		weightedSum += n.sim * raters[n.user]
		weightSum += n.sim
		used++
	}

	if weightSum > 0 {
		return Prediction{ComicID: comicID, Rating: weightedSum / weightSum, Neighbors: used}
	}

	// All weights zero or no qualifying neighbors: fall back to the
	// unweighted mean rating across everyone who rated the comic.
	mean, count := m.ItemStats(comicID)
	return Prediction{ComicID: comicID, Rating: mean, Neighbors: count}
}
