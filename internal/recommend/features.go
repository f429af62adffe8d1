// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import "math"

// FeatureSet holds the clustering feature space: one numeric vector per
// comic with at least one rating in the merged matrix. Vector layout is
// the snapshot's genre universe (binary flags) followed by two scaled
// aggregate rating statistics. Comics with zero ratings get no vector and
// can never become candidates.
type FeatureSet struct {
	// IDs lists the comic ids in ascending order; Vectors is parallel to it.
	IDs     []int
	Vectors [][]float64
}

// Len returns the number of comics in the feature space.
func (fs *FeatureSet) Len() int {
	return len(fs.IDs)
}

// BuildFeatures derives the per-comic feature vectors used for clustering.
// The two statistics are scaled so their magnitude stays comparable to a
// single genre flag: mean rating (range [1, 5]) by meanScale, and the
// rating count through log1p by countScale.
func BuildFeatures(m *Matrix, catalog map[int]Comic, genres []string, meanScale, countScale float64) *FeatureSet {
	genreIndex := make(map[string]int, len(genres))
	for i, g := range genres {
		genreIndex[g] = i
	}

	ids := m.Items()
	vectors := make([][]float64, len(ids))
	dim := len(genres) + 2

	for i, id := range ids {
		vec := make([]float64, dim)
		if c, ok := catalog[id]; ok {
			for _, g := range c.Genres {
				if j, ok := genreIndex[g]; ok {
					vec[j] = 1
				}
			}
		}
		mean, count := m.ItemStats(id)
		vec[dim-2] = mean * meanScale
		vec[dim-1] = math.Log1p(float64(count)) * countScale
		vectors[i] = vec
	}

	return &FeatureSet{IDs: ids, Vectors: vectors}
}

// euclideanDistance is the shared clustering distance metric.
func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
