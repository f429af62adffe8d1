// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import "math"

// SimilarityFunc scores how alike two users' tastes are, computed over the
// comics both have rated. ok is false when the similarity is undefined
// (no overlapping rated comics); such users are excluded as neighbors.
type SimilarityFunc func(a, b map[int]float64) (sim float64, ok bool)

// SimilarityByName returns the similarity metric for a config name.
// Unknown names fall back to Pearson, the default.
func SimilarityByName(name string) SimilarityFunc {
	switch name {
	case "cosine":
		return CosineSimilarity
	case "euclidean":
		return InverseEuclideanSimilarity
	default:
		return PearsonSimilarity
	}
}

// overlap collects the comic ids rated by both users.
func overlap(a, b map[int]float64) []int {
	// Iterate over the smaller map.
	if len(b) < len(a) {
		a, b = b, a
	}
	var common []int
	for id := range a {
		if _, ok := b[id]; ok {
			common = append(common, id)
		}
	}
	return common
}

// PearsonSimilarity is the Pearson correlation coefficient over the
// overlapping ratings. At least two overlapping comics are required;
// zero variance on either side yields similarity 0.
func PearsonSimilarity(a, b map[int]float64) (float64, bool) {
	common := overlap(a, b)
	if len(common) < 2 {
		return 0, len(common) == 1
	}

	var sumA, sumB float64
	for _, id := range common {
		sumA += a[id]
		sumB += b[id]
	}
	meanA := sumA / float64(len(common))
	meanB := sumB / float64(len(common))

	var num, denA, denB float64
	for _, id := range common {
		da := a[id] - meanA
		db := b[id] - meanB
		num += da * db
		denA += da * da
		denB += db * db
	}

	if denA == 0 || denB == 0 {
		return 0, true
	}
	return num / (math.Sqrt(denA) * math.Sqrt(denB)), true
}

// CosineSimilarity is the cosine of the two rating vectors restricted to
// the overlapping comics.
func CosineSimilarity(a, b map[int]float64) (float64, bool) {
	common := overlap(a, b)
	if len(common) == 0 {
		return 0, false
	}

	var dot, normA, normB float64
	for _, id := range common {
		dot += a[id] * b[id]
		normA += a[id] * a[id]
		normB += b[id] * b[id]
	}

	if normA == 0 || normB == 0 {
		return 0, true
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// InverseEuclideanSimilarity maps the Euclidean distance over overlapping
// ratings into (0, 1]: identical overlaps score 1, distant ones approach 0.
func InverseEuclideanSimilarity(a, b map[int]float64) (float64, bool) {
	common := overlap(a, b)
	if len(common) == 0 {
		return 0, false
	}

	var sum float64
	for _, id := range common {
		d := a[id] - b[id]
		sum += d * d
	}
	return 1 / (1 + math.Sqrt(sum)), true
}
