// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import (
	"math"
	"math/rand"
)

// kmeansSeed fixes the centroid initialization so assignments are
// reproducible across runs, matching the legacy service.
const kmeansSeed = 1337

// defaultKMeansMaxIter bounds Lloyd iterations; convergence is usually
// reached far earlier on this data.
const defaultKMeansMaxIter = 100

// KMeans is the centroid clustering variant. It partitions comics into
// exactly K clusters minimizing within-cluster sum of squared distances.
// Deterministic for a fixed seed; no noise concept.
type KMeans struct {
	K       int
	MaxIter int
	Seed    int64
}

// NewKMeans creates a KMeans clusterer with k clusters.
func NewKMeans(k int) *KMeans {
	return &KMeans{
		K:       k,
		MaxIter: defaultKMeansMaxIter,
		Seed:    kmeansSeed,
	}
}

// Name returns the algorithm identifier.
func (km *KMeans) Name() string {
	return "kmeans"
}

// Assign partitions the feature space into K clusters using k-means++
// initialization followed by Lloyd iterations. K is capped by the number
// of comics; fewer than two comics yield the degenerate single cluster.
func (km *KMeans) Assign(fs *FeatureSet) Assignment {
	n := fs.Len()
	if n < 2 || km.K <= 1 {
		return singleCluster(fs)
	}

	k := km.K
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(km.Seed))
	centroids := km.seedCentroids(fs, k, rng)

	labels := make([]int, n)
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = defaultKMeansMaxIter
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, vec := range fs.Vectors {
			best := nearestCentroid(vec, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}
		centroids = recomputeCentroids(fs, labels, centroids)
	}

	assign := make(Assignment, n)
	for i, id := range fs.IDs {
		assign[id] = labels[i]
	}
	return assign
}

// seedCentroids picks k initial centroids with the k-means++ strategy:
// the first uniformly, each subsequent one with probability proportional
// to its squared distance from the nearest chosen centroid.
func (km *KMeans) seedCentroids(fs *FeatureSet, k int, rng *rand.Rand) [][]float64 {
	n := fs.Len()
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, copyVector(fs.Vectors[rng.Intn(n)]))

	dists := make([]float64, n)
	for len(centroids) < k {
		var total float64
		for i, vec := range fs.Vectors {
			d := euclideanDistance(vec, centroids[len(centroids)-1])
			d *= d
			if len(centroids) == 1 || d < dists[i] {
				dists[i] = d
			}
			total += dists[i]
		}

		if total == 0 {
			// All remaining points coincide with a centroid; any pick works.
			centroids = append(centroids, copyVector(fs.Vectors[rng.Intn(n)]))
			continue
		}

		target := rng.Float64() * total
		var cum float64
		pick := n - 1
		for i, d := range dists {
			cum += d
			if cum >= target {
				pick = i
				break
			}
		}
		centroids = append(centroids, copyVector(fs.Vectors[pick]))
	}

	return centroids
}

// recomputeCentroids moves each centroid to the mean of its members.
// Empty clusters keep their previous position.
func recomputeCentroids(fs *FeatureSet, labels []int, prev [][]float64) [][]float64 {
	k := len(prev)
	dim := len(prev[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}

	for i, vec := range fs.Vectors {
		c := labels[i]
		counts[c]++
		for j, v := range vec {
			sums[c][j] += v
		}
	}

	centroids := make([][]float64, k)
	for c := range centroids {
		if counts[c] == 0 {
			centroids[c] = prev[c]
			continue
		}
		for j := range sums[c] {
			sums[c][j] /= float64(counts[c])
		}
		centroids[c] = sums[c]
	}
	return centroids
}

// nearestCentroid returns the index of the closest centroid, lowest index
// winning ties for determinism.
func nearestCentroid(vec []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := euclideanDistance(vec, centroid); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func copyVector(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
