// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

// Noise is the label for comics not density-reachable from any cluster.
// Only the density variant produces it.
const Noise = -1

// Assignment maps comic id to cluster label. Every comic in the feature
// space appears exactly once, either in a non-negative cluster or as Noise.
type Assignment map[int]int

// Clusters returns the number of distinct non-noise clusters.
func (a Assignment) Clusters() int {
	seen := make(map[int]struct{})
	for _, label := range a {
		if label != Noise {
			seen[label] = struct{}{}
		}
	}
	return len(seen)
}

// NoiseCount returns the number of comics labeled as noise.
func (a Assignment) NoiseCount() int {
	n := 0
	for _, label := range a {
		if label == Noise {
			n++
		}
	}
	return n
}

// Clusterer partitions the feature space into clusters.
//
// Implementations never fail: with fewer than two comics no meaningful
// grouping exists, so they fall back to a single degenerate cluster.
type Clusterer interface {
	Name() string
	Assign(fs *FeatureSet) Assignment
}

// singleCluster assigns every comic to cluster 0. Fallback for feature
// spaces too small to cluster.
func singleCluster(fs *FeatureSet) Assignment {
	assign := make(Assignment, fs.Len())
	for _, id := range fs.IDs {
		assign[id] = 0
	}
	return assign
}
