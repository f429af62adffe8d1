// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

// DBSCAN is the density clustering variant. It groups comics whose
// feature vectors are mutually reachable within Epsilon given at least
// MinPoints neighbors, discovering the cluster count automatically.
// Comics not density-reachable from any cluster are labeled Noise.
type DBSCAN struct {
	Epsilon   float64
	MinPoints int
}

// NewDBSCAN creates a DBSCAN clusterer.
func NewDBSCAN(epsilon float64, minPoints int) *DBSCAN {
	return &DBSCAN{Epsilon: epsilon, MinPoints: minPoints}
}

// Name returns the algorithm identifier.
func (db *DBSCAN) Name() string {
	return "dbscan"
}

// internal labels during the scan
const (
	unvisited = -2
	noiseTmp  = -1
)

// Assign runs the classic density scan: core points (>= MinPoints
// neighbors within Epsilon, the point itself included) seed clusters that
// expand through density-reachable points. Border points join the first
// cluster that reaches them; everything else ends up as Noise.
// Fewer than two comics yield the degenerate single cluster.
func (db *DBSCAN) Assign(fs *FeatureSet) Assignment {
	n := fs.Len()
	if n < 2 {
		return singleCluster(fs)
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	cluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}

		neighbors := db.regionQuery(fs, i)
		if len(neighbors) < db.MinPoints {
			labels[i] = noiseTmp
			continue
		}

		labels[i] = cluster
		// Seed set expansion; neighbors grows as core points are found.
		for qi := 0; qi < len(neighbors); qi++ {
			q := neighbors[qi]
			if labels[q] == noiseTmp {
				labels[q] = cluster // border point
			}
			if labels[q] != unvisited {
				continue
			}
			labels[q] = cluster

			qNeighbors := db.regionQuery(fs, q)
			if len(qNeighbors) >= db.MinPoints {
				neighbors = append(neighbors, qNeighbors...)
			}
		}
		cluster++
	}

	assign := make(Assignment, n)
	for i, id := range fs.IDs {
		if labels[i] == noiseTmp {
			assign[id] = Noise
		} else {
			assign[id] = labels[i]
		}
	}
	return assign
}

// regionQuery returns the indices of all comics within Epsilon of comic i,
// including i itself.
func (db *DBSCAN) regionQuery(fs *FeatureSet, i int) []int {
	var neighbors []int
	for j, vec := range fs.Vectors {
		if euclideanDistance(fs.Vectors[i], vec) <= db.Epsilon {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
