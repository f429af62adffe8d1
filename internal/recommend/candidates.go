// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import "sort"

// SelectCandidates returns the unrated comics that share a cluster with at
// least one comic the visitor rated. A candidate must carry at least one
// community rating so a prediction is statistically meaningful. Noise
// comics never seed cluster selection and are never candidates.
//
// An empty result is a normal outcome, not an error: if every rated comic
// fell into noise (or none appears in the assignment), there is simply
// nothing to recommend.
func SelectCandidates(assign Assignment, m *Matrix, rated map[int]bool) []int {
	touched := make(map[int]struct{})
	for id := range rated {
		if label, ok := assign[id]; ok && label != Noise {
			touched[label] = struct{}{}
		}
	}
	if len(touched) == 0 {
		return nil
	}

	var candidates []int
	for id, label := range assign {
		if label == Noise {
			continue
		}
		if _, ok := touched[label]; !ok {
			continue
		}
		if rated[id] || !m.HasItem(id) {
			continue
		}
		candidates = append(candidates, id)
	}

	// Deterministic order for stable downstream prediction and tests.
	sort.Ints(candidates)
	return candidates
}
