// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import (
	"reflect"
	"testing"
)

func TestSelectCandidates(t *testing.T) {
	m := NewMatrix([]Rating{
		{Username: "alice", ComicID: 1, Rating: 5},
		{Username: "alice", ComicID: 2, Rating: 4},
		{Username: "alice", ComicID: 3, Rating: 3},
		{Username: "alice", ComicID: 4, Rating: 2},
		{Username: "alice", ComicID: 5, Rating: 5},
	})

	tests := []struct {
		name   string
		assign Assignment
		rated  map[int]bool
		want   []int
	}{
		{
			name:   "unrated comics from the touched cluster, ascending",
			assign: Assignment{1: 0, 2: 0, 3: 0, 4: 1, 5: 1},
			rated:  map[int]bool{3: true},
			want:   []int{1, 2},
		},
		{
			name:   "multiple rated comics touch multiple clusters",
			assign: Assignment{1: 0, 2: 0, 3: 0, 4: 1, 5: 1},
			rated:  map[int]bool{3: true, 4: true},
			want:   []int{1, 2, 5},
		},
		{
			name:   "noise comics are never candidates",
			assign: Assignment{1: 0, 2: Noise, 3: 0, 4: Noise, 5: 0},
			rated:  map[int]bool{3: true},
			want:   []int{1, 5},
		},
		{
			name:   "rated comics in noise seed nothing",
			assign: Assignment{1: 0, 2: 0, 3: Noise, 4: 0, 5: 0},
			rated:  map[int]bool{3: true},
			want:   nil,
		},
		{
			name:   "rated comic absent from the assignment seeds nothing",
			assign: Assignment{1: 0, 2: 0},
			rated:  map[int]bool{99: true},
			want:   nil,
		},
		{
			name:   "no rated comics yield no candidates",
			assign: Assignment{1: 0, 2: 0},
			rated:  map[int]bool{},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectCandidates(tt.assign, m, tt.rated)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SelectCandidates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectCandidatesRequiresCommunityRatings(t *testing.T) {
	// Comic 2 shares the cluster but nobody in the community rated it:
	// no prediction is possible, so it must not be a candidate.
	m := NewMatrix([]Rating{
		{Username: "alice", ComicID: 1, Rating: 5},
	})
	assign := Assignment{1: 0, 2: 0, 3: 0}
	rated := map[int]bool{3: true}

	got := SelectCandidates(assign, m, rated)
	if !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("SelectCandidates() = %v, want [1]", got)
	}
}
