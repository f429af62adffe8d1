// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package recommend

import (
	"math"
	"reflect"
	"testing"
)

func TestNewMatrix(t *testing.T) {
	tests := []struct {
		name    string
		ratings []Rating
		verify  func(t *testing.T, m *Matrix)
	}{
		{
			name:    "empty input yields empty matrix",
			ratings: nil,
			verify: func(t *testing.T, m *Matrix) {
				if m.Users() != 0 {
					t.Errorf("Users() = %d, want 0", m.Users())
				}
				if len(m.Items()) != 0 {
					t.Errorf("Items() = %v, want empty", m.Items())
				}
			},
		},
		{
			name: "duplicate user-comic pair keeps the maximum rating",
			ratings: []Rating{
				{Username: "alice", ComicID: 1, Rating: 2.0},
				{Username: "alice", ComicID: 1, Rating: 4.5},
				{Username: "alice", ComicID: 1, Rating: 3.0},
			},
			verify: func(t *testing.T, m *Matrix) {
				if got := m.UserRatings("alice")[1]; got != 4.5 {
					t.Errorf("UserRatings(alice)[1] = %v, want 4.5", got)
				}
				if got := m.ItemRatings(1)["alice"]; got != 4.5 {
					t.Errorf("ItemRatings(1)[alice] = %v, want 4.5", got)
				}
			},
		},
		{
			name: "both orientations stay consistent",
			ratings: []Rating{
				{Username: "alice", ComicID: 1, Rating: 5.0},
				{Username: "alice", ComicID: 2, Rating: 3.0},
				{Username: "bob", ComicID: 2, Rating: 4.0},
			},
			verify: func(t *testing.T, m *Matrix) {
				if m.Users() != 2 {
					t.Errorf("Users() = %d, want 2", m.Users())
				}
				if got := m.Items(); !reflect.DeepEqual(got, []int{1, 2}) {
					t.Errorf("Items() = %v, want [1 2]", got)
				}
				if !m.HasItem(2) || m.HasItem(99) {
					t.Error("HasItem misreports rated/unrated comics")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, NewMatrix(tt.ratings))
		})
	}
}

func TestMatrixItemStats(t *testing.T) {
	m := NewMatrix([]Rating{
		{Username: "alice", ComicID: 7, Rating: 5.0},
		{Username: "bob", ComicID: 7, Rating: 3.0},
		{Username: "carol", ComicID: 7, Rating: 4.0},
	})

	mean, count := m.ItemStats(7)
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if math.Abs(mean-4.0) > 1e-9 {
		t.Errorf("mean = %v, want 4.0", mean)
	}

	mean, count = m.ItemStats(999)
	if mean != 0 || count != 0 {
		t.Errorf("stats for unrated comic = (%v, %d), want (0, 0)", mean, count)
	}
}

func TestMatrixClone(t *testing.T) {
	orig := NewMatrix([]Rating{
		{Username: "alice", ComicID: 1, Rating: 5.0},
	})

	c := orig.clone()
	c.set("bob", 2, 4.0)
	c.set("alice", 1, 5.0)

	if orig.Users() != 1 {
		t.Errorf("original Users() = %d after clone mutation, want 1", orig.Users())
	}
	if orig.HasItem(2) {
		t.Error("clone mutation leaked into the original matrix")
	}
	if c.Users() != 2 || !c.HasItem(2) {
		t.Error("clone did not accept new ratings")
	}
}
