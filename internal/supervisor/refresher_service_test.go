// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockRefresher counts refresh calls and optionally fails them.
type mockRefresher struct {
	calls atomic.Int32
	err   error
}

func (m *mockRefresher) Refresh(ctx context.Context) error {
	m.calls.Add(1)
	return m.err
}

func TestSnapshotRefresherServiceTicks(t *testing.T) {
	refresher := &mockRefresher{}
	svc := NewSnapshotRefresherService(refresher, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
	}
	if refresher.calls.Load() == 0 {
		t.Error("Refresh was never called")
	}
}

func TestSnapshotRefresherServiceSurvivesFailures(t *testing.T) {
	refresher := &mockRefresher{err: errors.New("database locked")}
	svc := NewSnapshotRefresherService(refresher, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
	}
	if refresher.calls.Load() < 2 {
		t.Errorf("Refresh called %d times, want retries after failure", refresher.calls.Load())
	}
}

func TestSnapshotRefresherServiceDefaultInterval(t *testing.T) {
	svc := NewSnapshotRefresherService(&mockRefresher{}, 0)
	if svc.interval != 15*time.Minute {
		t.Errorf("interval = %s, want 15m", svc.interval)
	}
}

func TestSnapshotRefresherServiceString(t *testing.T) {
	svc := NewSnapshotRefresherService(&mockRefresher{}, time.Minute)
	if got := svc.String(); got != "snapshot-refresher" {
		t.Errorf("String() = %q, want snapshot-refresher", got)
	}
}
