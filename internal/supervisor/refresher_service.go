// Kappa - Comic Recommendation Service
// Copyright 2026 Kappa Works
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kappaworks/kappa

package supervisor

import (
	"context"
	"time"

	"github.com/kappaworks/kappa/internal/logging"
)

// SnapshotRefresher matches recommend.Provider's refresh method.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) error
}

// SnapshotRefresherService reloads the community data snapshot on a
// fixed interval so new ratings become visible to the pipeline without
// a restart. A failed refresh leaves the previous snapshot serving and
// is retried on the next tick.
type SnapshotRefresherService struct {
	provider SnapshotRefresher
	interval time.Duration
}

// NewSnapshotRefresherService creates the periodic refresh service.
func NewSnapshotRefresherService(provider SnapshotRefresher, interval time.Duration) *SnapshotRefresherService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &SnapshotRefresherService{
		provider: provider,
		interval: interval,
	}
}

// Serve implements suture.Service.
func (s *SnapshotRefresherService) Serve(ctx context.Context) error {
	logger := logging.With().Str("service", "snapshot-refresher").Logger()
	logger.Info().Dur("interval", s.interval).Msg("snapshot refresher running")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("snapshot refresher shutting down")
			return ctx.Err()

		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			err := s.provider.Refresh(refreshCtx)
			cancel()
			if err != nil {
				logger.Warn().Err(err).Msg("snapshot refresh failed, keeping previous snapshot")
			}
		}
	}
}

// String identifies the service in suture log messages.
func (s *SnapshotRefresherService) String() string {
	return "snapshot-refresher"
}
