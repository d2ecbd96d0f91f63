// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package cachetier

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibescout/vibescout/internal/logging"
)

// Sweeper periodically purges expired hot and warm entries and lets
// BadgerDB reclaim value-log space. Runs as a supervised service.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	log      zerolog.Logger
}

func NewSweeper(m *Manager, interval time.Duration) *Sweeper {
	return &Sweeper{
		manager:  m,
		interval: interval,
		log:      logging.Component("cache-sweeper"),
	}
}

// Serve runs sweep cycles until the context is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			hot, warm := s.manager.SweepExpired()
			if hot > 0 || warm > 0 {
				s.log.Debug().Int("hot", hot).Int("warm", warm).Msg("swept expired cache entries")
			}
		}
	}
}

func (s *Sweeper) String() string {
	return "cache-sweeper"
}
