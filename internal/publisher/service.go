/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package publisher periodically publishes queued posts whose publication
// time has arrived.
package publisher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/press_queue/internal/queue"
	"github.com/friendsincode/press_queue/internal/store"
	"github.com/friendsincode/press_queue/internal/telemetry"
)

// Service is the publication loop. Scheduling itself happens on demand
// through the queue service; this loop only flips due posts to published.
type Service struct {
	posts    store.PostStore
	clock    queue.Clock
	interval time.Duration
	logger   zerolog.Logger
}

// New constructs the publisher. A non-positive interval falls back to one
// hour, matching the cadence the queue was designed around.
func New(posts store.PostStore, clock queue.Clock, interval time.Duration, logger zerolog.Logger) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		posts:    posts,
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

// Run executes the publisher loop until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("publisher loop started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("publisher loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// RunOnce performs a single publication pass, returning how many posts
// were published.
func (s *Service) RunOnce(ctx context.Context) (int64, error) {
	return s.posts.PublishDue(ctx, s.clock.Now())
}

func (s *Service) tick(ctx context.Context) {
	telemetry.PublisherRunsTotal.Inc()

	published, err := s.RunOnce(ctx)
	if err != nil {
		telemetry.PublisherErrorsTotal.Inc()
		s.logger.Error().Err(err).Msg("publication pass failed")
		return
	}
	if published > 0 {
		telemetry.PublishedPostsTotal.Add(float64(published))
		s.logger.Info().Int64("published", published).Msg("published due posts")
	}
}
