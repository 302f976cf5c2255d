/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package publisher

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/friendsincode/press_queue/internal/leadership"
)

// LeaderAware wraps the publisher so only the elected instance runs the
// loop. Without it, several instances would all race PublishDue; the
// update itself is idempotent but the duplicated work and logging are not
// worth keeping.
type LeaderAware struct {
	publisher *Service
	election  *leadership.Election
	logger    zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// NewLeaderAware wraps a publisher with leader election.
func NewLeaderAware(publisher *Service, election *leadership.Election, logger zerolog.Logger) *LeaderAware {
	return &LeaderAware{
		publisher: publisher,
		election:  election,
		logger:    logger.With().Str("component", "leader_aware_publisher").Logger(),
	}
}

// Start begins the election and manages the publisher loop according to
// leadership changes.
func (la *LeaderAware) Start(ctx context.Context) error {
	la.ctx = ctx

	if err := la.election.Start(ctx); err != nil {
		return err
	}
	go la.watch()
	return nil
}

// Stop halts the publisher loop and releases leadership.
func (la *LeaderAware) Stop() error {
	if la.running && la.cancel != nil {
		la.cancel()
		la.running = false
	}
	return la.election.Stop()
}

// IsLeader reports whether this instance currently leads.
func (la *LeaderAware) IsLeader() bool {
	return la.election.IsLeader()
}

func (la *LeaderAware) watch() {
	if la.election.IsLeader() {
		la.startLoop()
	}

	for {
		select {
		case <-la.ctx.Done():
			return
		case isLeader := <-la.election.LeaderCh():
			if isLeader {
				la.logger.Info().Msg("became leader, starting publisher")
				la.startLoop()
			} else {
				la.logger.Warn().Msg("lost leadership, stopping publisher")
				la.stopLoop()
			}
		}
	}
}

func (la *LeaderAware) startLoop() {
	if la.running {
		return
	}

	ctx, cancel := context.WithCancel(la.ctx)
	la.cancel = cancel
	la.running = true

	go func() {
		if err := la.publisher.Run(ctx); err != nil && err != context.Canceled {
			la.logger.Error().Err(err).Msg("publisher error")
		}
		la.running = false
	}()
}

func (la *LeaderAware) stopLoop() {
	if !la.running {
		return
	}
	if la.cancel != nil {
		la.cancel()
		la.cancel = nil
	}
	la.running = false
}
