/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package queue assigns posts to free publication slot occurrences without
// double-booking.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/press_queue/internal/models"
	"github.com/friendsincode/press_queue/internal/slots"
	"github.com/friendsincode/press_queue/internal/store"
	"github.com/friendsincode/press_queue/internal/telemetry"
)

// slotSearchWindow is how many free occurrences are resolved when the
// caller asks for a specific slot. The requested slot's next occurrence
// is expected well inside this window; beyond it the slot id is treated
// as stale.
const slotSearchWindow = 10

// Service orchestrates slot resolution and the schedule commit. It holds
// no state between calls; every invocation recomputes from fresh store
// reads.
type Service struct {
	slots  store.SlotStore
	posts  store.PostStore
	clock  Clock
	logger zerolog.Logger
}

// New constructs the queueing service.
func New(slotStore store.SlotStore, postStore store.PostStore, clock Clock, logger zerolog.Logger) *Service {
	return &Service{
		slots:  slotStore,
		posts:  postStore,
		clock:  clock,
		logger: logger,
	}
}

// Available returns the next free occurrences, nearest first. A limit of 0
// returns the full bounded projection window. The call never mutates store
// state.
func (s *Service) Available(ctx context.Context, limit int) ([]slots.Occurrence, error) {
	ctx, span := telemetry.StartSpan(ctx, "queue", "Available")
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.SlotResolveDuration.Observe(time.Since(start).Seconds())
	}()

	templates, taken, err := s.loadScheduleState(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return slots.ResolveAvailable(s.clock.Now(), templates, taken, limit), nil
}

// QueuePost assigns the post to a publication occurrence and returns the
// resulting publish time. With a slot id the post lands on that slot's
// next free occurrence; without one it takes the nearest free occurrence
// of any slot. On any failure the post keeps its prior status and publish
// time.
func (s *Service) QueuePost(ctx context.Context, postID, slotID string) (time.Time, error) {
	ctx, span := telemetry.StartSpan(ctx, "queue", "QueuePost")
	defer span.End()
	telemetry.AddSpanAttributes(span, map[string]any{
		"post_id": postID,
		"slot_id": slotID,
	})

	at, err := s.queuePost(ctx, postID, slotID)
	switch {
	case err == nil:
		telemetry.QueueAttemptsTotal.WithLabelValues("queued").Inc()
	case errors.Is(err, store.ErrSlotTaken):
		telemetry.QueueAttemptsTotal.WithLabelValues("conflict").Inc()
	case errors.Is(err, store.ErrPostNotFound), errors.Is(err, store.ErrSlotNotFound), errors.Is(err, store.ErrNoSlots):
		telemetry.QueueAttemptsTotal.WithLabelValues("not_found").Inc()
	default:
		telemetry.QueueAttemptsTotal.WithLabelValues("error").Inc()
		telemetry.RecordError(span, err)
	}
	return at, err
}

func (s *Service) queuePost(ctx context.Context, postID, slotID string) (time.Time, error) {
	templates, taken, err := s.loadScheduleState(ctx)
	if err != nil {
		return time.Time{}, err
	}
	now := s.clock.Now()

	var chosen slots.Occurrence
	if slotID != "" {
		candidates := slots.ResolveAvailable(now, templates, taken, slotSearchWindow)
		found := false
		for _, occ := range candidates {
			if occ.SlotID == slotID {
				chosen = occ
				found = true
				break
			}
		}
		if !found {
			return time.Time{}, store.ErrSlotNotFound
		}
	} else {
		candidates := slots.ResolveAvailable(now, templates, taken, 1)
		if len(candidates) == 0 {
			return time.Time{}, store.ErrNoSlots
		}
		chosen = candidates[0]
	}

	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return time.Time{}, err
	}

	// The taken set may have gone stale while we were reading the post.
	// Re-read before committing; the store's transactional commit is the
	// final arbiter for races that slip through even this check.
	fresh, err := s.posts.ListFuture(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if takenSet(fresh).Has(chosen.At) {
		return time.Time{}, store.ErrSlotTaken
	}

	if err := s.posts.CommitSchedule(ctx, post.ID, chosen.At); err != nil {
		return time.Time{}, err
	}

	s.logger.Info().
		Str("post_id", post.ID).
		Str("slot_id", chosen.SlotID).
		Time("publish_at", chosen.At).
		Msg("post queued")

	return chosen.At, nil
}

// loadScheduleState reads the slot templates and the taken set in one
// place so Available and QueuePost see the schedule the same way.
func (s *Service) loadScheduleState(ctx context.Context) ([]models.PublicationSlot, slots.Taken, error) {
	templates, err := s.slots.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	future, err := s.posts.ListFuture(ctx)
	if err != nil {
		return nil, nil, err
	}
	return templates, takenSet(future), nil
}

func takenSet(future []store.FuturePost) slots.Taken {
	times := make([]time.Time, len(future))
	for i, p := range future {
		times[i] = p.PublishAt
	}
	return slots.NewTaken(times)
}
