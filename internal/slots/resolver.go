/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package slots projects weekly publication slots into concrete future
// occurrences and filters out the ones already claimed by queued posts.
package slots

import (
	"fmt"
	"sort"
	"time"

	"github.com/friendsincode/press_queue/internal/models"
)

// lookaheadCycles bounds the projection window per slot. Weekly slots are
// expanded for this many cycles and no further, so the candidate set stays
// finite even when every near-term occurrence is taken.
const lookaheadCycles = 10

// Occurrence is one concrete future timestamp produced by projecting a
// publication slot forward. It has no identity beyond (SlotID, At) and is
// never persisted.
type Occurrence struct {
	SlotID string    `json:"slot_id"`
	At     time.Time `json:"at"`
}

// Label renders the occurrence for humans, e.g. "2 Mar 2026 09:00 (Monday)".
func (o Occurrence) Label() string {
	return fmt.Sprintf("%s (%s)", o.At.Format("2 Jan 2006 15:04"), o.At.Weekday())
}

// Taken is the set of publish timestamps already claimed by queued posts,
// keyed by instant so that comparisons survive location round-trips through
// the database.
type Taken map[int64]struct{}

// NewTaken builds the taken set from post publish timestamps.
func NewTaken(times []time.Time) Taken {
	taken := make(Taken, len(times))
	for _, t := range times {
		taken[t.Unix()] = struct{}{}
	}
	return taken
}

// Has reports whether the instant is already claimed.
func (t Taken) Has(at time.Time) bool {
	_, ok := t[at.Unix()]
	return ok
}

// ResolveAvailable expands every slot into its next occurrences starting at
// now, drops the ones already taken, and returns the remainder nearest
// first. A limit of 0 means no truncation; the result is still bounded by
// the projection window. The call is pure: repeated invocations with the
// same inputs return the same sequence.
func ResolveAvailable(now time.Time, templates []models.PublicationSlot, taken Taken, limit int) []Occurrence {
	if len(templates) == 0 {
		return nil
	}

	candidates := make([]Occurrence, 0, len(templates)*lookaheadCycles)
	for i := range templates {
		slot := &templates[i]
		hour, minute, err := ParseTimeOfDay(slot.TimeOfDay)
		if err != nil {
			// Malformed rows cannot occur through the store, which
			// validates on insert. Skip rather than guess.
			continue
		}

		first := nextOccurrence(now, slot.Weekday(), hour, minute)
		for cycle := 0; cycle < lookaheadCycles; cycle++ {
			candidates = append(candidates, Occurrence{
				SlotID: slot.ID,
				At:     first.AddDate(0, 0, 7*cycle),
			})
		}
	}

	// Nearest first; identical timestamps (two slots on the same day and
	// time) ordered by slot id so the sequence is deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].At.Equal(candidates[j].At) {
			return candidates[i].SlotID < candidates[j].SlotID
		}
		return candidates[i].At.Before(candidates[j].At)
	})

	available := make([]Occurrence, 0, len(candidates))
	for _, occ := range candidates {
		if taken.Has(occ.At) {
			continue
		}
		available = append(available, occ)
		if limit > 0 && len(available) >= limit {
			break
		}
	}
	return available
}

// nextOccurrence returns the first instant at or after now whose weekday
// and local time match the slot. When the slot's time is still ahead of
// now on the matching day, today counts; otherwise the occurrence falls in
// a following week. Date arithmetic stays in now's location so the result
// is civil time, unaffected by DST offsets.
func nextOccurrence(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	sameDay := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	daysAhead := (int(weekday) - int(now.Weekday()) + 7) % 7
	if daysAhead == 0 && !sameDay.After(now) {
		daysAhead = 7
	}
	return sameDay.AddDate(0, 0, daysAhead)
}
