/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package slots

import (
	"reflect"
	"testing"
	"time"

	"github.com/friendsincode/press_queue/internal/models"
)

// 2026-03-02 is a Monday, which makes the week arithmetic below easy to
// follow: Mar 4 = Wednesday, Mar 8 = Sunday, Mar 9 = next Monday.
func localDate(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, time.UTC)
}

func slot(id string, day int, timeOfDay string) models.PublicationSlot {
	return models.PublicationSlot{ID: id, DayOfWeek: day, TimeOfDay: timeOfDay}
}

func TestResolveAvailableEmptyTemplates(t *testing.T) {
	got := ResolveAvailable(localDate(4, 9, 0), nil, NewTaken(nil), 5)
	if len(got) != 0 {
		t.Fatalf("expected empty result for zero templates, got %d", len(got))
	}
}

func TestResolveAvailableSameDayEdge(t *testing.T) {
	wednesday := slot("wed-14", 3, "14:00")

	tests := []struct {
		name  string
		now   time.Time
		first time.Time
	}{
		{
			name:  "slot still ahead today counts as today",
			now:   localDate(4, 9, 0), // Wednesday 09:00
			first: localDate(4, 14, 0),
		},
		{
			name:  "slot passed today rolls to next week",
			now:   localDate(4, 15, 0), // Wednesday 15:00
			first: localDate(11, 14, 0),
		},
		{
			name:  "exact slot time has passed",
			now:   localDate(4, 14, 0),
			first: localDate(11, 14, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveAvailable(tt.now, []models.PublicationSlot{wednesday}, NewTaken(nil), 1)
			if len(got) != 1 {
				t.Fatalf("expected 1 occurrence, got %d", len(got))
			}
			if !got[0].At.Equal(tt.first) {
				t.Errorf("first occurrence = %v, want %v", got[0].At, tt.first)
			}
		})
	}
}

func TestResolveAvailableBoundedWindow(t *testing.T) {
	monday := slot("mon-09", 1, "09:00")
	now := localDate(8, 12, 0) // Sunday noon

	got := ResolveAvailable(now, []models.PublicationSlot{monday}, NewTaken(nil), 0)
	if len(got) != 10 {
		t.Fatalf("expected 10 occurrences for a single slot with no limit, got %d", len(got))
	}

	first := localDate(9, 9, 0) // next Monday 09:00
	for i, occ := range got {
		want := first.AddDate(0, 0, 7*i)
		if !occ.At.Equal(want) {
			t.Errorf("occurrence[%d] = %v, want %v", i, occ.At, want)
		}
		if occ.SlotID != "mon-09" {
			t.Errorf("occurrence[%d] slot id = %q", i, occ.SlotID)
		}
	}
}

func TestResolveAvailableSkipsTaken(t *testing.T) {
	monday := slot("mon-09", 1, "09:00")
	now := localDate(8, 12, 0)
	nextMonday := localDate(9, 9, 0)

	got := ResolveAvailable(now, []models.PublicationSlot{monday}, NewTaken([]time.Time{nextMonday}), 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(got))
	}
	if want := nextMonday.AddDate(0, 0, 7); !got[0].At.Equal(want) {
		t.Errorf("first free occurrence = %v, want %v", got[0].At, want)
	}
}

func TestResolveAvailableOrderingAndExclusion(t *testing.T) {
	templates := []models.PublicationSlot{
		slot("fri-18", 5, "18:00"),
		slot("mon-09", 1, "09:00"),
		slot("wed-12", 3, "12:30"),
	}
	now := localDate(8, 12, 0)
	taken := NewTaken([]time.Time{
		localDate(9, 9, 0),
		localDate(11, 12, 30),
	})

	got := ResolveAvailable(now, templates, taken, 0)
	if len(got) != 28 {
		t.Fatalf("expected 30 candidates minus 2 taken, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].At.Before(got[i].At) {
			t.Fatalf("result not strictly ascending at %d: %v >= %v", i, got[i-1].At, got[i].At)
		}
	}
	for _, occ := range got {
		if taken.Has(occ.At) {
			t.Errorf("taken timestamp leaked into result: %v", occ.At)
		}
	}
}

func TestResolveAvailableDeterministicTieBreak(t *testing.T) {
	// Two slots on the same day and time is a degenerate configuration;
	// order must still be stable.
	templates := []models.PublicationSlot{
		slot("b-slot", 1, "09:00"),
		slot("a-slot", 1, "09:00"),
	}
	now := localDate(8, 12, 0)

	first := ResolveAvailable(now, templates, NewTaken(nil), 0)
	second := ResolveAvailable(now, templates, NewTaken(nil), 0)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated calls returned different sequences")
	}
	if first[0].SlotID != "a-slot" || first[1].SlotID != "b-slot" {
		t.Errorf("tie not broken by slot id: got %q then %q", first[0].SlotID, first[1].SlotID)
	}
}

func TestResolveAvailableLimitLargerThanWindow(t *testing.T) {
	monday := slot("mon-09", 1, "09:00")
	got := ResolveAvailable(localDate(8, 12, 0), []models.PublicationSlot{monday}, NewTaken(nil), 50)
	if len(got) != 10 {
		t.Fatalf("expected the full window of 10, got %d", len(got))
	}
}

func TestResolveAvailableAllTaken(t *testing.T) {
	monday := slot("mon-09", 1, "09:00")
	now := localDate(8, 12, 0)

	var times []time.Time
	first := localDate(9, 9, 0)
	for i := 0; i < 10; i++ {
		times = append(times, first.AddDate(0, 0, 7*i))
	}

	got := ResolveAvailable(now, []models.PublicationSlot{monday}, NewTaken(times), 0)
	if len(got) != 0 {
		t.Fatalf("expected no availability when every occurrence is taken, got %d", len(got))
	}
}

func TestOccurrenceLabel(t *testing.T) {
	occ := Occurrence{SlotID: "mon-09", At: localDate(9, 9, 0)}
	if got, want := occ.Label(), "9 Mar 2026 09:00 (Monday)"; got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
}

func TestValidateSlot(t *testing.T) {
	tests := []struct {
		name      string
		day       int
		timeOfDay string
		wantErr   bool
	}{
		{"monday morning", 1, "09:00", false},
		{"sunday midnight", 7, "00:00", false},
		{"end of day", 5, "23:59", false},
		{"single digit hour", 2, "9:30", false},
		{"day zero", 0, "09:00", true},
		{"day eight", 8, "09:00", true},
		{"hour out of range", 3, "24:00", true},
		{"minute out of range", 3, "12:60", true},
		{"missing minutes", 3, "12", true},
		{"not a time", 3, "noon", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlot(tt.day, tt.timeOfDay)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlot(%d, %q) error = %v, wantErr %v", tt.day, tt.timeOfDay, err, tt.wantErr)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	hour, minute, err := ParseTimeOfDay("9:05")
	if err != nil {
		t.Fatalf("ParseTimeOfDay: %v", err)
	}
	if hour != 9 || minute != 5 {
		t.Errorf("ParseTimeOfDay = (%d, %d), want (9, 5)", hour, minute)
	}

	if _, _, err := ParseTimeOfDay("25:00"); err == nil {
		t.Error("expected error for out-of-range hour")
	}
}
