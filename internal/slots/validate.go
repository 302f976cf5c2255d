/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package slots

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidSlot marks a slot definition that failed validation. Bad
// definitions are rejected before they reach storage, never coerced.
var ErrInvalidSlot = errors.New("invalid slot definition")

// timeOfDayPattern matches 24-hour "HH:MM" with an optional leading zero
// on the hour.
var timeOfDayPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ValidateSlot checks a slot definition: ISO day of week 1-7 and a
// well-formed time of day.
func ValidateSlot(dayOfWeek int, timeOfDay string) error {
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return fmt.Errorf("%w: day of week %d out of range 1-7", ErrInvalidSlot, dayOfWeek)
	}
	if !timeOfDayPattern.MatchString(timeOfDay) {
		return fmt.Errorf("%w: time of day %q is not HH:MM", ErrInvalidSlot, timeOfDay)
	}
	return nil
}

// ParseTimeOfDay splits a validated "HH:MM" value into its components.
func ParseTimeOfDay(timeOfDay string) (hour, minute int, err error) {
	if !timeOfDayPattern.MatchString(timeOfDay) {
		return 0, 0, fmt.Errorf("%w: time of day %q is not HH:MM", ErrInvalidSlot, timeOfDay)
	}
	parts := strings.SplitN(timeOfDay, ":", 2)
	hour, _ = strconv.Atoi(parts[0])
	minute, _ = strconv.Atoi(parts[1])
	return hour, minute, nil
}
