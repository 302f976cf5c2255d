/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import "errors"

var (
	// ErrPostNotFound reports an unknown post id.
	ErrPostNotFound = errors.New("post not found")

	// ErrSlotNotFound reports an unknown or no-longer-available slot id.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrNoSlots reports that no publication slot is currently free. This
	// is a normal typed outcome, not a fault.
	ErrNoSlots = errors.New("no slots available")

	// ErrSlotTaken reports a lost race: another post claimed the
	// occurrence between resolve and commit. Callers may re-resolve and
	// retry; the store never retries on its own.
	ErrSlotTaken = errors.New("slot already taken")
)
