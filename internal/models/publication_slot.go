/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// PublicationSlot is a recurring weekly publication rule: a day of week
// plus a local time of day. Slots are immutable once created; deleting a
// slot does not touch posts already queued on one of its occurrences.
type PublicationSlot struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`
	// DayOfWeek follows ISO-8601: 1=Monday .. 7=Sunday.
	DayOfWeek int `gorm:"not null" json:"day_of_week"`
	// TimeOfDay is "HH:MM", 24-hour local time.
	TimeOfDay string `gorm:"type:varchar(5);not null" json:"time_of_day"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for GORM.
func (PublicationSlot) TableName() string {
	return "publication_slots"
}

// Weekday maps the ISO day number onto time.Weekday.
func (s *PublicationSlot) Weekday() time.Weekday {
	return time.Weekday(s.DayOfWeek % 7)
}
