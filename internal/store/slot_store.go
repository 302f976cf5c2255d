/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package store holds the two collaborator stores the queue depends on:
// publication slot templates and posts. The scheduling core only sees the
// interfaces; the GORM implementations live here so the database choice
// stays out of the core.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/friendsincode/press_queue/internal/models"
	"github.com/friendsincode/press_queue/internal/slots"
)

// SlotStore manages weekly publication slot definitions.
type SlotStore interface {
	// List returns every slot, ordered by day of week then time of day.
	List(ctx context.Context) ([]models.PublicationSlot, error)
	// Add validates and persists a new slot definition.
	Add(ctx context.Context, dayOfWeek int, timeOfDay string) (*models.PublicationSlot, error)
	// Delete removes a slot. Posts already queued on one of its
	// occurrences keep their schedule.
	Delete(ctx context.Context, id string) error
}

// GormSlotStore is the database-backed SlotStore.
type GormSlotStore struct {
	db *gorm.DB
}

// NewSlotStore constructs a slot store on the given connection.
func NewSlotStore(db *gorm.DB) *GormSlotStore {
	return &GormSlotStore{db: db}
}

func (s *GormSlotStore) List(ctx context.Context) ([]models.PublicationSlot, error) {
	var out []models.PublicationSlot
	err := s.db.WithContext(ctx).
		Order("day_of_week ASC, time_of_day ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return out, nil
}

func (s *GormSlotStore) Add(ctx context.Context, dayOfWeek int, timeOfDay string) (*models.PublicationSlot, error) {
	if err := slots.ValidateSlot(dayOfWeek, timeOfDay); err != nil {
		return nil, err
	}

	slot := models.PublicationSlot{
		ID:        uuid.NewString(),
		DayOfWeek: dayOfWeek,
		TimeOfDay: timeOfDay,
	}
	if err := s.db.WithContext(ctx).Create(&slot).Error; err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return &slot, nil
}

func (s *GormSlotStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PublicationSlot{})
	if result.Error != nil {
		return fmt.Errorf("delete slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}
