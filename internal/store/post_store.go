/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/friendsincode/press_queue/internal/models"
)

// FuturePost is the slice of a queued post the resolver cares about.
type FuturePost struct {
	ID        string
	PublishAt time.Time
}

// PostStore manages post records and the schedule commit.
type PostStore interface {
	// ListFuture returns id and publish time of every queued post. The
	// scan is unbounded; the queue is expected to stay small (tens of
	// posts, not thousands).
	ListFuture(ctx context.Context) ([]FuturePost, error)
	// Get loads a post by id, ErrPostNotFound when absent.
	Get(ctx context.Context, id string) (*models.Post, error)
	// Create persists a new post record.
	Create(ctx context.Context, post *models.Post) error
	// CommitSchedule atomically moves a post to status future at the
	// given publish time. It fails with ErrSlotTaken when another queued
	// post already holds that exact timestamp, leaving the post
	// untouched. Title, content and excerpt are never modified.
	CommitSchedule(ctx context.Context, id string, at time.Time) error
	// ListUpcoming returns queued posts ordered by publish time.
	ListUpcoming(ctx context.Context) ([]models.Post, error)
	// PublishDue flips queued posts whose publish time has passed to
	// published, returning how many changed.
	PublishDue(ctx context.Context, now time.Time) (int64, error)
}

// GormPostStore is the database-backed PostStore.
type GormPostStore struct {
	db *gorm.DB
}

// NewPostStore constructs a post store on the given connection.
func NewPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

func (s *GormPostStore) ListFuture(ctx context.Context) ([]FuturePost, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Select("id", "publish_at").
		Where("status = ?", models.PostStatusFuture).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list future posts: %w", err)
	}

	out := make([]FuturePost, 0, len(posts))
	for _, p := range posts {
		if p.PublishAt == nil {
			continue
		}
		out = append(out, FuturePost{ID: p.ID, PublishAt: *p.PublishAt})
	}
	return out, nil
}

func (s *GormPostStore) Get(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

func (s *GormPostStore) Create(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *GormPostStore) CommitSchedule(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Existence is checked up front rather than via RowsAffected:
		// MySQL reports 0 affected rows for a no-op update, which would
		// make re-committing a post to its current slot look like a
		// missing post.
		var post models.Post
		err := tx.Select("id").First(&post, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("load post: %w", err)
		}

		var count int64
		err = tx.Model(&models.Post{}).
			Where("status = ? AND publish_at = ? AND id <> ?", models.PostStatusFuture, at, id).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("check occupancy: %w", err)
		}
		if count > 0 {
			return ErrSlotTaken
		}

		// The occupancy check above runs at default isolation, so two
		// concurrent commits can both pass it. The unique guard index on
		// queued publish timestamps is the real arbiter; the loser's
		// update comes back as a duplicate key.
		err = tx.Model(&models.Post{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"status":     models.PostStatusFuture,
				"publish_at": at,
			}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlotTaken
		}
		if err != nil {
			return fmt.Errorf("commit schedule: %w", err)
		}
		return nil
	})
}

func (s *GormPostStore) ListUpcoming(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("status = ?", models.PostStatusFuture).
		Order("publish_at ASC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list upcoming posts: %w", err)
	}
	return posts, nil
}

func (s *GormPostStore) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("status = ? AND publish_at <= ?", models.PostStatusFuture, now).
		Update("status", models.PostStatusPublished)
	if result.Error != nil {
		return 0, fmt.Errorf("publish due posts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
