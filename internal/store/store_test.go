/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pressdb "github.com/friendsincode/press_queue/internal/db"
	"github.com/friendsincode/press_queue/internal/models"
	"github.com/friendsincode/press_queue/internal/slots"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// The real migration, so the schedule guard index is in place.
	if err := pressdb.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newDraft(t *testing.T, db *gorm.DB, title string) *models.Post {
	t.Helper()

	post := &models.Post{
		ID:      uuid.NewString(),
		Status:  models.PostStatusDraft,
		Title:   title,
		Content: "body of " + title,
		Excerpt: "excerpt of " + title,
	}
	if err := NewPostStore(db).Create(context.Background(), post); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func TestSlotStoreAddListDelete(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	s := NewSlotStore(db)
	ctx := context.Background()

	// Inserted out of order on purpose; List must sort.
	if _, err := s.Add(ctx, 5, "18:00"); err != nil {
		t.Fatalf("add friday slot: %v", err)
	}
	monday, err := s.Add(ctx, 1, "09:00")
	if err != nil {
		t.Fatalf("add monday slot: %v", err)
	}
	if _, err := s.Add(ctx, 1, "07:30"); err != nil {
		t.Fatalf("add early monday slot: %v", err)
	}

	listed, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(listed))
	}
	if listed[0].TimeOfDay != "07:30" || listed[1].TimeOfDay != "09:00" || listed[2].DayOfWeek != 5 {
		t.Errorf("slots not ordered by day then time: %+v", listed)
	}

	if err := s.Delete(ctx, monday.ID); err != nil {
		t.Fatalf("delete slot: %v", err)
	}
	if err := s.Delete(ctx, monday.ID); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("second delete error = %v, want ErrSlotNotFound", err)
	}
}

func TestSlotStoreAddRejectsInvalid(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	s := NewSlotStore(db)
	ctx := context.Background()

	if _, err := s.Add(ctx, 0, "09:00"); !errors.Is(err, slots.ErrInvalidSlot) {
		t.Errorf("day 0 error = %v, want ErrInvalidSlot", err)
	}
	if _, err := s.Add(ctx, 3, "24:30"); !errors.Is(err, slots.ErrInvalidSlot) {
		t.Errorf("bad time error = %v, want ErrInvalidSlot", err)
	}

	listed, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("invalid slots must not reach storage, found %d", len(listed))
	}
}

func TestPostStoreCommitSchedule(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()

	post := newDraft(t, db, "first")
	at := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

	if err := s.CommitSchedule(ctx, post.ID, at); err != nil {
		t.Fatalf("commit schedule: %v", err)
	}

	got, err := s.Get(ctx, post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.Status != models.PostStatusFuture {
		t.Errorf("status = %q, want future", got.Status)
	}
	if got.PublishAt == nil || !got.PublishAt.Equal(at) {
		t.Errorf("publish_at = %v, want %v", got.PublishAt, at)
	}
	// Payload must survive the commit verbatim.
	if got.Title != post.Title || got.Content != post.Content || got.Excerpt != post.Excerpt {
		t.Error("commit modified post payload")
	}
}

func TestPostStoreCommitScheduleConflict(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()

	first := newDraft(t, db, "first")
	second := newDraft(t, db, "second")
	at := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

	if err := s.CommitSchedule(ctx, first.ID, at); err != nil {
		t.Fatalf("commit first: %v", err)
	}
	err := s.CommitSchedule(ctx, second.ID, at)
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("second commit error = %v, want ErrSlotTaken", err)
	}

	// The loser must be left untouched.
	got, err := s.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if got.Status != models.PostStatusDraft || got.PublishAt != nil {
		t.Errorf("failed commit mutated post: status=%q publish_at=%v", got.Status, got.PublishAt)
	}
}

func TestFuturePublishUniqueGuard(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()

	first := newDraft(t, db, "first")
	second := newDraft(t, db, "second")
	at := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

	if err := s.CommitSchedule(ctx, first.ID, at); err != nil {
		t.Fatalf("commit first: %v", err)
	}

	// Write around the store's occupancy check, the way a concurrent
	// transaction that also saw the slot as free would. The index has to
	// reject it on its own.
	err := db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", second.ID).
		Updates(map[string]any{
			"status":     models.PostStatusFuture,
			"publish_at": at,
		}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("direct double-claim error = %v, want ErrDuplicatedKey", err)
	}
}

func TestPostStoreCommitScheduleConcurrentClaims(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap db: %v", err)
	}
	// One connection keeps both goroutines on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	s := NewPostStore(db)
	ctx := context.Background()

	first := newDraft(t, db, "racer one")
	second := newDraft(t, db, "racer two")
	at := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

	results := make(chan error, 2)
	for _, id := range []string{first.ID, second.ID} {
		go func(postID string) {
			results <- s.CommitSchedule(ctx, postID, at)
		}(id)
	}

	var succeeded, conflicted int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotTaken):
			conflicted++
		default:
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly 1 of each", succeeded, conflicted)
	}

	var claimed int64
	err = db.Model(&models.Post{}).
		Where("status = ? AND publish_at = ?", models.PostStatusFuture, at).
		Count(&claimed).Error
	if err != nil {
		t.Fatalf("count claimed: %v", err)
	}
	if claimed != 1 {
		t.Fatalf("occurrence claimed by %d posts, want 1", claimed)
	}
}

func TestPostStoreCommitScheduleReschedule(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()

	post := newDraft(t, db, "movable")
	at := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

	if err := s.CommitSchedule(ctx, post.ID, at); err != nil {
		t.Fatalf("commit: %v", err)
	}
	// Re-committing the same post to the same occurrence is not a
	// conflict with itself.
	if err := s.CommitSchedule(ctx, post.ID, at); err != nil {
		t.Fatalf("recommit: %v", err)
	}
}

func TestPostStoreCommitScheduleUnknownPost(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	s := NewPostStore(db)

	err := s.CommitSchedule(context.Background(), uuid.NewString(), time.Now())
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("error = %v, want ErrPostNotFound", err)
	}
}

func TestPostStoreListFuture(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()

	queued := newDraft(t, db, "queued")
	newDraft(t, db, "still draft")
	at := time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)
	if err := s.CommitSchedule(ctx, queued.ID, at); err != nil {
		t.Fatalf("commit: %v", err)
	}

	future, err := s.ListFuture(ctx)
	if err != nil {
		t.Fatalf("list future: %v", err)
	}
	if len(future) != 1 {
		t.Fatalf("expected 1 future post, got %d", len(future))
	}
	if future[0].ID != queued.ID || !future[0].PublishAt.Equal(at) {
		t.Errorf("future post = %+v", future[0])
	}
}

func TestPostStorePublishDue(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	s := NewPostStore(db)
	ctx := context.Background()

	due := newDraft(t, db, "due")
	later := newDraft(t, db, "later")
	now := time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)

	if err := s.CommitSchedule(ctx, due.ID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("commit due: %v", err)
	}
	if err := s.CommitSchedule(ctx, later.ID, now.Add(time.Hour)); err != nil {
		t.Fatalf("commit later: %v", err)
	}

	n, err := s.PublishDue(ctx, now)
	if err != nil {
		t.Fatalf("publish due: %v", err)
	}
	if n != 1 {
		t.Fatalf("published %d posts, want 1", n)
	}

	published, err := s.Get(ctx, due.ID)
	if err != nil {
		t.Fatalf("get published: %v", err)
	}
	if published.Status != models.PostStatusPublished {
		t.Errorf("due post status = %q, want published", published.Status)
	}

	pending, err := s.Get(ctx, later.ID)
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if pending.Status != models.PostStatusFuture {
		t.Errorf("later post status = %q, want future", pending.Status)
	}
}
