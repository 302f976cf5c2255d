/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pressdb "github.com/friendsincode/press_queue/internal/db"
	"github.com/friendsincode/press_queue/internal/models"
	"github.com/friendsincode/press_queue/internal/store"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

func TestNewDefaultsInterval(t *testing.T) {
	t.Parallel()

	svc := New(nil, fixedClock{}, 0, zerolog.Nop())
	if svc.interval != time.Hour {
		t.Errorf("interval = %v, want 1h", svc.interval)
	}

	svc = New(nil, fixedClock{}, 10*time.Minute, zerolog.Nop())
	if svc.interval != 10*time.Minute {
		t.Errorf("interval = %v, want 10m", svc.interval)
	}
}

func TestRunOncePublishesDuePosts(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := pressdb.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	posts := store.NewPostStore(db)
	ctx := context.Background()

	now := time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)

	due := &models.Post{ID: uuid.NewString(), Status: models.PostStatusDraft, Title: "due"}
	pending := &models.Post{ID: uuid.NewString(), Status: models.PostStatusDraft, Title: "pending"}
	for _, p := range []*models.Post{due, pending} {
		if err := posts.Create(ctx, p); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}
	if err := posts.CommitSchedule(ctx, due.ID, now.Add(-5*time.Minute)); err != nil {
		t.Fatalf("commit due: %v", err)
	}
	if err := posts.CommitSchedule(ctx, pending.ID, now.Add(24*time.Hour)); err != nil {
		t.Fatalf("commit pending: %v", err)
	}

	svc := New(posts, fixedClock{t: now}, time.Hour, zerolog.Nop())

	published, err := svc.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if published != 1 {
		t.Fatalf("published %d, want 1", published)
	}

	// A second pass finds nothing left to do.
	published, err = svc.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if published != 0 {
		t.Errorf("second pass published %d, want 0", published)
	}
}
