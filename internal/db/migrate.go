/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"

	"github.com/friendsincode/press_queue/internal/models"
	"gorm.io/gorm"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.Post{},
		&models.PublicationSlot{},
	); err != nil {
		return err
	}

	return applyFutureSlotUniqueGuard(database)
}

// applyFutureSlotUniqueGuard makes the database itself reject two queued
// posts on the same publish timestamp. The application-level occupancy
// check runs at default isolation, so two concurrent commits can both see
// the slot as free; this index is the serialization point that turns the
// loser into a unique violation.
func applyFutureSlotUniqueGuard(database *gorm.DB) error {
	switch database.Dialector.Name() {
	case "postgres", "sqlite":
		stmt := `CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_future_publish_at
ON posts (publish_at) WHERE status = 'future'`
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply future slot unique guard: %w", err)
		}

	case "mysql":
		// MySQL has no partial indexes; a stored generated column that is
		// NULL outside status future gives the same semantics, since NULLs
		// never collide in a unique index.
		var columns int64
		err := database.Raw(
			"SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = 'posts' AND column_name = 'future_publish_key'",
		).Scan(&columns).Error
		if err != nil {
			return fmt.Errorf("inspect posts columns: %w", err)
		}
		if columns == 0 {
			stmt := `ALTER TABLE posts
ADD COLUMN future_publish_key DATETIME(3)
  GENERATED ALWAYS AS (CASE WHEN status = 'future' THEN publish_at ELSE NULL END) STORED,
ADD UNIQUE INDEX idx_posts_future_publish_key (future_publish_key)`
			if err := database.Exec(stmt).Error; err != nil {
				return fmt.Errorf("apply future slot unique guard: %w", err)
			}
		}
	}

	return nil
}
