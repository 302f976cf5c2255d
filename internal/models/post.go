/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// PostStatus defines the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusFuture    PostStatus = "future"
	PostStatusPublished PostStatus = "published"
)

// Post is a piece of content moving through the publication queue.
// Title, Content and Excerpt are opaque payload: the scheduler never
// inspects or rewrites them.
type Post struct {
	ID       string     `gorm:"type:uuid;primaryKey" json:"id"`
	Status   PostStatus `gorm:"type:varchar(32);index:idx_posts_status;not null;default:'draft'" json:"status"`
	// PublishAt is the occurrence claimed by this post, in site-local
	// civil time. Only set while Status is future or published.
	PublishAt *time.Time `gorm:"index:idx_posts_publish_at" json:"publish_at,omitempty"`

	Title   string `gorm:"type:varchar(255);not null" json:"title"`
	Content string `gorm:"type:text" json:"content,omitempty"`
	Excerpt string `gorm:"type:text" json:"excerpt,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// IsQueued returns true if the post holds a future publication slot.
func (p *Post) IsQueued() bool {
	return p.Status == PostStatusFuture && p.PublishAt != nil
}
