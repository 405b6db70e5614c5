package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is the moderation state of a post.
type PostStatus string

// Post moderation states. Transitions only move toward higher severity:
// normal -> awaiting_verification -> hidden. The single way back is a
// privileged report reset.
const (
	PostStatusNormal               PostStatus = "normal"
	PostStatusAwaitingVerification PostStatus = "awaiting_verification"
	PostStatusHidden               PostStatus = "hidden"
)

// VisibleStatuses is the set of statuses eligible for public listing.
var VisibleStatuses = []PostStatus{PostStatusNormal}

// MaxPostContentLen is the maximum length of a post's text.
const MaxPostContentLen = 500

// Severity orders statuses so that automatic transitions never move a post
// back toward normal.
func (s PostStatus) Severity() int {
	switch s {
	case PostStatusAwaitingVerification:
		return 1
	case PostStatusHidden:
		return 2
	default:
		return 0
	}
}

// Visible reports whether the status belongs to the public visible set.
func (s PostStatus) Visible() bool {
	for _, v := range VisibleStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Post represents a short text post in the Plume application.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user"`
	Status      PostStatus `gorm:"not null;default:normal;index" json:"status"`
	IsAnonymous bool       `gorm:"not null;default:true" json:"is_anonymous"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// ReportsCount is not persisted; computed at query time
	ReportsCount int `gorm:"->" json:"reports_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ShortText returns a preview of the post's text, at most 40 characters.
func (p *Post) ShortText() string {
	const max = 37
	runes := []rune(p.Content)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return p.Content
}
