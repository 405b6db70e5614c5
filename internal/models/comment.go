package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentContentLen is the maximum length of a comment's text.
const MaxCommentContentLen = 300

// Comment represents a comment on a post. Comments carry no moderation
// state machine; they are never auto-hidden.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	PostID      uint      `gorm:"not null;index" json:"post_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	Post        Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
	IsAnonymous bool      `gorm:"not null;default:true" json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ShortText returns a preview of the comment's text, at most 40 characters.
func (c *Comment) ShortText() string {
	const max = 37
	runes := []rune(c.Content)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return c.Content
}
