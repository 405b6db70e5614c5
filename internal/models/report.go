package models

import "time"

// ReportCriticalThreshold is the report count at and beyond which a post is
// automatically hidden. The comparison is >=, so the exact 3rd report hides.
const ReportCriticalThreshold = 3

// Report records that a user reported a post.
// The combination of UserID and PostID must be unique, and the post's author
// can never report their own post.
type Report struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_report_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_report_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post,omitempty"`
}
