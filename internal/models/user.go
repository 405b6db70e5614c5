// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role determines which capabilities a user holds beyond resource ownership.
type Role string

// Roles, from least to most privileged.
const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User represents a registered account in the Plume application.
// Username uniqueness is case-insensitive: UsernameLower carries the unique
// index while Username preserves the casing the user typed.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"not null" json:"username"`
	UsernameLower string    `gorm:"uniqueIndex;not null" json:"-"`
	Email         string    `gorm:"not null" json:"email"`
	Password      string    `gorm:"not null" json:"-"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	Bio           string    `gorm:"type:text" json:"bio"`
	Study         string    `json:"study"`
	Instagram     string    `json:"instagram"`
	Twitter       string    `json:"twitter"`
	GitHub        string    `json:"github"`
	Website       string    `json:"website"`
	Role          Role      `gorm:"not null;default:user" json:"role"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// BeforeSave keeps the lowercased shadow column in sync with the username.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.UsernameLower = strings.ToLower(u.Username)
	return nil
}

// IsBirthday reports whether today is the user's birthday.
func (u *User) IsBirthday() bool {
	now := time.Now()
	return u.DateOfBirth.Month() == now.Month() && u.DateOfBirth.Day() == now.Day()
}
