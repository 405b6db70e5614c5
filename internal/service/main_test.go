package service

import (
	"fmt"
	"testing"

	"plume/internal/database"
	"plume/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

var userSeq int

func createTestUser(t *testing.T, db *gorm.DB, role models.Role) models.User {
	t.Helper()
	userSeq++
	user := models.User{
		Username: fmt.Sprintf("user%d", userSeq),
		Email:    fmt.Sprintf("user%d@example.com", userSeq),
		Password: "hashed-password",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, status models.PostStatus) models.Post {
	t.Helper()
	post := models.Post{
		Content: "something worth reading",
		UserID:  userID,
		Status:  status,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}
