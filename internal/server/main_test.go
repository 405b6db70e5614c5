package server

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"

	"plume/internal/database"
	"plume/internal/models"
	"plume/internal/repository"
	"plume/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testUserSeq uint64

func setupServerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// newTestServer wires a Server against an in-memory database without the
// metrics middleware, which registers Prometheus collectors globally and
// cannot be set up twice in one process.
func newTestServer(t *testing.T, db *gorm.DB) *Server {
	t.Helper()

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	s := &Server{db: db, userRepo: userRepo, postRepo: postRepo, commentRepo: commentRepo}
	s.postService = service.NewPostService(postRepo)
	s.commentService = service.NewCommentService(commentRepo, postRepo)
	s.userService = service.NewUserService(userRepo, postRepo)
	s.moderationService = service.NewModerationService(db)
	return s
}

// newFiberTestApp builds a bare app that authenticates requests from the
// X-Test-User header, standing in for the JWT middleware.
func newFiberTestApp() *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if raw := c.Get("X-Test-User"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				c.Locals("userID", uint(id))
			}
		}
		return c.Next()
	})
	return app
}

func createServerTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	n := atomic.AddUint64(&testUserSeq, 1)
	user := &models.User{
		Username: fmt.Sprintf("handler_user_%d", n),
		Email:    fmt.Sprintf("handler_user_%d@example.com", n),
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createServerTestPost(t *testing.T, db *gorm.DB, userID uint, status models.PostStatus) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:  userID,
		Content: "something worth reading",
		Status:  status,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
