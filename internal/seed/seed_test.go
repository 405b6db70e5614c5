package seed

import (
	"testing"

	"plume/internal/database"
	"plume/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeedSocialMesh(t *testing.T) {
	t.Parallel()
	db := setupSeedTestDB(t)

	seeder := NewSeeder(db, Options{SkipBcrypt: true})
	users, err := seeder.SeedSocialMesh(8)
	if err != nil {
		t.Fatalf("seed social mesh: %v", err)
	}
	if len(users) == 0 {
		t.Fatal("expected seeded users")
	}

	var adminCount int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if adminCount != 1 {
		t.Fatalf("expected exactly 1 admin, got %d", adminCount)
	}
}

func TestSeedEngagement(t *testing.T) {
	t.Parallel()
	db := setupSeedTestDB(t)

	seeder := NewSeeder(db, Options{SkipBcrypt: true, MaxDays: 30})
	users, err := seeder.SeedSocialMesh(6)
	if err != nil {
		t.Fatalf("seed social mesh: %v", err)
	}

	posts, err := seeder.SeedEngagement(users, 12)
	if err != nil {
		t.Fatalf("seed engagement: %v", err)
	}
	if len(posts) != 12 {
		t.Fatalf("expected 12 posts, got %d", len(posts))
	}

	// Flagged statuses must line up with the auto-moderation rules: a post
	// at or past the threshold is hidden, below it awaits verification.
	var flagged []models.Post
	if err := db.Where("status != ?", models.PostStatusNormal).Find(&flagged).Error; err != nil {
		t.Fatalf("load flagged: %v", err)
	}
	if len(flagged) == 0 {
		t.Fatal("expected a seeded moderation queue")
	}
	for _, post := range flagged {
		var reports int64
		db.Model(&models.Report{}).Where("post_id = ?", post.ID).Count(&reports)
		want := models.PostStatusAwaitingVerification
		if reports >= models.ReportCriticalThreshold {
			want = models.PostStatusHidden
		}
		if post.Status != want {
			t.Errorf("post %d with %d reports: expected %q, got %q", post.ID, reports, want, post.Status)
		}
	}
}

func TestFactoryPostLengthLimit(t *testing.T) {
	t.Parallel()
	db := setupSeedTestDB(t)

	f := NewFactory(db, Options{SkipBcrypt: true})
	user, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	for i := 0; i < 20; i++ {
		post, err := f.CreatePost(user)
		if err != nil {
			t.Fatalf("create post: %v", err)
		}
		if n := len([]rune(post.Content)); n > models.MaxPostContentLen {
			t.Fatalf("seeded post exceeds length limit: %d runes", n)
		}
	}
}
