// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"plume/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control factory behavior.
type Options struct {
	// SkipBcrypt stores the plain seed password instead of a hash. Only
	// useful to speed up very large seeds in development.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rnd  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// spreadCreatedAt returns a timestamp scattered over the configured window so
// seeded data produces meaningful per-day statistics.
func (f *Factory) spreadCreatedAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rnd.Intn(maxDays)
	hoursBack := f.rnd.Intn(24)
	minsBack := f.rnd.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// postText generates post content that stays within the length limit.
func (f *Factory) postText() string {
	text := gofakeit.Paragraph(1, 2, 8, " ")
	runes := []rune(text)
	if len(runes) > models.MaxPostContentLen {
		runes = runes[:models.MaxPostContentLen]
	}
	return string(runes)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:    fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:       gofakeit.Email(),
		Bio:         gofakeit.Sentence(10),
		Study:       gofakeit.JobTitle(),
		Website:     gofakeit.URL(),
		Role:        models.RoleUser,
		DateOfBirth: gofakeit.DateRange(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample `models.Post` for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Content:     f.postText(),
		UserID:      user.ID,
		Status:      models.PostStatusNormal,
		IsAnonymous: f.rnd.Float32() < 0.6,
		CreatedAt:   f.spreadCreatedAt(),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// BuildPost constructs a post struct without persisting it. Useful for batching.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Content:     f.postText(),
		UserID:      user.ID,
		Status:      models.PostStatusNormal,
		IsAnonymous: f.rnd.Float32() < 0.6,
		CreatedAt:   f.spreadCreatedAt(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:     gofakeit.Sentence(8),
		UserID:      user.ID,
		PostID:      post.ID,
		IsAnonymous: f.rnd.Float32() < 0.5,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `post`.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Create(like).Error
}

// CreateReport persists a report from `user` on `post`. It does not run the
// moderation flow; callers that want status transitions should report through
// the service layer instead.
func (f *Factory) CreateReport(user *models.User, post *models.Post) error {
	report := &models.Report{
		UserID: user.ID,
		PostID: post.ID,
	}
	if err := f.db.Create(report).Error; err != nil {
		log.Printf("seed: skipping duplicate report user=%d post=%d: %v", user.ID, post.ID, err)
	}
	return nil
}
