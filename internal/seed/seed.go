package seed

import (
	"fmt"
	"log"

	"plume/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder populates the database with demo data for development.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes all seeded data. PostgreSQL only.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE reports, likes, comments, posts, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// SeedSocialMesh creates a population of users: a handful of well-known
// accounts for manual testing plus randomly generated ones.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	wellKnown := []models.User{
		{Username: "plume_admin", Email: "admin@plume.local", Role: models.RoleAdmin, Bio: "Keeps the lights on."},
		{Username: "plume_mod", Email: "mod@plume.local", Role: models.RoleModerator, Bio: "Reads the report queue."},
		{Username: "plume_test", Email: "test@plume.local", Role: models.RoleUser, Bio: "Just here for testing."},
	}
	for i := range wellKnown {
		wellKnown[i].Password = string(hashedPassword)
		if err := s.db.Create(&wellKnown[i]).Error; err != nil {
			return nil, fmt.Errorf("create well-known user %s: %w", wellKnown[i].Username, err)
		}
		users = append(users, &wellKnown[i])
	}

	for i := len(users); i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			log.Printf("seed: skipping user %d: %v", i, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	log.Printf("%d users created", len(users))
	return users, nil
}

// SeedEngagement creates posts for the given users along with comments and
// likes, plus a few reported posts so the moderation queue has content.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to seed posts for")
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.factory.rnd.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	comments := 0
	likes := 0
	for _, post := range posts {
		nComments := s.factory.rnd.Intn(4)
		for i := 0; i < nComments; i++ {
			commenter := users[s.factory.rnd.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err == nil {
				comments++
			}
		}

		nLikes := s.factory.rnd.Intn(6)
		seen := map[uint]bool{}
		for i := 0; i < nLikes; i++ {
			liker := users[s.factory.rnd.Intn(len(users))]
			if seen[liker.ID] {
				continue
			}
			seen[liker.ID] = true
			if err := s.factory.CreateLike(liker, post); err == nil {
				likes++
			}
		}
	}
	log.Printf("%d comments and %d likes created", comments, likes)

	if err := s.seedModerationQueue(users, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// seedModerationQueue reports a small slice of posts so the flagged views
// show realistic data. Stored statuses are kept consistent with the report
// counts the auto-moderation rules would have produced.
func (s *Seeder) seedModerationQueue(users []*models.User, posts []*models.Post) error {
	if len(posts) < 4 || len(users) < models.ReportCriticalThreshold+1 {
		return nil
	}

	flagged := posts[:4]
	for i, post := range flagged {
		// The first two stay under the threshold, the rest cross it.
		reports := 1 + i
		added := 0
		for _, user := range users {
			if added >= reports {
				break
			}
			if user.ID == post.UserID {
				continue
			}
			if err := s.factory.CreateReport(user, post); err != nil {
				return err
			}
			added++
		}

		status := models.PostStatusAwaitingVerification
		if added >= models.ReportCriticalThreshold {
			status = models.PostStatusHidden
		}
		if err := s.db.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("status", status).Error; err != nil {
			return err
		}
	}

	log.Printf("%d posts flagged for the moderation queue", len(flagged))
	return nil
}
