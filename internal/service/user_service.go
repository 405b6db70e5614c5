package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"plume/internal/authz"
	"plume/internal/models"
	"plume/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const maxBioLen = 500

// usernamePattern allows letters, digits and the separators . - _ up to
// twenty characters, matching what profile URLs can carry.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,20}$`)

type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DateOfBirth string
}

type UpdateProfileInput struct {
	Actor       authz.Actor
	UserID      uint
	Bio         *string
	Study       *string
	Instagram   *string
	Twitter     *string
	GitHub      *string
	Website     *string
	DateOfBirth *string
}

// Profile bundles a user with their recent visible posts.
type Profile struct {
	User  models.User    `json:"user"`
	Posts []*models.Post `json:"posts"`
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{userRepo: userRepo, postRepo: postRepo}
}

// Register creates a new account. Usernames are unique ignoring case, so
// "Alice" and "alice" cannot coexist.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !usernamePattern.MatchString(in.Username) {
		return nil, models.NewValidationError("Username must be 1-20 characters of letters, digits, '.', '-' or '_'")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, models.NewValidationError("A valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, models.NewValidationError("Password must be at least 8 characters")
	}

	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Username already taken")
	}
	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if in.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", in.DateOfBirth)
		if err != nil {
			return nil, models.NewValidationError("date_of_birth must be YYYY-MM-DD")
		}
		user.DateOfBirth = dob
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials against the stored bcrypt hash. The
// identifier may be a username or an email address.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, identifier)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewValidationError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewValidationError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile resolves a profile page: the user plus their recent posts as
// seen by the viewer.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID uint) (*Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	posts, err := s.postRepo.ListByUser(ctx, user.ID, DefaultPageSize, 0, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Profile{User: *user, Posts: posts}, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if err := authz.Authorize(in.Actor, in.UserID, authz.UserEdit); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError(fmt.Sprintf("Bio too long (max %d characters)", maxBioLen))
		}
		user.Bio = *in.Bio
	}
	if in.Study != nil {
		user.Study = *in.Study
	}
	if in.Instagram != nil {
		user.Instagram = *in.Instagram
	}
	if in.Twitter != nil {
		user.Twitter = *in.Twitter
	}
	if in.GitHub != nil {
		user.GitHub = *in.GitHub
	}
	if in.Website != nil {
		if *in.Website != "" {
			if _, err := url.ParseRequestURI(*in.Website); err != nil {
				return nil, models.NewValidationError("Website must be a valid URL")
			}
		}
		user.Website = *in.Website
	}
	if in.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *in.DateOfBirth)
		if err != nil {
			return nil, models.NewValidationError("date_of_birth must be YYYY-MM-DD")
		}
		user.DateOfBirth = dob
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes a user's role. Reserved to admins.
func (s *UserService) SetRole(ctx context.Context, actor authz.Actor, targetID uint, role models.Role) (*models.User, error) {
	if err := authz.Authorize(actor, 0, authz.UserManageRoles); err != nil {
		return nil, err
	}

	switch role {
	case models.RoleUser, models.RoleModerator, models.RoleAdmin:
	default:
		return nil, models.NewValidationError("Invalid role")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
