package service

import (
	"context"
	"testing"

	"plume/internal/authz"
	"plume/internal/models"
	"plume/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(repository.NewUserRepository(db), repository.NewPostRepository(db))
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username:    "Alice.92",
		Email:       "alice@example.com",
		Password:    "correct-horse",
		DateOfBirth: "1992-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice.92", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "correct-horse", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("correct-horse")))
}

func TestRegister_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"empty username", RegisterInput{Username: "", Email: "a@b.com", Password: "longenough"}},
		{"username with spaces", RegisterInput{Username: "has space", Email: "a@b.com", Password: "longenough"}},
		{"username too long", RegisterInput{Username: "abcdefghijklmnopqrstu", Email: "a@b.com", Password: "longenough"}},
		{"bad email", RegisterInput{Username: "fine", Email: "nope", Password: "longenough"}},
		{"short password", RegisterInput{Username: "fine", Email: "a@b.com", Password: "short"}},
		{"bad birth date", RegisterInput{Username: "fine", Email: "a@b.com", Password: "longenough", DateOfBirth: "April 1st"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
}

func TestRegister_CaseInsensitiveUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "Alice", Email: "alice@example.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "ALICE", Email: "other@example.com", Password: "longenough"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "longenough"})
	require.NoError(t, err)

	// By username, any casing.
	user, err := svc.Authenticate(ctx, "BOB", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	// By email.
	_, err = svc.Authenticate(ctx, "bob@example.com", "longenough")
	require.NoError(t, err)

	// Wrong password and unknown user produce the same error shape.
	_, err = svc.Authenticate(ctx, "bob", "wrong")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	_, err = svc.Authenticate(ctx, "ghost", "longenough")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestGetProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	author := createTestUser(t, db, models.RoleUser)
	createTestPost(t, db, author.ID, models.PostStatusNormal)
	createTestPost(t, db, author.ID, models.PostStatusHidden)

	viewer := createTestUser(t, db, models.RoleUser)
	profile, err := svc.GetProfile(ctx, author.Username, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, profile.User.ID)
	// Strangers see only the visible post.
	assert.Len(t, profile.Posts, 1)

	// The owner sees both.
	profile, err = svc.GetProfile(ctx, author.Username, author.ID)
	require.NoError(t, err)
	assert.Len(t, profile.Posts, 2)

	_, err = svc.GetProfile(ctx, "nobody", viewer.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	user := createTestUser(t, db, models.RoleUser)
	other := createTestUser(t, db, models.RoleUser)

	bio := "hello there"
	site := "https://example.com"
	updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{
		Actor:   authz.Actor{ID: user.ID, Role: user.Role},
		UserID:  user.ID,
		Bio:     &bio,
		Website: &site,
	})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, site, updated.Website)

	badSite := "not a url"
	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{
		Actor:   authz.Actor{ID: user.ID, Role: user.Role},
		UserID:  user.ID,
		Website: &badSite,
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	// Someone else cannot edit the profile.
	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{
		Actor:  authz.Actor{ID: other.ID, Role: other.Role},
		UserID: user.ID,
		Bio:    &bio,
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)
}

func TestSetRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, models.RoleAdmin)
	target := createTestUser(t, db, models.RoleUser)

	updated, err := svc.SetRole(ctx, authz.Actor{ID: admin.ID, Role: admin.Role}, target.ID, models.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)

	_, err = svc.SetRole(ctx, authz.Actor{ID: admin.ID, Role: admin.Role}, target.ID, "owner")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	mod := createTestUser(t, db, models.RoleModerator)
	_, err = svc.SetRole(ctx, authz.Actor{ID: mod.ID, Role: mod.Role}, target.ID, models.RoleUser)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeForbidden, appErr.Code)
}
