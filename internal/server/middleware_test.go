package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plume/internal/config"
	"plume/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequiredMiddleware(t *testing.T) {
	db := setupServerTestDB(t)
	s := newTestServer(t, db)
	s.config = &config.Config{JWTSecret: "test_secret"}

	app := fiber.New()
	app.Post("/posts", s.AuthRequired(), s.CreatePost)
	app.Post("/posts/:id/comments", s.AuthRequired(), s.CreateComment)

	user := createServerTestUser(t, db, models.RoleUser)
	token, err := s.generateToken(user.ID, user.Username)
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var count int64
		db.Table("posts").Count(&count)
		assert.Zero(t, count, "rejected request must not write anything")
	})

	t.Run("anonymous comment", func(t *testing.T) {
		post := createServerTestPost(t, db, user.ID, models.PostStatusNormal)
		body := strings.NewReader(`{"content": "drive-by"}`)
		req := httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/posts/%d/comments", post.ID), body)
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var count int64
		db.Table("comments").Count(&count)
		assert.Zero(t, count)
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		body := strings.NewReader(`{"content": "first post"}`)
		req := httptest.NewRequest(http.MethodPost, "/posts", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestAuthRequiredRevokedToken(t *testing.T) {
	db := setupServerTestDB(t)
	s := newTestServer(t, db)
	s.config = &config.Config{JWTSecret: "test_secret"}

	mr := miniredis.RunT(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Post("/auth/logout", s.AuthRequired(), s.Logout)
	app.Get("/users/me", s.AuthRequired(), s.GetMyProfile)

	user := createServerTestUser(t, db, models.RoleUser)
	token, err := s.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	bearer := "Bearer " + token

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", bearer)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", bearer)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The blacklisted jti must shut the token out everywhere.
	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", bearer)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequiredRejectsWrongSecret(t *testing.T) {
	db := setupServerTestDB(t)
	s := newTestServer(t, db)
	s.config = &config.Config{JWTSecret: "other_secret"}

	user := createServerTestUser(t, db, models.RoleUser)
	token, err := s.generateToken(user.ID, user.Username)
	require.NoError(t, err)

	s.config = &config.Config{JWTSecret: "test_secret"}
	app := fiber.New()
	app.Get("/users/me", s.AuthRequired(), s.GetMyProfile)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
