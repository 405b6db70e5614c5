package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"plume/internal/config"
	"plume/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSignupAndLogin(t *testing.T) {
	t.Parallel()
	db := setupServerTestDB(t)
	s := newTestServer(t, db)
	s.config = &config.Config{JWTSecret: "test_secret"}

	app := newFiberTestApp()
	app.Post("/auth/signup", s.Signup)
	app.Post("/auth/login", s.Login)

	resp := postJSON(t, app, "/auth/signup", map[string]string{
		"username":      "Magpie",
		"email":         "magpie@example.com",
		"password":      "Password123!",
		"date_of_birth": "1999-04-12",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var signupBody struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&signupBody))
	assert.NotEmpty(t, signupBody.Token)
	assert.Equal(t, "Magpie", signupBody.User.Username)
	assert.Equal(t, models.RoleUser, signupBody.User.Role)

	token, err := jwt.Parse(signupBody.Token, func(token *jwt.Token) (any, error) {
		return []byte("test_secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	iss, _ := claims.GetIssuer()
	assert.Equal(t, "plume-api", iss)
	assert.NotEmpty(t, claims["jti"])

	t.Run("login by username ignoring case", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/login", map[string]string{
			"identifier": "magpie",
			"password":   "Password123!",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("login by email", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/login", map[string]string{
			"identifier": "magpie@example.com",
			"password":   "Password123!",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/login", map[string]string{
			"identifier": "magpie",
			"password":   "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown account", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/login", map[string]string{
			"identifier": "nobody",
			"password":   "Password123!",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()
	db := setupServerTestDB(t)
	s := newTestServer(t, db)
	s.config = &config.Config{JWTSecret: "test_secret"}

	app := newFiberTestApp()
	app.Post("/auth/signup", s.Signup)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"username with spaces", map[string]string{
			"username": "bad name", "email": "a@b.com", "password": "Password123!",
		}},
		{"username too long", map[string]string{
			"username": "abcdefghijklmnopqrstu", "email": "a@b.com", "password": "Password123!",
		}},
		{"invalid email", map[string]string{
			"username": "fine", "email": "not-an-email", "password": "Password123!",
		}},
		{"short password", map[string]string{
			"username": "fine", "email": "a@b.com", "password": "short",
		}},
		{"bad birth date", map[string]string{
			"username": "fine", "email": "a@b.com", "password": "Password123!", "date_of_birth": "12/04/1999",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/auth/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	t.Run("case-insensitive duplicate username", func(t *testing.T) {
		resp := postJSON(t, app, "/auth/signup", map[string]string{
			"username": "Heron", "email": "heron@example.com", "password": "Password123!",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = postJSON(t, app, "/auth/signup", map[string]string{
			"username": "HERON", "email": "heron2@example.com", "password": "Password123!",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogoutWithoutRedis(t *testing.T) {
	t.Parallel()
	db := setupServerTestDB(t)
	s := newTestServer(t, db)
	s.config = &config.Config{JWTSecret: "test_secret"}

	app := newFiberTestApp()
	app.Post("/auth/logout", s.Logout)

	// Logout stays a no-op success when no blacklist store is available.
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
