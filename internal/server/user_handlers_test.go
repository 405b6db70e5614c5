package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plume/internal/models"

	"github.com/gofiber/fiber/v2"
)

func TestGetProfilePublic(t *testing.T) {
	t.Parallel()
	db := setupServerTestDB(t)
	s := newTestServer(t, db)

	user := createServerTestUser(t, db, models.RoleUser)
	createServerTestPost(t, db, user.ID, models.PostStatusNormal)
	createServerTestPost(t, db, user.ID, models.PostStatusHidden)

	app := newFiberTestApp()
	app.Get("/profiles/:username", func(c *fiber.Ctx) error {
		return s.GetProfile(c)
	})

	t.Run("lookup ignores case and hides email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/profiles/"+strings.ToUpper(user.Username), nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var profile struct {
			User  models.User   `json:"user"`
			Posts []models.Post `json:"posts"`
		}
		json.NewDecoder(resp.Body).Decode(&profile)
		if profile.User.Username != user.Username {
			t.Errorf("expected username %q, got %q", user.Username, profile.User.Username)
		}
		if profile.User.Email != "" {
			t.Errorf("email must not leak on public profiles")
		}
		if len(profile.Posts) != 1 {
			t.Errorf("strangers should see only visible posts, got %d", len(profile.Posts))
		}
	})

	t.Run("owner sees hidden posts too", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/profiles/"+user.Username, nil)
		req.Header.Set("X-Test-User", fmt.Sprint(user.ID))
		resp, _ := app.Test(req)
		var profile struct {
			Posts []models.Post `json:"posts"`
		}
		json.NewDecoder(resp.Body).Decode(&profile)
		if len(profile.Posts) != 2 {
			t.Errorf("owner should see all their posts, got %d", len(profile.Posts))
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/profiles/ghost", nil)
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestUpdateMyProfileHandler(t *testing.T) {
	t.Parallel()
	db := setupServerTestDB(t)
	s := newTestServer(t, db)

	user := createServerTestUser(t, db, models.RoleUser)

	app := newFiberTestApp()
	app.Put("/users/me", func(c *fiber.Ctx) error {
		return s.UpdateMyProfile(c)
	})

	t.Run("updates bio and website", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"bio":     "writes about birds",
			"website": "https://example.com/birds",
		})
		req := httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", fmt.Sprint(user.ID))
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var stored models.User
		db.First(&stored, user.ID)
		if stored.Bio != "writes about birds" {
			t.Errorf("bio not updated, got %q", stored.Bio)
		}
	})

	t.Run("rejects malformed website", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"website": "not a url"})
		req := httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", fmt.Sprint(user.ID))
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("requires auth", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"bio": "x"})
		req := httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})
}

func TestSetUserRoleHandler(t *testing.T) {
	t.Parallel()
	db := setupServerTestDB(t)
	s := newTestServer(t, db)

	admin := createServerTestUser(t, db, models.RoleAdmin)
	mod := createServerTestUser(t, db, models.RoleModerator)
	target := createServerTestUser(t, db, models.RoleUser)

	app := newFiberTestApp()
	app.Put("/users/:id/role", func(c *fiber.Ctx) error {
		return s.SetUserRole(c)
	})

	setRole := func(actorID uint, role string) int {
		body, _ := json.Marshal(map[string]string{"role": role})
		req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/users/%d/role", target.ID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", fmt.Sprint(actorID))
		resp, _ := app.Test(req)
		return resp.StatusCode
	}

	t.Run("moderator forbidden", func(t *testing.T) {
		if code := setRole(mod.ID, "moderator"); code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", code)
		}
	})

	t.Run("admin promotes", func(t *testing.T) {
		if code := setRole(admin.ID, "moderator"); code != http.StatusOK {
			t.Errorf("expected 200, got %d", code)
		}
		var stored models.User
		db.First(&stored, target.ID)
		if stored.Role != models.RoleModerator {
			t.Errorf("expected moderator role, got %q", stored.Role)
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		if code := setRole(admin.ID, "owner"); code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", code)
		}
	})
}

func TestGetAllUsersAdminOnly(t *testing.T) {
	t.Parallel()
	db := setupServerTestDB(t)
	s := newTestServer(t, db)

	admin := createServerTestUser(t, db, models.RoleAdmin)
	createServerTestUser(t, db, models.RoleUser)

	app := newFiberTestApp()
	app.Get("/users", func(c *fiber.Ctx) error {
		return s.GetAllUsers(c)
	})

	t.Run("regular user forbidden", func(t *testing.T) {
		regular := createServerTestUser(t, db, models.RoleUser)
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("X-Test-User", fmt.Sprint(regular.ID))
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("admin lists users", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("X-Test-User", fmt.Sprint(admin.ID))
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var users []models.User
		json.NewDecoder(resp.Body).Decode(&users)
		if len(users) < 2 {
			t.Errorf("expected at least 2 users, got %d", len(users))
		}
	})
}
