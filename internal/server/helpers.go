// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"plume/internal/authz"
	"plume/internal/models"
	"plume/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// fail maps an application error to its HTTP status and writes the response.
func fail(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.HTTPStatus(err), err)
}

// roleByUserID loads a user's role from the database.
func (s *Server) roleByUserID(ctx context.Context, userID uint) (models.Role, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("role").First(&user, userID).Error; err != nil {
		return "", err
	}
	return user.Role, nil
}

// actor resolves the authenticated caller into an authorization actor. The
// role comes from the database, not the token, so demotions apply instantly.
// On failure it writes the response and returns errResponseWritten.
func (s *Server) actor(c *fiber.Ctx) (authz.Actor, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewAuthRequiredError("Authorization required"))
		return authz.Actor{}, errResponseWritten
	}

	role, err := s.roleByUserID(c.Context(), userID)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
		return authz.Actor{}, errResponseWritten
	}

	return authz.Actor{ID: userID, Role: role}, nil
}

// viewerActor is like actor but tolerates anonymous callers, returning a
// zero actor for them.
func (s *Server) viewerActor(c *fiber.Ctx) authz.Actor {
	userID, ok := s.optionalUserID(c)
	if !ok {
		return authz.Actor{}
	}
	role, err := s.roleByUserID(c.Context(), userID)
	if err != nil {
		return authz.Actor{}
	}
	return authz.Actor{ID: userID, Role: role}
}

// presentPost strips author identity from anonymous posts unless the viewer
// is the author or staff. It works on a copy so cached and shared instances
// stay intact.
func presentPost(post *models.Post, viewer authz.Actor) *models.Post {
	out := *post
	if out.IsAnonymous && out.UserID != viewer.ID && !authz.Can(viewer, out.UserID, authz.PostViewDetails) {
		out.UserID = 0
		out.User = models.User{}
	} else {
		out.User = publicUser(out.User)
	}
	return &out
}

func presentPosts(posts []*models.Post, viewer authz.Actor) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, presentPost(p, viewer))
	}
	return out
}

// presentComment is the comment counterpart of presentPost.
func presentComment(comment *models.Comment, viewer authz.Actor) *models.Comment {
	out := *comment
	if out.IsAnonymous && out.UserID != viewer.ID && !authz.Can(viewer, out.UserID, authz.PostViewDetails) {
		out.UserID = 0
		out.User = models.User{}
	} else {
		out.User = publicUser(out.User)
	}
	return &out
}

func presentComments(comments []*models.Comment, viewer authz.Actor) []*models.Comment {
	out := make([]*models.Comment, 0, len(comments))
	for _, cm := range comments {
		out = append(out, presentComment(cm, viewer))
	}
	return out
}

// publicUser trims a user down to its public profile fields. Email and
// other account data never leave through post or profile payloads.
func publicUser(u models.User) models.User {
	return models.User{
		ID:        u.ID,
		Username:  u.Username,
		Bio:       u.Bio,
		Study:     u.Study,
		Instagram: u.Instagram,
		Twitter:   u.Twitter,
		GitHub:    u.GitHub,
		Website:   u.Website,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// presentProfile applies the presentation rules to a profile payload.
func presentProfile(p *service.Profile, viewer authz.Actor) *service.Profile {
	return &service.Profile{
		User:  publicUser(p.User),
		Posts: presentPosts(p.Posts, viewer),
	}
}
