// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"plume/internal/authz"
	"plume/internal/models"
	"plume/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req struct {
		Bio         *string `json:"bio"`
		Study       *string `json:"study"`
		Instagram   *string `json:"instagram"`
		Twitter     *string `json:"twitter"`
		GitHub      *string `json:"github"`
		Website     *string `json:"website"`
		DateOfBirth *string `json:"date_of_birth"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, svcErr := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		Actor:       actor,
		UserID:      actor.ID,
		Bio:         req.Bio,
		Study:       req.Study,
		Instagram:   req.Instagram,
		Twitter:     req.Twitter,
		GitHub:      req.GitHub,
		Website:     req.Website,
		DateOfBirth: req.DateOfBirth,
	})
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(user)
}

// GetProfile handles GET /api/profiles/:username
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid username"))
	}

	viewer := s.viewerActor(c)
	profile, err := s.userService.GetProfile(c.Context(), username, viewer.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(presentProfile(profile, viewer))
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.GetUserByID(c.Context(), id)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	pub := publicUser(*user)
	return c.JSON(pub)
}

// GetAllUsers handles GET /api/users (admin only)
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}
	if authzErr := authz.Authorize(actor, 0, authz.UserManageRoles); authzErr != nil {
		return fail(c, authzErr)
	}

	p := parsePagination(c, service.DefaultPageSize)
	users, svcErr := s.userService.ListUsers(c.Context(), p.Limit, p.Offset)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(users)
}

// SetUserRole handles PUT /api/users/:id/role (admin only)
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, svcErr := s.userService.SetRole(c.Context(), actor, id, req.Role)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(user)
}
