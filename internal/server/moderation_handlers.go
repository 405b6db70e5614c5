package server

import (
	"plume/internal/models"
	"plume/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReportPost handles POST /api/posts/:id/report
func (s *Server) ReportPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := c.Locals("userID").(uint)

	status, svcErr := s.moderationService.ReportPost(c.Context(), userID, id)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(fiber.Map{
		"message": "Report submitted",
		"status":  status,
	})
}

// GetFlaggedPosts handles GET /api/admin/posts (admin only)
func (s *Server) GetFlaggedPosts(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	p := parsePagination(c, service.DefaultPageSize)

	status := models.PostStatus(c.Query("status"))

	posts, svcErr := s.moderationService.ListFlagged(c.Context(), actor, status, p.Limit, p.Offset)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(posts)
}

// HidePost handles POST /api/admin/posts/:id/hide (moderator or admin)
func (s *Server) HidePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	if svcErr := s.moderationService.HidePost(c.Context(), actor, id); svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(fiber.Map{"message": "Post hidden"})
}

// ClearReports handles DELETE /api/admin/posts/:id/reports (admin only)
func (s *Server) ClearReports(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	if svcErr := s.moderationService.ClearReports(c.Context(), actor, id); svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(fiber.Map{"message": "Reports cleared"})
}

// GetModerationStats handles GET /api/admin/stats (admin only)
func (s *Server) GetModerationStats(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	stats, svcErr := s.moderationService.Stats(c.Context(), actor)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(stats)
}
