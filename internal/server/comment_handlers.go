// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"plume/internal/authz"
	"plume/internal/models"
	"plume/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewer := s.viewerActor(c)
	comments, svcErr := s.commentService.ListComments(c.Context(), id)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(presentComments(comments, viewer))
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := c.Locals("userID").(uint)

	var req struct {
		Content     string `json:"content"`
		IsAnonymous *bool  `json:"is_anonymous"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:      userID,
		PostID:      id,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
	})
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.Status(fiber.StatusCreated).JSON(presentComment(comment, authz.Actor{ID: userID}))
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	if _, svcErr := s.commentService.DeleteComment(c.Context(), service.DeleteCommentInput{
		Actor:     actor,
		CommentID: commentID,
	}); svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
