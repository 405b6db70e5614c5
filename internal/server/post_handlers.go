// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"plume/internal/authz"
	"plume/internal/models"
	"plume/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	viewer := s.viewerActor(c)
	p := parsePagination(c, service.DefaultPageSize)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Limit:         p.Limit,
		Offset:        p.Offset,
		CurrentUserID: viewer.ID,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(presentPosts(posts, viewer))
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewer := s.viewerActor(c)
	post, svcErr := s.postService.GetPost(c.Context(), id, viewer)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(presentPost(post, viewer))
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Content     string `json:"content"`
		IsAnonymous *bool  `json:"is_anonymous"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:      userID,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(presentPost(post, authz.Actor{ID: userID}))
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, svcErr := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Actor:   actor,
		PostID:  id,
		Content: req.Content,
	})
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(presentPost(post, actor))
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	if svcErr := s.postService.DeletePost(c.Context(), service.DeletePostInput{
		Actor:  actor,
		PostID: id,
	}); svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := c.Locals("userID").(uint)
	post, svcErr := s.postService.ToggleLike(c.Context(), userID, id)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(fiber.Map{
		"liked":       post.Liked,
		"likes_count": post.LikesCount,
	})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	actor, err := s.actor(c)
	if err != nil {
		return nil
	}

	p := parsePagination(c, service.DefaultPageSize)
	posts, svcErr := s.postService.GetUserPosts(c.Context(), id, p.Limit, p.Offset, actor.ID)
	if svcErr != nil {
		return fail(c, svcErr)
	}

	return c.JSON(presentPosts(posts, actor))
}
