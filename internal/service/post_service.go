// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"plume/internal/authz"
	"plume/internal/models"
	"plume/internal/repository"

	"gorm.io/gorm"
)

// DefaultPageSize is the feed page size.
const DefaultPageSize = 30

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	UserID      uint
	Content     string
	IsAnonymous *bool
}

type ListPostsInput struct {
	Limit         int
	Offset        int
	CurrentUserID uint
}

type UpdatePostInput struct {
	Actor   authz.Actor
	PostID  uint
	Content string
}

type DeletePostInput struct {
	Actor  authz.Actor
	PostID uint
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func validatePostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxPostContentLen {
		return models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", models.MaxPostContentLen))
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostContent(in.Content); err != nil {
		return nil, err
	}

	post := &models.Post{
		Content: in.Content,
		UserID:  in.UserID,
		Status:  models.PostStatusNormal,
	}
	if in.IsAnonymous != nil {
		post.IsAnonymous = *in.IsAnonymous
	} else {
		post.IsAnonymous = true
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// ListPosts returns a page of the public feed. Posts pulled from view by
// moderation never appear here, whoever is asking.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	limit := in.Limit
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}
	posts, err := s.postRepo.ListVisible(ctx, limit, in.Offset, in.CurrentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// GetPost returns a single post. Hidden and flagged posts are only served
// to their owner or to staff.
func (s *PostService) GetPost(ctx context.Context, id uint, actor authz.Actor) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}

	if !post.Status.Visible() && post.UserID != actor.ID && !authz.Can(actor, post.UserID, authz.PostViewDetails) {
		// Do not reveal that the post exists.
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}
	posts, err := s.postRepo.ListByUser(ctx, userID, limit, offset, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.Actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	if err := authz.Authorize(in.Actor, post.UserID, authz.PostEdit); err != nil {
		return nil, err
	}
	if err := validatePostContent(in.Content); err != nil {
		return nil, err
	}

	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.postRepo.GetByID(ctx, post.ID, in.Actor.ID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.Actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", in.PostID)
		}
		return models.NewInternalError(err)
	}

	if err := authz.Authorize(in.Actor, post.UserID, authz.PostDelete); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the caller's like on a post and returns the refreshed
// post. Calling it twice lands back on the original state.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.GetPost(ctx, postID, authz.Actor{ID: userID, Role: models.RoleUser})
	if err != nil {
		return nil, err
	}

	isLiked, err := s.postRepo.IsLiked(ctx, userID, post.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if isLiked {
		if err := s.postRepo.Unlike(ctx, userID, post.ID); err != nil {
			return nil, models.NewInternalError(err)
		}
	} else {
		if err := s.postRepo.Like(ctx, userID, post.ID); err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	return s.postRepo.GetByID(ctx, post.ID, userID)
}
