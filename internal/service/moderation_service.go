package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"plume/internal/authz"
	"plume/internal/cache"
	"plume/internal/models"
	"plume/internal/repository"

	"gorm.io/gorm"
)

// ModerationService owns the report pipeline and the admin statistics view.
// It works on the raw DB handle because the report flow needs its checks,
// insert and status write inside one transaction.
type ModerationService struct {
	db       *gorm.DB
	postRepo repository.PostRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(db *gorm.DB) *ModerationService {
	return &ModerationService{db: db, postRepo: repository.NewPostRepository(db)}
}

// ReportPost files a report from reporterID against postID and applies the
// resulting status transition. Self-reports and duplicate reports are
// rejected. The status write is a single conditional update: a post that
// crosses the threshold goes straight to hidden, readers never observe an
// intermediate state from this call.
func (s *ModerationService) ReportPost(ctx context.Context, reporterID, postID uint) (models.PostStatus, error) {
	var finalStatus models.PostStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewInternalError(err)
		}

		if post.UserID == reporterID {
			return models.NewValidationError("You cannot report your own post")
		}

		var existing int64
		if err := tx.Model(&models.Report{}).
			Where("user_id = ? AND post_id = ?", reporterID, postID).
			Count(&existing).Error; err != nil {
			return models.NewInternalError(err)
		}
		if existing > 0 {
			return models.NewValidationError("You have already reported this post")
		}

		report := &models.Report{UserID: reporterID, PostID: postID}
		if err := tx.Create(report).Error; err != nil {
			if isUniqueViolation(err) {
				return models.NewValidationError("You have already reported this post")
			}
			return models.NewInternalError(err)
		}

		var count int64
		if err := tx.Model(&models.Report{}).
			Where("post_id = ?", postID).
			Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}

		next := models.PostStatusAwaitingVerification
		if count >= models.ReportCriticalThreshold {
			next = models.PostStatusHidden
		}

		// Status only ever moves forward.
		if next.Severity() > post.Status.Severity() {
			if err := tx.Model(&models.Post{}).
				Where("id = ?", postID).
				Update("status", next).Error; err != nil {
				return models.NewInternalError(err)
			}
			post.Status = next
		}

		if post.Status == models.PostStatusHidden {
			slog.InfoContext(ctx, "post hidden after reaching report threshold",
				slog.Uint64("post_id", uint64(postID)),
				slog.Int64("report_count", count),
			)
		}

		finalStatus = post.Status
		return nil
	})
	if err != nil {
		return "", err
	}
	cache.InvalidateStats(ctx)
	return finalStatus, nil
}

// ClearReports deletes all reports on a post and resets its status to
// normal. This is the only path that moves a post back down the ladder.
func (s *ModerationService) ClearReports(ctx context.Context, actor authz.Actor, postID uint) error {
	if err := authz.Authorize(actor, 0, authz.PostClearReports); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewInternalError(err)
		}

		if err := tx.Where("post_id = ?", postID).Delete(&models.Report{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			Update("status", models.PostStatusNormal).Error; err != nil {
			return models.NewInternalError(err)
		}

		slog.InfoContext(ctx, "reports cleared on post",
			slog.Uint64("post_id", uint64(postID)),
			slog.Uint64("actor_id", uint64(actor.ID)),
		)
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateStats(ctx)
	return nil
}

// HidePost pulls a post from view directly, without waiting for reports.
func (s *ModerationService) HidePost(ctx context.Context, actor authz.Actor, postID uint) error {
	if err := authz.Authorize(actor, 0, authz.PostHide); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("status", models.PostStatusHidden)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}

	slog.InfoContext(ctx, "post hidden by moderator",
		slog.Uint64("post_id", uint64(postID)),
		slog.Uint64("actor_id", uint64(actor.ID)),
	)
	cache.InvalidateStats(ctx)
	return nil
}

// DailyCount is one point of a cumulative creation-date series.
type DailyCount struct {
	Date       string `json:"date"`
	Count      int64  `json:"count"`
	Cumulative int64  `json:"cumulative"`
}

// ModerationStats is the admin dashboard payload.
type ModerationStats struct {
	PostCount    int64        `json:"post_count"`
	UserCount    int64        `json:"user_count"`
	CommentCount int64        `json:"comment_count"`
	ReportCount  int64        `json:"report_count"`
	LikeCount    int64        `json:"like_count"`
	PostsByDay   []DailyCount `json:"posts_by_day"`
	UsersByDay   []DailyCount `json:"users_by_day"`
}

// Stats aggregates entity totals and cumulative daily creation series for
// the admin dashboard. Results are served cache-aside with a short TTL and
// invalidated whenever a moderation action changes the report ledger.
func (s *ModerationService) Stats(ctx context.Context, actor authz.Actor) (*ModerationStats, error) {
	if err := authz.Authorize(actor, 0, authz.ModViewStats); err != nil {
		return nil, err
	}

	stats := &ModerationStats{}
	if err := cache.Aside(ctx, cache.StatsKey, stats, cache.StatsTTL, func() error {
		return s.collectStats(ctx, stats)
	}); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *ModerationService) collectStats(ctx context.Context, stats *ModerationStats) error {
	db := s.db.WithContext(ctx)

	counts := []struct {
		model any
		dest  *int64
	}{
		{&models.Post{}, &stats.PostCount},
		{&models.User{}, &stats.UserCount},
		{&models.Comment{}, &stats.CommentCount},
		{&models.Report{}, &stats.ReportCount},
		{&models.Like{}, &stats.LikeCount},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return models.NewInternalError(err)
		}
	}

	var err error
	if stats.PostsByDay, err = s.cumulativeByDay(ctx, "posts"); err != nil {
		return err
	}
	if stats.UsersByDay, err = s.cumulativeByDay(ctx, "users"); err != nil {
		return err
	}
	return nil
}

// cumulativeByDay groups rows of a table by creation day and folds the
// running total in Go, which keeps the SQL portable.
func (s *ModerationService) cumulativeByDay(ctx context.Context, table string) ([]DailyCount, error) {
	type row struct {
		Day   string
		Count int64
	}
	var rows []row
	if err := s.db.WithContext(ctx).
		Table(table).
		Select("DATE(created_at) as day, COUNT(*) as count").
		Where("deleted_at IS NULL").
		Group("DATE(created_at)").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Day < rows[j].Day })

	series := make([]DailyCount, 0, len(rows))
	var running int64
	for _, r := range rows {
		running += r.Count
		series = append(series, DailyCount{Date: r.Day, Count: r.Count, Cumulative: running})
	}
	return series, nil
}

// ListFlagged returns posts awaiting review or already hidden, for the
// moderation queue.
func (s *ModerationService) ListFlagged(ctx context.Context, actor authz.Actor, status models.PostStatus, limit, offset int) ([]*models.Post, error) {
	if err := authz.Authorize(actor, 0, authz.PostViewDetails); err != nil {
		return nil, err
	}
	statuses := []models.PostStatus{models.PostStatusAwaitingVerification, models.PostStatusHidden}
	if status != "" {
		if status != models.PostStatusAwaitingVerification && status != models.PostStatusHidden {
			return nil, models.NewValidationError("Invalid moderation status filter")
		}
		statuses = []models.PostStatus{status}
	}
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}

	posts, err := s.postRepo.ListByStatus(ctx, statuses, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
