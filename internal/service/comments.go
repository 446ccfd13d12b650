package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/cleanup"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/pipeline"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/validation"
	"github.com/vidshare/backend/internal/views"
)

// ContentInput is the body of a comment or tweet.
type ContentInput struct {
	Content string `json:"content" validate:"notblank,max=1000"`
}

// CommentService manages comments on videos.
type CommentService struct {
	comments repositories.CommentRepository
	videos   repositories.VideoRepository
	cleanup  CleanupQueue
	views    *views.Composer
	validate *validation.Validator
	newID    func() string
}

// NewCommentService wires a CommentService.
func NewCommentService(comments repositories.CommentRepository, videos repositories.VideoRepository,
	queue CleanupQueue, composer *views.Composer, validate *validation.Validator) *CommentService {
	return &CommentService{
		comments: comments,
		videos:   videos,
		cleanup:  queue,
		views:    composer,
		validate: validate,
		newID:    uuid.NewString,
	}
}

// List pages through the comments of a video, newest first.
func (s *CommentService) List(ctx context.Context, caller auth.Caller, videoID string, page pipeline.Page) (pipeline.Paginated[views.CommentView], error) {
	if err := requireID("videoId", videoID); err != nil {
		return pipeline.Paginated[views.CommentView]{}, err
	}
	if _, err := visibleVideo(ctx, s.videos, caller, videoID); err != nil {
		return pipeline.Paginated[views.CommentView]{}, err
	}
	return s.views.VideoComments(ctx, &caller, videoID, page)
}

// Add posts a comment by caller on an existing video.
func (s *CommentService) Add(ctx context.Context, caller auth.Caller, videoID string, in ContentInput) (models.Comment, error) {
	if err := requireID("videoId", videoID); err != nil {
		return models.Comment{}, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := s.validate.Validate(in); err != nil {
		return models.Comment{}, err
	}
	if _, err := visibleVideo(ctx, s.videos, caller, videoID); err != nil {
		return models.Comment{}, err
	}

	comment, err := s.comments.Create(ctx, models.Comment{
		ID:      s.newID(),
		VideoID: videoID,
		OwnerID: caller.ID,
		Content: in.Content,
	})
	if err != nil {
		return models.Comment{}, notFound(err, "video not found")
	}
	return comment, nil
}

// Update rewrites a comment owned by caller.
func (s *CommentService) Update(ctx context.Context, caller auth.Caller, commentID string, in ContentInput) (models.Comment, error) {
	if err := requireID("commentId", commentID); err != nil {
		return models.Comment{}, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := s.validate.Validate(in); err != nil {
		return models.Comment{}, err
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, notFound(err, "comment not found")
	}
	if err := auth.AssertOwner(comment.OwnerID, caller); err != nil {
		return models.Comment{}, err
	}
	updated, err := s.comments.UpdateContent(ctx, commentID, in.Content)
	if err != nil {
		return models.Comment{}, notFound(err, "comment not found")
	}
	return updated, nil
}

// Delete removes a comment owned by caller. Its likes are purged in the background.
func (s *CommentService) Delete(ctx context.Context, caller auth.Caller, commentID string) error {
	if err := requireID("commentId", commentID); err != nil {
		return err
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return notFound(err, "comment not found")
	}
	if err := auth.AssertOwner(comment.OwnerID, caller); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return notFound(err, "comment not found")
	}
	enqueueCleanup(ctx, s.cleanup, cleanup.Job{Kind: cleanup.KindComment, ID: commentID})
	return nil
}
