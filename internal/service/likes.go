package service

import (
	"context"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/toggle"
	"github.com/vidshare/backend/internal/views"
)

// LikeState is the caller's like on a target after a toggle.
type LikeState struct {
	IsLiked    bool  `json:"isLiked"`
	LikesCount int64 `json:"likesCount"`
}

// LikeService toggles likes on videos, comments and tweets.
type LikeService struct {
	videos   repositories.VideoRepository
	comments repositories.CommentRepository
	tweets   repositories.TweetRepository
	edges    repositories.EdgeRepository
	toggler  Toggler
	views    *views.Composer
}

// NewLikeService wires a LikeService.
func NewLikeService(videos repositories.VideoRepository, comments repositories.CommentRepository,
	tweets repositories.TweetRepository, edges repositories.EdgeRepository, toggler Toggler,
	composer *views.Composer) *LikeService {
	return &LikeService{
		videos:   videos,
		comments: comments,
		tweets:   tweets,
		edges:    edges,
		toggler:  toggler,
		views:    composer,
	}
}

// ToggleVideoLike likes videoID for caller, or removes an existing like.
func (s *LikeService) ToggleVideoLike(ctx context.Context, caller auth.Caller, videoID string) (LikeState, error) {
	if err := requireID("videoId", videoID); err != nil {
		return LikeState{}, err
	}
	if _, err := visibleVideo(ctx, s.videos, caller, videoID); err != nil {
		return LikeState{}, err
	}
	return s.toggle(ctx, toggle.Key{Kind: toggle.VideoLike, SubjectID: caller.ID, TargetID: videoID})
}

// ToggleCommentLike likes commentID for caller, or removes an existing like.
func (s *LikeService) ToggleCommentLike(ctx context.Context, caller auth.Caller, commentID string) (LikeState, error) {
	if err := requireID("commentId", commentID); err != nil {
		return LikeState{}, err
	}
	if _, err := s.comments.FindByID(ctx, commentID); err != nil {
		return LikeState{}, notFound(err, "comment not found")
	}
	return s.toggle(ctx, toggle.Key{Kind: toggle.CommentLike, SubjectID: caller.ID, TargetID: commentID})
}

// ToggleTweetLike likes tweetID for caller, or removes an existing like.
func (s *LikeService) ToggleTweetLike(ctx context.Context, caller auth.Caller, tweetID string) (LikeState, error) {
	if err := requireID("tweetId", tweetID); err != nil {
		return LikeState{}, err
	}
	if _, err := s.tweets.FindByID(ctx, tweetID); err != nil {
		return LikeState{}, notFound(err, "tweet not found")
	}
	return s.toggle(ctx, toggle.Key{Kind: toggle.TweetLike, SubjectID: caller.ID, TargetID: tweetID})
}

func (s *LikeService) toggle(ctx context.Context, key toggle.Key) (LikeState, error) {
	state, err := s.toggler.Toggle(ctx, key)
	if err != nil {
		return LikeState{}, toggleError(err)
	}
	count, err := s.edges.CountEdges(ctx, key.Kind, key.TargetID)
	if err != nil {
		return LikeState{}, err
	}
	return LikeState{IsLiked: state.Present, LikesCount: count}, nil
}

// LikedVideos lists the videos caller liked, most recent like first.
func (s *LikeService) LikedVideos(ctx context.Context, caller auth.Caller) ([]views.LikedVideo, error) {
	return s.views.LikedVideos(ctx, caller)
}

// toggleError reports exhausted contention retries as an internal failure.
// A toggle never surfaces as a conflict.
func toggleError(err error) error {
	return apperr.As(err)
}
