package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/cleanup"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/validation"
	"github.com/vidshare/backend/internal/views"
)

// TweetService manages short text posts.
type TweetService struct {
	tweets   repositories.TweetRepository
	cleanup  CleanupQueue
	views    *views.Composer
	validate *validation.Validator
	newID    func() string
}

// NewTweetService wires a TweetService.
func NewTweetService(tweets repositories.TweetRepository, queue CleanupQueue, composer *views.Composer,
	validate *validation.Validator) *TweetService {
	return &TweetService{
		tweets:   tweets,
		cleanup:  queue,
		views:    composer,
		validate: validate,
		newID:    uuid.NewString,
	}
}

// Create posts a tweet by caller.
func (s *TweetService) Create(ctx context.Context, caller auth.Caller, in ContentInput) (models.Tweet, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.validate.Validate(in); err != nil {
		return models.Tweet{}, err
	}
	tweet, err := s.tweets.Create(ctx, models.Tweet{ID: s.newID(), OwnerID: caller.ID, Content: in.Content})
	if err != nil {
		return models.Tweet{}, notFound(err, "user not found")
	}
	return tweet, nil
}

// UserTweets lists the tweets of userID, newest first.
func (s *TweetService) UserTweets(ctx context.Context, caller auth.Caller, userID string) ([]views.TweetView, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	return s.views.UserTweets(ctx, &caller, userID)
}

// Update rewrites a tweet owned by caller.
func (s *TweetService) Update(ctx context.Context, caller auth.Caller, tweetID string, in ContentInput) (models.Tweet, error) {
	if err := requireID("tweetId", tweetID); err != nil {
		return models.Tweet{}, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := s.validate.Validate(in); err != nil {
		return models.Tweet{}, err
	}
	tweet, err := s.tweets.FindByID(ctx, tweetID)
	if err != nil {
		return models.Tweet{}, notFound(err, "tweet not found")
	}
	if err := auth.AssertOwner(tweet.OwnerID, caller); err != nil {
		return models.Tweet{}, err
	}
	updated, err := s.tweets.UpdateContent(ctx, tweetID, in.Content)
	if err != nil {
		return models.Tweet{}, notFound(err, "tweet not found")
	}
	return updated, nil
}

// Delete removes a tweet owned by caller. Its likes are purged in the background.
func (s *TweetService) Delete(ctx context.Context, caller auth.Caller, tweetID string) error {
	if err := requireID("tweetId", tweetID); err != nil {
		return err
	}
	tweet, err := s.tweets.FindByID(ctx, tweetID)
	if err != nil {
		return notFound(err, "tweet not found")
	}
	if err := auth.AssertOwner(tweet.OwnerID, caller); err != nil {
		return err
	}
	if err := s.tweets.Delete(ctx, tweetID); err != nil {
		return notFound(err, "tweet not found")
	}
	enqueueCleanup(ctx, s.cleanup, cleanup.Job{Kind: cleanup.KindTweet, ID: tweetID})
	return nil
}
