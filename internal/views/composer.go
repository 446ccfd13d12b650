// Package views composes the read-only, viewer-relative projections served by
// the API. Each view is a pipeline over rows fetched from a Source; joins load
// related records in one batch per stage.
package views

import (
	"context"
	"errors"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/pipeline"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/toggle"
)

// Source is the read side of the entity store. Batch loaders omit keys with no
// match. Single-record lookups return repositories.ErrNotFound.
type Source interface {
	UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)

	VideoByID(ctx context.Context, id string) (models.Video, error)
	VideosByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)
	VideosByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	// LatestPublishedVideos returns the newest published video of each owner.
	LatestPublishedVideos(ctx context.Context, ownerIDs []string) (map[string]models.Video, error)

	CommentsByVideo(ctx context.Context, videoID string) ([]models.Comment, error)
	TweetsByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)

	PlaylistByID(ctx context.Context, id string) (models.Playlist, error)
	PlaylistsByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)

	// LikesByTargets groups the likes of kind by target id.
	LikesByTargets(ctx context.Context, kind toggle.Kind, targetIDs []string) (map[string][]models.Like, error)
	LikesBySubject(ctx context.Context, kind toggle.Kind, userID string) ([]models.Like, error)
	// SubscriptionsByChannels groups subscriptions by channel id.
	SubscriptionsByChannels(ctx context.Context, channelIDs []string) (map[string][]models.Subscription, error)
	// SubscriptionsBySubscribers groups subscriptions by subscriber id.
	SubscriptionsBySubscribers(ctx context.Context, subscriberIDs []string) (map[string][]models.Subscription, error)

	// WatchHistory lists the video ids a user watched, in first-watch order.
	WatchHistory(ctx context.Context, userID string) ([]string, error)
}

// Composer builds views from a Source.
type Composer struct {
	src Source
}

// NewComposer constructs a Composer.
func NewComposer(src Source) *Composer {
	return &Composer{src: src}
}

func (c *Composer) users() pipeline.Loader[string, models.User] {
	return pipeline.One(c.src.UsersByIDs)
}

func (c *Composer) videos() pipeline.Loader[string, models.Video] {
	return pipeline.One(c.src.VideosByIDs)
}

func (c *Composer) likes(kind toggle.Kind) pipeline.Loader[string, models.Like] {
	return func(ctx context.Context, targetIDs []string) (map[string][]models.Like, error) {
		return c.src.LikesByTargets(ctx, kind, targetIDs)
	}
}

// requireUser fails with NotFound unless id names an existing user.
func (c *Composer) requireUser(ctx context.Context, id string) (models.User, error) {
	found, err := c.src.UsersByIDs(ctx, []string{id})
	if err != nil {
		return models.User{}, err
	}
	user, ok := found[id]
	if !ok {
		return models.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

func notFound(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(message)
	}
	return err
}

// viewerID is the caller id, or "" for anonymous reads.
func viewerID(caller *auth.Caller) string {
	if caller == nil {
		return ""
	}
	return caller.ID
}

func likedBy(likes []models.Like, userID string) bool {
	if userID == "" {
		return false
	}
	for _, l := range likes {
		if l.LikedBy == userID {
			return true
		}
	}
	return false
}

func subscribedBy(subs []models.Subscription, userID string) bool {
	if userID == "" {
		return false
	}
	for _, s := range subs {
		if s.SubscriberID == userID {
			return true
		}
	}
	return false
}

func summarize(u *models.User) OwnerSummary {
	if u == nil {
		return OwnerSummary{}
	}
	return OwnerSummary{ID: u.ID, Username: u.Username, FullName: u.FullName, AvatarURL: u.Avatar.URL}
}

func one(id string) []string { return []string{id} }

// visibleTo reports whether the video may be listed for viewerID.
func visibleTo(v models.Video, viewerID string) bool {
	return v.IsPublished || (viewerID != "" && v.OwnerID == viewerID)
}
