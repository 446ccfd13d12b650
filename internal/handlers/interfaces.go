package handlers

import (
	"context"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/pipeline"
	"github.com/vidshare/backend/internal/service"
	"github.com/vidshare/backend/internal/views"
)

// UserService captures the account operations required by the user handlers.
type UserService interface {
	Register(ctx context.Context, in service.RegisterInput, avatar media.File, cover *media.File) (models.User, error)
	Login(ctx context.Context, in service.LoginInput) (service.Session, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Logout(ctx context.Context, caller auth.Caller) error
	ChangePassword(ctx context.Context, caller auth.Caller, in service.ChangePasswordInput) error
	CurrentUser(ctx context.Context, caller auth.Caller) (models.User, error)
	UpdateAccount(ctx context.Context, caller auth.Caller, in service.UpdateAccountInput) (models.User, error)
	UpdateAvatar(ctx context.Context, caller auth.Caller, file media.File) (models.User, error)
	UpdateCoverImage(ctx context.Context, caller auth.Caller, file media.File) (models.User, error)
	ChannelProfile(ctx context.Context, caller auth.Caller, username string) (views.ChannelProfile, error)
	WatchHistory(ctx context.Context, caller auth.Caller) ([]views.FeedVideo, error)
}

// VideoService captures video publishing and playback.
type VideoService interface {
	Feed(ctx context.Context, q views.FeedQuery, page pipeline.Page) (pipeline.Paginated[views.FeedVideo], error)
	Publish(ctx context.Context, caller auth.Caller, in service.PublishInput, videoFile, thumbnail media.File) (models.Video, error)
	Detail(ctx context.Context, caller auth.Caller, videoID string) (views.VideoDetail, error)
	Update(ctx context.Context, caller auth.Caller, videoID string, in service.UpdateVideoInput, thumbnail *media.File) (models.Video, error)
	Delete(ctx context.Context, caller auth.Caller, videoID string) error
	TogglePublish(ctx context.Context, caller auth.Caller, videoID string) (models.Video, error)
}

// CommentService captures comment management.
type CommentService interface {
	List(ctx context.Context, caller auth.Caller, videoID string, page pipeline.Page) (pipeline.Paginated[views.CommentView], error)
	Add(ctx context.Context, caller auth.Caller, videoID string, in service.ContentInput) (models.Comment, error)
	Update(ctx context.Context, caller auth.Caller, commentID string, in service.ContentInput) (models.Comment, error)
	Delete(ctx context.Context, caller auth.Caller, commentID string) error
}

// LikeService captures like toggles.
type LikeService interface {
	ToggleVideoLike(ctx context.Context, caller auth.Caller, videoID string) (service.LikeState, error)
	ToggleCommentLike(ctx context.Context, caller auth.Caller, commentID string) (service.LikeState, error)
	ToggleTweetLike(ctx context.Context, caller auth.Caller, tweetID string) (service.LikeState, error)
	LikedVideos(ctx context.Context, caller auth.Caller) ([]views.LikedVideo, error)
}

// SubscriptionService captures channel subscriptions.
type SubscriptionService interface {
	Toggle(ctx context.Context, caller auth.Caller, channelID string) (service.SubscriptionState, error)
	Subscribers(ctx context.Context, channelID string) ([]views.Subscriber, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]views.SubscribedChannel, error)
}

// TweetService captures tweet management.
type TweetService interface {
	Create(ctx context.Context, caller auth.Caller, in service.ContentInput) (models.Tweet, error)
	UserTweets(ctx context.Context, caller auth.Caller, userID string) ([]views.TweetView, error)
	Update(ctx context.Context, caller auth.Caller, tweetID string, in service.ContentInput) (models.Tweet, error)
	Delete(ctx context.Context, caller auth.Caller, tweetID string) error
}

// PlaylistService captures playlist management.
type PlaylistService interface {
	Create(ctx context.Context, caller auth.Caller, in service.PlaylistInput) (models.Playlist, error)
	UserPlaylists(ctx context.Context, userID string) ([]views.PlaylistSummary, error)
	Detail(ctx context.Context, playlistID string) (views.PlaylistDetail, error)
	Update(ctx context.Context, caller auth.Caller, playlistID string, in service.PlaylistInput) (models.Playlist, error)
	Delete(ctx context.Context, caller auth.Caller, playlistID string) error
	AddVideo(ctx context.Context, caller auth.Caller, videoID, playlistID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, caller auth.Caller, videoID, playlistID string) (models.Playlist, error)
}

// DashboardService captures the channel dashboard.
type DashboardService interface {
	Stats(ctx context.Context, caller auth.Caller) (views.ChannelStats, error)
	Videos(ctx context.Context, caller auth.Caller) ([]views.ChannelVideo, error)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
