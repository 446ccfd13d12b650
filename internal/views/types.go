package views

import "time"

// OwnerSummary is the public profile joined onto content.
type OwnerSummary struct {
	ID        string `json:"_id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// FeedVideo is a published video in a feed, history or liked list.
type FeedVideo struct {
	ID           string       `json:"_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	VideoURL     string       `json:"videoFile"`
	ThumbnailURL string       `json:"thumbnail"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	IsPublished  bool         `json:"isPublished"`
	CreatedAt    time.Time    `json:"createdAt"`
	Owner        OwnerSummary `json:"ownerDetails"`
}

// ChannelOwner is a video owner together with its subscription counters.
type ChannelOwner struct {
	ID               string `json:"_id"`
	Username         string `json:"username"`
	AvatarURL        string `json:"avatar"`
	SubscribersCount int    `json:"subscribersCount"`
	IsSubscribed     bool   `json:"isSubscribed"`
}

// VideoDetail is the single-video page.
type VideoDetail struct {
	ID           string       `json:"_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	VideoURL     string       `json:"videoFile"`
	ThumbnailURL string       `json:"thumbnail"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	IsPublished  bool         `json:"isPublished"`
	CreatedAt    time.Time    `json:"createdAt"`
	Owner        ChannelOwner `json:"owner"`
	LikesCount   int          `json:"likesCount"`
	IsLiked      bool         `json:"isLiked"`
}

// ChannelProfile is a user's channel page.
type ChannelProfile struct {
	ID                        string `json:"_id"`
	FullName                  string `json:"fullName"`
	Username                  string `json:"username"`
	Email                     string `json:"email"`
	AvatarURL                 string `json:"avatar"`
	CoverImageURL             string `json:"coverImage"`
	SubscribersCount          int    `json:"subscribersCount"`
	ChannelsSubscribedToCount int    `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// CommentView is a comment with its author and like counters.
type CommentView struct {
	ID         string       `json:"_id"`
	Content    string       `json:"content"`
	VideoID    string       `json:"video"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Owner      OwnerSummary `json:"owner"`
	LikesCount int          `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// TweetView is a tweet with its author and like counters.
type TweetView struct {
	ID         string       `json:"_id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	Owner      OwnerSummary `json:"ownerDetails"`
	LikesCount int          `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// PlaylistSummary is an entry in a user's playlist list.
type PlaylistSummary struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalVideos int       `json:"totalVideos"`
	TotalViews  int64     `json:"totalViews"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistVideo is a published member of a playlist.
type PlaylistVideo struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PlaylistDetail is a playlist with its published members and owner.
type PlaylistDetail struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	TotalVideos int             `json:"totalVideos"`
	TotalViews  int64           `json:"totalViews"`
	Owner       OwnerSummary    `json:"owner"`
	Videos      []PlaylistVideo `json:"videos"`
}

// LikedVideo is one of the caller's video likes.
type LikedVideo struct {
	LikeID  string    `json:"_id"`
	LikedAt time.Time `json:"likedAt"`
	Video   FeedVideo `json:"likedVideo"`
}

// Subscriber is a user subscribed to a channel.
type Subscriber struct {
	ID                     string `json:"_id"`
	Username               string `json:"username"`
	FullName               string `json:"fullName"`
	AvatarURL              string `json:"avatar"`
	SubscribersCount       int    `json:"subscribersCount"`
	SubscribedToSubscriber bool   `json:"subscribedToSubscriber"`
}

// LatestVideo is the newest published video of a channel.
type LatestVideo struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SubscribedChannel is a channel a user follows.
type SubscribedChannel struct {
	ID          string       `json:"_id"`
	Username    string       `json:"username"`
	FullName    string       `json:"fullName"`
	AvatarURL   string       `json:"avatar"`
	LatestVideo *LatestVideo `json:"latestVideo"`
}

// ChannelStats are the dashboard totals of a channel.
type ChannelStats struct {
	TotalSubscribers int   `json:"totalSubscribers"`
	TotalLikes       int   `json:"totalLikes"`
	TotalViews       int64 `json:"totalViews"`
	TotalVideos      int   `json:"totalVideos"`
}

// ChannelVideo is a dashboard entry for one of the channel's own videos.
type ChannelVideo struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	LikesCount   int       `json:"likesCount"`
}
