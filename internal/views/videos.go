package views

import (
	"cmp"
	"context"
	"strings"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/pipeline"
	"github.com/vidshare/backend/internal/toggle"
)

type videoRow struct {
	video     models.Video
	owner     *models.User
	likes     []models.Like
	ownerSubs []models.Subscription
	edge      models.Like

	likesCount       int
	isLiked          bool
	subscribersCount int
	isSubscribed     bool
}

func videoRows(videos []models.Video) []videoRow {
	rows := make([]videoRow, len(videos))
	for i, v := range videos {
		rows[i] = videoRow{video: v}
	}
	return rows
}

func (c *Composer) joinVideoOwners() pipeline.Stage[videoRow] {
	return pipeline.Join("owner",
		func(r videoRow) []string { return one(r.video.OwnerID) },
		c.users(),
		func(r *videoRow, rel map[string][]models.User) {
			if u, ok := pipeline.First(rel[r.video.OwnerID]); ok {
				r.owner = &u
			}
		})
}

func (c *Composer) joinVideoLikes() pipeline.Stage[videoRow] {
	return pipeline.Join("likes",
		func(r videoRow) []string { return one(r.video.ID) },
		c.likes(toggle.VideoLike),
		func(r *videoRow, rel map[string][]models.Like) { r.likes = rel[r.video.ID] })
}

var hasOwner = pipeline.Match("owner present", func(r videoRow) bool { return r.owner != nil })

func newestVideoFirst(a, b videoRow) int {
	if c := b.video.CreatedAt.Compare(a.video.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.video.ID, b.video.ID)
}

func feedVideo(r videoRow) FeedVideo {
	v := r.video
	return FeedVideo{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     v.VideoFile.URL,
		ThumbnailURL: v.Thumbnail.URL,
		Duration:     v.Duration,
		Views:        v.Views,
		IsPublished:  v.IsPublished,
		CreatedAt:    v.CreatedAt,
		Owner:        summarize(r.owner),
	}
}

// FeedQuery selects and orders a channel's video feed.
type FeedQuery struct {
	OwnerID  string
	Query    string
	SortBy   string
	SortType string
}

func feedOrder(sortBy, sortType string) (func(a, b videoRow) int, error) {
	desc := true
	switch strings.ToLower(strings.TrimSpace(sortType)) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return nil, apperr.Validation("sortType must be asc or desc",
			apperr.FieldError{Field: "sortType", Message: "sortType must be asc or desc"})
	}

	var key func(a, b models.Video) int
	switch strings.TrimSpace(sortBy) {
	case "", "createdAt":
		key = func(a, b models.Video) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "views":
		key = func(a, b models.Video) int { return cmp.Compare(a.Views, b.Views) }
	case "duration":
		key = func(a, b models.Video) int { return cmp.Compare(a.Duration, b.Duration) }
	default:
		return nil, apperr.Validation("sortBy must be one of views, createdAt, duration",
			apperr.FieldError{Field: "sortBy", Message: "sortBy must be one of views, createdAt, duration"})
	}

	return func(a, b videoRow) int {
		c := key(a.video, b.video)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.video.ID, b.video.ID)
	}, nil
}

// VideoFeed lists a channel's published videos, optionally filtered by a
// case-insensitive title substring, sorted and paginated.
func (c *Composer) VideoFeed(ctx context.Context, q FeedQuery, page pipeline.Page) (pipeline.Paginated[FeedVideo], error) {
	ctx, span := logging.StartSpan(ctx, "views.video_feed")
	defer span.End()

	if strings.TrimSpace(q.OwnerID) == "" {
		return pipeline.Paginated[FeedVideo]{}, apperr.Validation("userId is required",
			apperr.FieldError{Field: "userId", Message: "userId is required"})
	}
	order, err := feedOrder(q.SortBy, q.SortType)
	if err != nil {
		return pipeline.Paginated[FeedVideo]{}, err
	}
	if _, err := c.requireUser(ctx, q.OwnerID); err != nil {
		return pipeline.Paginated[FeedVideo]{}, err
	}

	videos, err := c.src.VideosByOwner(ctx, q.OwnerID)
	if err != nil {
		span.Fail(err)
		return pipeline.Paginated[FeedVideo]{}, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Query))
	rows, err := pipeline.New(
		pipeline.Match("published", func(r videoRow) bool { return r.video.IsPublished }),
		pipeline.Match("title", func(r videoRow) bool {
			return needle == "" || strings.Contains(strings.ToLower(r.video.Title), needle)
		}),
		c.joinVideoOwners(),
		hasOwner,
		pipeline.Sort("order", order),
	).Run(ctx, videoRows(videos))
	if err != nil {
		span.Fail(err)
		return pipeline.Paginated[FeedVideo]{}, err
	}

	return pipeline.Paginate(pipeline.Project(rows, feedVideo), page), nil
}

// VideoDetail composes a single video with its like counters and the owner's
// subscription counters, relative to caller.
func (c *Composer) VideoDetail(ctx context.Context, caller *auth.Caller, videoID string) (VideoDetail, error) {
	ctx, span := logging.StartSpan(ctx, "views.video_detail")
	defer span.End()

	video, err := c.src.VideoByID(ctx, videoID)
	if err != nil {
		return VideoDetail{}, notFound(err, "video not found")
	}

	viewer := viewerID(caller)
	rows, err := pipeline.New(
		c.joinVideoLikes(),
		c.joinVideoOwners(),
		pipeline.Join("owner subscribers",
			func(r videoRow) []string { return one(r.video.OwnerID) },
			c.src.SubscriptionsByChannels,
			func(r *videoRow, rel map[string][]models.Subscription) { r.ownerSubs = rel[r.video.OwnerID] }),
		pipeline.Derive("counters", func(r *videoRow) {
			r.likesCount = len(r.likes)
			r.isLiked = likedBy(r.likes, viewer)
			r.subscribersCount = len(r.ownerSubs)
			r.isSubscribed = subscribedBy(r.ownerSubs, viewer)
		}),
	).Run(ctx, videoRows([]models.Video{video}))
	if err != nil {
		span.Fail(err)
		return VideoDetail{}, err
	}

	r := rows[0]
	owner := ChannelOwner{
		ID:               r.video.OwnerID,
		SubscribersCount: r.subscribersCount,
		IsSubscribed:     r.isSubscribed,
	}
	if r.owner != nil {
		owner.Username = r.owner.Username
		owner.AvatarURL = r.owner.Avatar.URL
	}
	return VideoDetail{
		ID:           r.video.ID,
		Title:        r.video.Title,
		Description:  r.video.Description,
		VideoURL:     r.video.VideoFile.URL,
		ThumbnailURL: r.video.Thumbnail.URL,
		Duration:     r.video.Duration,
		Views:        r.video.Views,
		IsPublished:  r.video.IsPublished,
		CreatedAt:    r.video.CreatedAt,
		Owner:        owner,
		LikesCount:   r.likesCount,
		IsLiked:      r.isLiked,
	}, nil
}

// LikedVideos lists the videos caller liked, most recent like first.
func (c *Composer) LikedVideos(ctx context.Context, caller auth.Caller) ([]LikedVideo, error) {
	ctx, span := logging.StartSpan(ctx, "views.liked_videos")
	defer span.End()

	likes, err := c.src.LikesBySubject(ctx, toggle.VideoLike, caller.ID)
	if err != nil {
		return nil, err
	}

	rows := make([]videoRow, len(likes))
	for i, l := range likes {
		rows[i] = videoRow{edge: l}
	}

	rows, err = pipeline.New(
		pipeline.Join("video",
			func(r videoRow) []string { return one(r.edge.VideoID) },
			c.videos(),
			func(r *videoRow, rel map[string][]models.Video) {
				if v, ok := pipeline.First(rel[r.edge.VideoID]); ok {
					r.video = v
				}
			}),
		pipeline.Match("video visible", func(r videoRow) bool {
			return r.video.ID != "" && visibleTo(r.video, caller.ID)
		}),
		c.joinVideoOwners(),
		hasOwner,
		pipeline.Sort("liked at desc", func(a, b videoRow) int {
			if c := b.edge.CreatedAt.Compare(a.edge.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.edge.ID, b.edge.ID)
		}),
	).Run(ctx, rows)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	return pipeline.Project(rows, func(r videoRow) LikedVideo {
		return LikedVideo{LikeID: r.edge.ID, LikedAt: r.edge.CreatedAt, Video: feedVideo(r)}
	}), nil
}

// WatchHistory lists the videos a user watched, in first-watch order.
func (c *Composer) WatchHistory(ctx context.Context, caller auth.Caller) ([]FeedVideo, error) {
	ctx, span := logging.StartSpan(ctx, "views.watch_history")
	defer span.End()

	ids, err := c.src.WatchHistory(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	rows := make([]videoRow, len(ids))
	for i, id := range ids {
		rows[i] = videoRow{video: models.Video{ID: id}}
	}

	rows, err = pipeline.New(
		pipeline.Join("video",
			func(r videoRow) []string { return one(r.video.ID) },
			c.videos(),
			func(r *videoRow, rel map[string][]models.Video) {
				if v, ok := pipeline.First(rel[r.video.ID]); ok {
					r.video = v
				} else {
					r.video = models.Video{}
				}
			}),
		pipeline.Match("video visible", func(r videoRow) bool {
			return r.video.ID != "" && visibleTo(r.video, caller.ID)
		}),
		c.joinVideoOwners(),
		hasOwner,
	).Run(ctx, rows)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	return pipeline.Project(rows, feedVideo), nil
}

// ChannelVideos lists every video of the channel, published or not, newest first.
func (c *Composer) ChannelVideos(ctx context.Context, channelID string) ([]ChannelVideo, error) {
	ctx, span := logging.StartSpan(ctx, "views.channel_videos")
	defer span.End()

	videos, err := c.src.VideosByOwner(ctx, channelID)
	if err != nil {
		return nil, err
	}

	rows, err := pipeline.New(
		c.joinVideoLikes(),
		pipeline.Derive("likes count", func(r *videoRow) { r.likesCount = len(r.likes) }),
		pipeline.Sort("newest first", newestVideoFirst),
	).Run(ctx, videoRows(videos))
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	return pipeline.Project(rows, func(r videoRow) ChannelVideo {
		return ChannelVideo{
			ID:           r.video.ID,
			Title:        r.video.Title,
			Description:  r.video.Description,
			VideoURL:     r.video.VideoFile.URL,
			ThumbnailURL: r.video.Thumbnail.URL,
			Views:        r.video.Views,
			IsPublished:  r.video.IsPublished,
			CreatedAt:    r.video.CreatedAt,
			LikesCount:   r.likesCount,
		}
	}), nil
}

// ChannelStats totals subscribers, likes, views and videos of a channel.
func (c *Composer) ChannelStats(ctx context.Context, channelID string) (ChannelStats, error) {
	ctx, span := logging.StartSpan(ctx, "views.channel_stats")
	defer span.End()

	videos, err := c.src.VideosByOwner(ctx, channelID)
	if err != nil {
		return ChannelStats{}, err
	}

	rows, err := pipeline.New(
		c.joinVideoLikes(),
		pipeline.Derive("likes count", func(r *videoRow) { r.likesCount = len(r.likes) }),
	).Run(ctx, videoRows(videos))
	if err != nil {
		span.Fail(err)
		return ChannelStats{}, err
	}

	subs, err := c.src.SubscriptionsByChannels(ctx, one(channelID))
	if err != nil {
		return ChannelStats{}, err
	}

	stats := ChannelStats{
		TotalSubscribers: len(subs[channelID]),
		TotalVideos:      len(rows),
	}
	for _, r := range rows {
		stats.TotalLikes += r.likesCount
		stats.TotalViews += r.video.Views
	}
	return stats, nil
}
