package views

import (
	"cmp"
	"context"
	"strings"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/pipeline"
)

type channelRow struct {
	user         models.User
	subscribers  []models.Subscription
	subscribedTo []models.Subscription
}

// ChannelProfile composes a user's channel page by username.
func (c *Composer) ChannelProfile(ctx context.Context, caller *auth.Caller, username string) (ChannelProfile, error) {
	ctx, span := logging.StartSpan(ctx, "views.channel_profile")
	defer span.End()

	user, err := c.src.UserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return ChannelProfile{}, notFound(err, "channel does not exist")
	}

	rows, err := pipeline.New(
		pipeline.Join("subscribers",
			func(r channelRow) []string { return one(r.user.ID) },
			c.src.SubscriptionsByChannels,
			func(r *channelRow, rel map[string][]models.Subscription) { r.subscribers = rel[r.user.ID] }),
		pipeline.Join("subscribed to",
			func(r channelRow) []string { return one(r.user.ID) },
			c.src.SubscriptionsBySubscribers,
			func(r *channelRow, rel map[string][]models.Subscription) { r.subscribedTo = rel[r.user.ID] }),
	).Run(ctx, []channelRow{{user: user}})
	if err != nil {
		span.Fail(err)
		return ChannelProfile{}, err
	}

	r := rows[0]
	return ChannelProfile{
		ID:                        r.user.ID,
		FullName:                  r.user.FullName,
		Username:                  r.user.Username,
		Email:                     r.user.Email,
		AvatarURL:                 r.user.Avatar.URL,
		CoverImageURL:             r.user.CoverImage.URL,
		SubscribersCount:          len(r.subscribers),
		ChannelsSubscribedToCount: len(r.subscribedTo),
		IsSubscribed:              subscribedBy(r.subscribers, viewerID(caller)),
	}, nil
}

type subscriptionRow struct {
	edge  models.Subscription
	user  *models.User
	subs  []models.Subscription
	video *models.Video
}

func newestEdgeFirst(a, b subscriptionRow) int {
	if c := b.edge.CreatedAt.Compare(a.edge.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.edge.ID, b.edge.ID)
}

var hasUser = pipeline.Match("user present", func(r subscriptionRow) bool { return r.user != nil })

// ChannelSubscribers lists the subscribers of a channel with their own
// subscriber counts and whether the channel subscribes back.
func (c *Composer) ChannelSubscribers(ctx context.Context, channelID string) ([]Subscriber, error) {
	ctx, span := logging.StartSpan(ctx, "views.channel_subscribers")
	defer span.End()

	if _, err := c.requireUser(ctx, channelID); err != nil {
		return nil, err
	}
	edges, err := c.src.SubscriptionsByChannels(ctx, one(channelID))
	if err != nil {
		return nil, err
	}

	rows := make([]subscriptionRow, 0, len(edges[channelID]))
	for _, e := range edges[channelID] {
		rows = append(rows, subscriptionRow{edge: e})
	}

	rows, err = pipeline.New(
		pipeline.Join("subscriber",
			func(r subscriptionRow) []string { return one(r.edge.SubscriberID) },
			c.users(),
			func(r *subscriptionRow, rel map[string][]models.User) {
				if u, ok := pipeline.First(rel[r.edge.SubscriberID]); ok {
					r.user = &u
				}
			}),
		hasUser,
		pipeline.Join("subscriber's subscribers",
			func(r subscriptionRow) []string { return one(r.edge.SubscriberID) },
			c.src.SubscriptionsByChannels,
			func(r *subscriptionRow, rel map[string][]models.Subscription) { r.subs = rel[r.edge.SubscriberID] }),
		pipeline.Sort("newest first", newestEdgeFirst),
	).Run(ctx, rows)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	return pipeline.Project(rows, func(r subscriptionRow) Subscriber {
		return Subscriber{
			ID:                     r.user.ID,
			Username:               r.user.Username,
			FullName:               r.user.FullName,
			AvatarURL:              r.user.Avatar.URL,
			SubscribersCount:       len(r.subs),
			SubscribedToSubscriber: subscribedBy(r.subs, channelID),
		}
	}), nil
}

// SubscribedChannels lists the channels a user follows, each with its latest
// published video.
func (c *Composer) SubscribedChannels(ctx context.Context, subscriberID string) ([]SubscribedChannel, error) {
	ctx, span := logging.StartSpan(ctx, "views.subscribed_channels")
	defer span.End()

	if _, err := c.requireUser(ctx, subscriberID); err != nil {
		return nil, err
	}
	edges, err := c.src.SubscriptionsBySubscribers(ctx, one(subscriberID))
	if err != nil {
		return nil, err
	}

	rows := make([]subscriptionRow, 0, len(edges[subscriberID]))
	for _, e := range edges[subscriberID] {
		rows = append(rows, subscriptionRow{edge: e})
	}

	rows, err = pipeline.New(
		pipeline.Join("channel",
			func(r subscriptionRow) []string { return one(r.edge.ChannelID) },
			c.users(),
			func(r *subscriptionRow, rel map[string][]models.User) {
				if u, ok := pipeline.First(rel[r.edge.ChannelID]); ok {
					r.user = &u
				}
			}),
		hasUser,
		pipeline.Join("latest video",
			func(r subscriptionRow) []string { return one(r.edge.ChannelID) },
			pipeline.One(c.src.LatestPublishedVideos),
			func(r *subscriptionRow, rel map[string][]models.Video) {
				if v, ok := pipeline.First(rel[r.edge.ChannelID]); ok {
					r.video = &v
				}
			}),
		pipeline.Sort("newest first", newestEdgeFirst),
	).Run(ctx, rows)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	return pipeline.Project(rows, func(r subscriptionRow) SubscribedChannel {
		out := SubscribedChannel{
			ID:        r.user.ID,
			Username:  r.user.Username,
			FullName:  r.user.FullName,
			AvatarURL: r.user.Avatar.URL,
		}
		if v := r.video; v != nil {
			out.LatestVideo = &LatestVideo{
				ID:           v.ID,
				Title:        v.Title,
				Description:  v.Description,
				VideoURL:     v.VideoFile.URL,
				ThumbnailURL: v.Thumbnail.URL,
				Duration:     v.Duration,
				Views:        v.Views,
				CreatedAt:    v.CreatedAt,
			}
		}
		return out
	}), nil
}
