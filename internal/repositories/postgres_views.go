package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidshare/backend/internal/db"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/toggle"
)

// PostgresViewRepository serves the batched reads the view composer joins on.
// Every batch method issues one query with = ANY($1).
type PostgresViewRepository struct {
	pool db.Pool
}

// NewPostgresViewRepository constructs a view repository backed by PostgreSQL.
func NewPostgresViewRepository(pool db.Pool) *PostgresViewRepository {
	return &PostgresViewRepository{pool: pool}
}

// UsersByIDs loads users keyed by id.
func (r *PostgresViewRepository) UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	users, err := queryMany(ctx, r.pool, scanUser, "select users",
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return indexBy(users, func(u models.User) string { return u.ID }), nil
}

// UserByUsername loads a user by username.
func (r *PostgresViewRepository) UserByUsername(ctx context.Context, username string) (models.User, error) {
	return queryOne(ctx, r.pool, scanUser, "select user by username",
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// VideoByID loads a video by id.
func (r *PostgresViewRepository) VideoByID(ctx context.Context, id string) (models.Video, error) {
	return queryOne(ctx, r.pool, scanVideo, "select video",
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
}

// VideosByIDs loads videos keyed by id.
func (r *PostgresViewRepository) VideosByIDs(ctx context.Context, ids []string) (map[string]models.Video, error) {
	videos, err := queryMany(ctx, r.pool, scanVideo, "select videos",
		`SELECT `+videoColumns+` FROM videos WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return indexBy(videos, func(v models.Video) string { return v.ID }), nil
}

// VideosByOwner loads every video of an owner.
func (r *PostgresViewRepository) VideosByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	return queryMany(ctx, r.pool, scanVideo, "select owner videos", `
        SELECT `+videoColumns+`
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
}

// LatestPublishedVideos loads the newest published video of each owner.
func (r *PostgresViewRepository) LatestPublishedVideos(ctx context.Context, ownerIDs []string) (map[string]models.Video, error) {
	videos, err := queryMany(ctx, r.pool, scanVideo, "select latest videos", `
        SELECT DISTINCT ON (owner_id) `+videoColumns+`
        FROM videos
        WHERE owner_id = ANY($1) AND is_published
        ORDER BY owner_id, created_at DESC, id
    `, ownerIDs)
	if err != nil {
		return nil, err
	}
	return indexBy(videos, func(v models.Video) string { return v.OwnerID }), nil
}

// CommentsByVideo loads the comments of a video.
func (r *PostgresViewRepository) CommentsByVideo(ctx context.Context, videoID string) ([]models.Comment, error) {
	return queryMany(ctx, r.pool, scanComment, "select comments", `
        SELECT `+commentColumns+`
        FROM comments
        WHERE video_id = $1
        ORDER BY created_at DESC
    `, videoID)
}

// TweetsByOwner loads the tweets of a user.
func (r *PostgresViewRepository) TweetsByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	return queryMany(ctx, r.pool, scanTweet, "select tweets", `
        SELECT `+tweetColumns+`
        FROM tweets
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
}

// PlaylistByID loads a playlist with its members.
func (r *PostgresViewRepository) PlaylistByID(ctx context.Context, id string) (models.Playlist, error) {
	return queryOne(ctx, r.pool, scanPlaylist, "select playlist",
		`SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, id)
}

// PlaylistsByOwner loads a user's playlists with their members.
func (r *PostgresViewRepository) PlaylistsByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	return queryMany(ctx, r.pool, scanPlaylist, "select playlists", `
        SELECT `+playlistColumns+`
        FROM playlists p
        WHERE p.owner_id = $1
        ORDER BY p.updated_at DESC
    `, ownerID)
}

const likeColumns = `id, liked_by, COALESCE(video_id, ''), COALESCE(comment_id, ''),
        COALESCE(tweet_id, ''), created_at`

func scanLike(row pgx.Row) (models.Like, error) {
	var l models.Like
	err := row.Scan(&l.ID, &l.LikedBy, &l.VideoID, &l.CommentID, &l.TweetID, &l.CreatedAt)
	return l, err
}

func likeTarget(kind toggle.Kind, l models.Like) string {
	switch kind {
	case toggle.CommentLike:
		return l.CommentID
	case toggle.TweetLike:
		return l.TweetID
	default:
		return l.VideoID
	}
}

// LikesByTargets loads the likes of kind grouped by target id.
func (r *PostgresViewRepository) LikesByTargets(ctx context.Context, kind toggle.Kind, targetIDs []string) (map[string][]models.Like, error) {
	spec, err := specFor(kind)
	if err != nil || spec.table != "likes" {
		return nil, fmt.Errorf("likes by targets: unsupported kind %s", kind)
	}
	likes, err := queryMany(ctx, r.pool, scanLike, "select likes",
		fmt.Sprintf(`SELECT %s FROM likes WHERE %s = ANY($1) ORDER BY created_at`, likeColumns, spec.targetCol),
		targetIDs)
	if err != nil {
		return nil, err
	}
	return groupBy(likes, func(l models.Like) string { return likeTarget(kind, l) }), nil
}

// LikesBySubject loads the likes of kind issued by a user.
func (r *PostgresViewRepository) LikesBySubject(ctx context.Context, kind toggle.Kind, userID string) ([]models.Like, error) {
	spec, err := specFor(kind)
	if err != nil || spec.table != "likes" {
		return nil, fmt.Errorf("likes by subject: unsupported kind %s", kind)
	}
	return queryMany(ctx, r.pool, scanLike, "select user likes",
		fmt.Sprintf(`SELECT %s FROM likes WHERE liked_by = $1 AND %s IS NOT NULL ORDER BY created_at DESC`,
			likeColumns, spec.targetCol),
		userID)
}

const subscriptionColumns = `id, subscriber_id, channel_id, created_at`

func scanSubscription(row pgx.Row) (models.Subscription, error) {
	var s models.Subscription
	err := row.Scan(&s.ID, &s.SubscriberID, &s.ChannelID, &s.CreatedAt)
	return s, err
}

// SubscriptionsByChannels loads subscriptions grouped by channel id.
func (r *PostgresViewRepository) SubscriptionsByChannels(ctx context.Context, channelIDs []string) (map[string][]models.Subscription, error) {
	subs, err := queryMany(ctx, r.pool, scanSubscription, "select channel subscriptions",
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE channel_id = ANY($1) ORDER BY created_at`,
		channelIDs)
	if err != nil {
		return nil, err
	}
	return groupBy(subs, func(s models.Subscription) string { return s.ChannelID }), nil
}

// SubscriptionsBySubscribers loads subscriptions grouped by subscriber id.
func (r *PostgresViewRepository) SubscriptionsBySubscribers(ctx context.Context, subscriberIDs []string) (map[string][]models.Subscription, error) {
	subs, err := queryMany(ctx, r.pool, scanSubscription, "select subscriber subscriptions",
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE subscriber_id = ANY($1) ORDER BY created_at`,
		subscriberIDs)
	if err != nil {
		return nil, err
	}
	return groupBy(subs, func(s models.Subscription) string { return s.SubscriberID }), nil
}

// WatchHistory lists the video ids a user watched in first-watch order.
func (r *PostgresViewRepository) WatchHistory(ctx context.Context, userID string) ([]string, error) {
	return queryMany(ctx, r.pool, func(row pgx.Row) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	}, "select watch history", `
        SELECT video_id FROM watch_history
        WHERE user_id = $1
        ORDER BY watched_at, video_id
    `, userID)
}

func queryMany[T any](ctx context.Context, pool db.Pool, scan func(pgx.Row) (T, error), op, query string, args ...any) ([]T, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, op)
	}
	items, err := collect(rows, scan)
	if err != nil {
		return nil, translateError(err, op)
	}
	return items, nil
}

func indexBy[T any](items []T, key func(T) string) map[string]T {
	out := make(map[string]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out
}

func groupBy[T any](items []T, key func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, item := range items {
		k := key(item)
		out[k] = append(out[k], item)
	}
	return out
}
