package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidshare/backend/internal/db"
	"github.com/vidshare/backend/internal/models"
)

const (
	commentColumns = `id, video_id, owner_id, content, created_at, updated_at`
	tweetColumns   = `id, owner_id, content, created_at, updated_at`
)

func scanComment(row pgx.Row) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanTweet(row pgx.Row) (models.Tweet, error) {
	var t models.Tweet
	err := row.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create persists a new comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	return queryOne(ctx, r.pool, scanComment, "insert comment", `
        INSERT INTO comments (id, video_id, owner_id, content)
        VALUES ($1, $2, $3, $4)
        RETURNING `+commentColumns, comment.ID, comment.VideoID, comment.OwnerID, comment.Content)
}

// FindByID fetches a comment by id.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	return queryOne(ctx, r.pool, scanComment, "select comment",
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
}

// UpdateContent replaces the comment text.
func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, id, content string) (models.Comment, error) {
	return queryOne(ctx, r.pool, scanComment, "update comment", `
        UPDATE comments SET content = $2, updated_at = now()
        WHERE id = $1
        RETURNING `+commentColumns, id, content)
}

// Delete removes a comment.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.pool, "delete comment", `DELETE FROM comments WHERE id = $1`, id)
}

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

// Create persists a new tweet.
func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) (models.Tweet, error) {
	return queryOne(ctx, r.pool, scanTweet, "insert tweet", `
        INSERT INTO tweets (id, owner_id, content)
        VALUES ($1, $2, $3)
        RETURNING `+tweetColumns, tweet.ID, tweet.OwnerID, tweet.Content)
}

// FindByID fetches a tweet by id.
func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	return queryOne(ctx, r.pool, scanTweet, "select tweet",
		`SELECT `+tweetColumns+` FROM tweets WHERE id = $1`, id)
}

// UpdateContent replaces the tweet text.
func (r *PostgresTweetRepository) UpdateContent(ctx context.Context, id, content string) (models.Tweet, error) {
	return queryOne(ctx, r.pool, scanTweet, "update tweet", `
        UPDATE tweets SET content = $2, updated_at = now()
        WHERE id = $1
        RETURNING `+tweetColumns, id, content)
}

// Delete removes a tweet.
func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.pool, "delete tweet", `DELETE FROM tweets WHERE id = $1`, id)
}

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create persists a new, empty playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	if err := execAffecting(ctx, r.pool, "insert playlist", `
        INSERT INTO playlists (id, owner_id, name, description)
        VALUES ($1, $2, $3, $4)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description); err != nil {
		return models.Playlist{}, err
	}
	return r.FindByID(ctx, playlist.ID)
}

// FindByID fetches a playlist with its members in insertion order.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	return queryOne(ctx, r.pool, scanPlaylist, "select playlist",
		`SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, id)
}

// Update changes name and description.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id, name, description string) (models.Playlist, error) {
	if err := execAffecting(ctx, r.pool, "update playlist", `
        UPDATE playlists SET name = $2, description = $3, updated_at = now()
        WHERE id = $1
    `, id, name, description); err != nil {
		return models.Playlist{}, err
	}
	return r.FindByID(ctx, id)
}

// Delete removes a playlist; its membership rows cascade.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.pool, "delete playlist", `DELETE FROM playlists WHERE id = $1`, id)
}

// AddVideo inserts the member unless present.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error) {
	if err := r.touchMembers(ctx, "add playlist video", `
        INSERT INTO playlist_videos (playlist_id, video_id)
        VALUES ($1, $2)
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, playlistID, videoID); err != nil {
		return models.Playlist{}, err
	}
	return r.FindByID(ctx, playlistID)
}

// RemoveVideo deletes the member if present.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error) {
	if err := r.touchMembers(ctx, "remove playlist video", `
        DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID); err != nil {
		return models.Playlist{}, err
	}
	return r.FindByID(ctx, playlistID)
}

func (r *PostgresPlaylistRepository) touchMembers(ctx context.Context, op, query string, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, playlistID, videoID)
	if err != nil {
		return translateError(err, op)
	}
	if tag.RowsAffected() > 0 {
		if _, err := conn.Exec(ctx, `UPDATE playlists SET updated_at = now() WHERE id = $1`, playlistID); err != nil {
			return translateError(err, op)
		}
	}
	return nil
}

// playlistColumns aggregates members ordered by insertion; expects the playlist aliased as p.
const playlistColumns = `p.id, p.owner_id, p.name, p.description,
        COALESCE((SELECT array_agg(pv.video_id ORDER BY pv.added_at, pv.video_id)
                  FROM playlist_videos pv WHERE pv.playlist_id = p.id), ARRAY[]::TEXT[]),
        p.created_at, p.updated_at`

func scanPlaylist(row pgx.Row) (models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.VideoIDs, &p.CreatedAt, &p.UpdatedAt)
	if p.VideoIDs == nil {
		p.VideoIDs = []string{}
	}
	return p, err
}

func queryOne[T any](ctx context.Context, pool db.Pool, scan func(pgx.Row) (T, error), op, query string, args ...any) (T, error) {
	var zero T
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return zero, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	item, err := scan(conn.QueryRow(ctx, query, args...))
	if err != nil {
		return zero, translateError(err, op)
	}
	return item, nil
}

func execAffecting(ctx context.Context, pool db.Pool, op, query string, args ...any) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return translateError(err, op)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
