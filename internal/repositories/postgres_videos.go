package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidshare/backend/internal/db"
	"github.com/vidshare/backend/internal/models"
)

const videoColumns = `id, owner_id, video_key, video_url, thumbnail_key, thumbnail_url,
        title, description, duration, views, is_published, created_at, updated_at`

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.VideoFile.Key, &v.VideoFile.URL, &v.Thumbnail.Key,
		&v.Thumbnail.URL, &v.Title, &v.Description, &v.Duration, &v.Views, &v.IsPublished,
		&v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create persists a new video.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) (models.Video, error) {
	return r.one(ctx, "insert video", `
        INSERT INTO videos (id, owner_id, video_key, video_url, thumbnail_key, thumbnail_url,
                            title, description, duration, is_published)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+videoColumns,
		video.ID, video.OwnerID, video.VideoFile.Key, video.VideoFile.URL, video.Thumbnail.Key,
		video.Thumbnail.URL, video.Title, video.Description, video.Duration, video.IsPublished)
}

// FindByID fetches a video by id.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	return r.one(ctx, "select video", `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
}

// Update writes the mutable video fields.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) (models.Video, error) {
	return r.one(ctx, "update video", `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_key = $4, thumbnail_url = $5,
            is_published = $6, updated_at = now()
        WHERE id = $1
        RETURNING `+videoColumns,
		video.ID, video.Title, video.Description, video.Thumbnail.Key, video.Thumbnail.URL,
		video.IsPublished)
}

// Delete removes a video row.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "delete video")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews adds one to the view counter in a single statement.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "increment views")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TogglePublished flips is_published in a single statement.
func (r *PostgresVideoRepository) TogglePublished(ctx context.Context, id string) (models.Video, error) {
	return r.one(ctx, "toggle published", `
        UPDATE videos
        SET is_published = NOT is_published, updated_at = now()
        WHERE id = $1
        RETURNING `+videoColumns, id)
}

func (r *PostgresVideoRepository) one(ctx context.Context, op, query string, args ...any) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, query, args...))
	if err != nil {
		return models.Video{}, translateError(err, op)
	}
	return video, nil
}
