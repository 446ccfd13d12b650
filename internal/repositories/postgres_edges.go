package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidshare/backend/internal/db"
	"github.com/vidshare/backend/internal/toggle"
)

type edgeSpec struct {
	table      string
	subjectCol string
	targetCol  string
}

var edgeSpecs = map[toggle.Kind]edgeSpec{
	toggle.VideoLike:           {table: "likes", subjectCol: "liked_by", targetCol: "video_id"},
	toggle.CommentLike:         {table: "likes", subjectCol: "liked_by", targetCol: "comment_id"},
	toggle.TweetLike:           {table: "likes", subjectCol: "liked_by", targetCol: "tweet_id"},
	toggle.ChannelSubscription: {table: "subscriptions", subjectCol: "subscriber_id", targetCol: "channel_id"},
}

func specFor(kind toggle.Kind) (edgeSpec, error) {
	spec, ok := edgeSpecs[kind]
	if !ok {
		return edgeSpec{}, fmt.Errorf("unknown edge kind %d", kind)
	}
	return spec, nil
}

// Transient errors under which a toggle attempt changed nothing.
var contendedPgErrorCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// PostgresEdgeRepository stores like and subscription edges.
type PostgresEdgeRepository struct {
	pool  db.Pool
	newID func() string
}

// NewPostgresEdgeRepository constructs an edge repository backed by PostgreSQL.
func NewPostgresEdgeRepository(pool db.Pool) *PostgresEdgeRepository {
	return &PostgresEdgeRepository{pool: pool, newID: uuid.NewString}
}

// ToggleOnce deletes the edge if it exists and otherwise inserts it, in one
// statement. The insert is guarded by the edge's unique index, so when a
// concurrent writer inserts first neither branch changes anything and the
// attempt reports toggle.Contended.
func (r *PostgresEdgeRepository) ToggleOnce(ctx context.Context, key toggle.Key) (toggle.Outcome, error) {
	spec, err := specFor(key.Kind)
	if err != nil {
		return toggle.Contended, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return toggle.Contended, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	query := fmt.Sprintf(`
        WITH removed AS (
            DELETE FROM %[1]s
            WHERE %[2]s = $2 AND %[3]s = $3
            RETURNING id
        ), inserted AS (
            INSERT INTO %[1]s (id, %[2]s, %[3]s)
            SELECT $1::TEXT, $2::TEXT, $3::TEXT
            WHERE NOT EXISTS (SELECT 1 FROM removed)
            ON CONFLICT DO NOTHING
            RETURNING id
        )
        SELECT (SELECT count(*) FROM removed), (SELECT count(*) FROM inserted)
    `, spec.table, spec.subjectCol, spec.targetCol)

	var removed, inserted int64
	err = conn.QueryRow(ctx, query, r.newID(), key.SubjectID, key.TargetID).Scan(&removed, &inserted)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if _, ok := contendedPgErrorCodes[pgErr.Code]; ok {
				return toggle.Contended, nil
			}
		}
		return toggle.Contended, translateError(err, "toggle edge")
	}

	switch {
	case removed > 0:
		return toggle.Removed, nil
	case inserted > 0:
		return toggle.Inserted, nil
	default:
		return toggle.Contended, nil
	}
}

// CountEdges counts the edges of kind pointing at targetID.
func (r *PostgresEdgeRepository) CountEdges(ctx context.Context, kind toggle.Kind, targetID string) (int64, error) {
	spec, err := specFor(kind)
	if err != nil {
		return 0, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, spec.table, spec.targetCol)
	if err := conn.QueryRow(ctx, query, targetID).Scan(&count); err != nil {
		return 0, translateError(err, "count edges")
	}
	return count, nil
}

// PurgeVideo removes the likes, comments, comment likes, playlist memberships
// and watch history entries of a deleted video.
func (r *PostgresEdgeRepository) PurgeVideo(ctx context.Context, videoID string) error {
	return r.purge(ctx, "purge video", videoID,
		`DELETE FROM likes WHERE comment_id IN (SELECT id FROM comments WHERE video_id = $1)`,
		`DELETE FROM likes WHERE video_id = $1`,
		`DELETE FROM comments WHERE video_id = $1`,
		`DELETE FROM playlist_videos WHERE video_id = $1`,
		`DELETE FROM watch_history WHERE video_id = $1`,
	)
}

// PurgeComment removes the likes of a deleted comment.
func (r *PostgresEdgeRepository) PurgeComment(ctx context.Context, commentID string) error {
	return r.purge(ctx, "purge comment", commentID, `DELETE FROM likes WHERE comment_id = $1`)
}

// PurgeTweet removes the likes of a deleted tweet.
func (r *PostgresEdgeRepository) PurgeTweet(ctx context.Context, tweetID string) error {
	return r.purge(ctx, "purge tweet", tweetID, `DELETE FROM likes WHERE tweet_id = $1`)
}

func (r *PostgresEdgeRepository) purge(ctx context.Context, op, id string, statements ...string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
