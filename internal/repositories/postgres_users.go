package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidshare/backend/internal/db"
	"github.com/vidshare/backend/internal/models"
)

const userColumns = `id, username, email, full_name, avatar_key, avatar_url,
        cover_image_key, cover_image_url, password_hash, COALESCE(refresh_token, ''),
        created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar.Key, &u.Avatar.URL,
		&u.CoverImage.Key, &u.CoverImage.URL, &u.PasswordHash, &u.RefreshToken,
		&u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users,
// their watch history and their refresh token.
type PostgresUserRepository struct {
	pool db.Pool
}

var (
	_ UserRepository    = (*PostgresUserRepository)(nil)
	_ SessionRepository = (*PostgresUserRepository)(nil)
)

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        INSERT INTO users (id, username, email, full_name, avatar_key, avatar_url,
                           cover_image_key, cover_image_url, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+userColumns,
		user.ID, user.Username, user.Email, user.FullName, user.Avatar.Key, user.Avatar.URL,
		user.CoverImage.Key, user.CoverImage.URL, user.PasswordHash)

	created, err := scanUser(row)
	if err != nil {
		return models.User{}, translateError(err, "insert user")
	}
	return created, nil
}

// FindByID fetches a user by id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByLogin fetches the user whose email or username matches.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, email, username string) (models.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE ($1 <> '' AND email = $1) OR ($2 <> '' AND username = $2)
        ORDER BY created_at
        LIMIT 1
    `, email, username)
}

// UpdateAccount changes the display name and email.
func (r *PostgresUserRepository) UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error) {
	return r.findOne(ctx, `
        UPDATE users
        SET full_name = $2, email = $3, updated_at = now()
        WHERE id = $1
        RETURNING `+userColumns, id, fullName, email)
}

// UpdatePassword stores a new password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "update password", `
        UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
    `, id, passwordHash)
}

// UpdateAvatar replaces the avatar reference.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id string, avatar models.Asset) (models.User, error) {
	return r.findOne(ctx, `
        UPDATE users
        SET avatar_key = $2, avatar_url = $3, updated_at = now()
        WHERE id = $1
        RETURNING `+userColumns, id, avatar.Key, avatar.URL)
}

// UpdateCoverImage replaces the cover image reference.
func (r *PostgresUserRepository) UpdateCoverImage(ctx context.Context, id string, cover models.Asset) (models.User, error) {
	return r.findOne(ctx, `
        UPDATE users
        SET cover_image_key = $2, cover_image_url = $3, updated_at = now()
        WHERE id = $1
        RETURNING `+userColumns, id, cover.Key, cover.URL)
}

// AddToWatchHistory inserts the history entry unless it already exists.
func (r *PostgresUserRepository) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, video_id) DO NOTHING
    `, userID, videoID)
	return translateError(err, "insert watch history")
}

// SaveRefreshToken records the user's current refresh token.
func (r *PostgresUserRepository) SaveRefreshToken(ctx context.Context, userID, token string) error {
	return r.exec(ctx, "save refresh token", `
        UPDATE users SET refresh_token = $2 WHERE id = $1
    `, userID, token)
}

// RefreshToken loads the user's refresh token, "" when cleared.
func (r *PostgresUserRepository) RefreshToken(ctx context.Context, userID string) (string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var token string
	err = conn.QueryRow(ctx, `
        SELECT COALESCE(refresh_token, '') FROM users WHERE id = $1
    `, userID).Scan(&token)
	if err != nil {
		return "", translateError(err, "select refresh token")
	}
	return token, nil
}

// RotateRefreshToken replaces current with next in one conditional update.
func (r *PostgresUserRepository) RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users SET refresh_token = $3
        WHERE id = $1 AND refresh_token = $2
    `, userID, current, next)
	if err != nil {
		return false, translateError(err, "rotate refresh token")
	}
	return tag.RowsAffected() == 1, nil
}

// ClearRefreshToken forgets the user's refresh token.
func (r *PostgresUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	return r.exec(ctx, "clear refresh token", `
        UPDATE users SET refresh_token = NULL WHERE id = $1
    `, userID)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, query, args...))
	if err != nil {
		return models.User{}, translateError(err, "select user")
	}
	return user, nil
}

func (r *PostgresUserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
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
