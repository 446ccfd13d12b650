package repositories

import (
	"context"

	"github.com/vidshare/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	// FindByLogin matches either the email or the username.
	FindByLogin(ctx context.Context, email, username string) (models.User, error)
	UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id string, avatar models.Asset) (models.User, error)
	UpdateCoverImage(ctx context.Context, id string, cover models.Asset) (models.User, error)
	// AddToWatchHistory records videoID once; repeated calls are no-ops.
	AddToWatchHistory(ctx context.Context, userID, videoID string) error
}
