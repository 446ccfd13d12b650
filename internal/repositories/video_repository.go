package repositories

import (
	"context"

	"github.com/vidshare/backend/internal/models"
)

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	FindByID(ctx context.Context, id string) (models.Video, error)
	// Update writes title, description, thumbnail and publish flag.
	Update(ctx context.Context, video models.Video) (models.Video, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	TogglePublished(ctx context.Context, id string) (models.Video, error)
}
