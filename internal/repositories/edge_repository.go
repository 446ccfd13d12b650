package repositories

import (
	"context"

	"github.com/vidshare/backend/internal/toggle"
)

// EdgeRepository stores like and subscription edges.
type EdgeRepository interface {
	toggle.EdgeStore
	// CountEdges counts the edges of kind pointing at targetID.
	CountEdges(ctx context.Context, kind toggle.Kind, targetID string) (int64, error)
}

// PurgeRepository removes records left dangling by a delete.
type PurgeRepository interface {
	PurgeVideo(ctx context.Context, videoID string) error
	PurgeComment(ctx context.Context, commentID string) error
	PurgeTweet(ctx context.Context, tweetID string) error
}
