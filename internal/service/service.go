// Package service implements the use cases behind the HTTP API. Every method
// that acts on behalf of a user takes the verified auth.Caller explicitly.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/cleanup"
	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/toggle"
)

// BlobStore persists uploaded media.
type BlobStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (models.Asset, error)
	Delete(ctx context.Context, key string) error
}

// DurationProber measures the playback length of a video in seconds.
type DurationProber interface {
	Duration(ctx context.Context, body io.ReadSeeker) (float64, error)
}

// CleanupQueue schedules removal of records orphaned by a delete.
type CleanupQueue interface {
	Enqueue(ctx context.Context, job cleanup.Job) error
}

// Toggler flips like and subscription edges.
type Toggler interface {
	Toggle(ctx context.Context, key toggle.Key) (toggle.State, error)
}

// notFound converts the repository sentinel into a NotFound error with message.
func notFound(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(message)
	}
	return err
}

// visibleVideo loads videoID, treating a draft as missing for anyone but its owner.
func visibleVideo(ctx context.Context, videos repositories.VideoRepository, caller auth.Caller, videoID string) (models.Video, error) {
	video, err := videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, notFound(err, "video not found")
	}
	if !video.IsPublished && video.OwnerID != caller.ID {
		return models.Video{}, apperr.NotFound("video not found")
	}
	return video, nil
}

func requireID(field, value string) error {
	if value == "" {
		return apperr.Validation(field+" is required", apperr.FieldError{Field: field, Message: field + " is required"})
	}
	return nil
}

type upload struct {
	field       string
	key         string
	contentType string
	file        media.File
}

// uploadAll stores every upload concurrently. If any upload fails, the ones
// that succeeded are deleted and the first error is returned.
func uploadAll(ctx context.Context, blobs BlobStore, uploads ...upload) ([]models.Asset, error) {
	assets := make([]models.Asset, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range uploads {
		g.Go(func() error {
			asset, err := blobs.Save(gctx, u.key, u.contentType, u.file.Body)
			if err != nil {
				return fmt.Errorf("upload %s: %w", u.field, err)
			}
			assets[i] = asset
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		discard(ctx, blobs, assets...)
		return nil, err
	}
	return assets, nil
}

// discard deletes blobs best-effort. It runs even when ctx is cancelled.
func discard(ctx context.Context, blobs BlobStore, assets ...models.Asset) {
	ctx = context.WithoutCancel(ctx)
	for _, asset := range assets {
		if asset.Key == "" {
			continue
		}
		if err := blobs.Delete(ctx, asset.Key); err != nil {
			logging.FromContext(ctx).Warn("delete blob failed", "key", asset.Key, "error", err)
		}
	}
}

// enqueueCleanup schedules job and logs when the queue refuses it.
func enqueueCleanup(ctx context.Context, queue CleanupQueue, job cleanup.Job) {
	if queue == nil {
		return
	}
	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := queue.Enqueue(enqueueCtx, job); err != nil {
		logging.FromContext(ctx).Warn("enqueue cleanup failed", "kind", job.Kind, "id", job.ID, "error", err)
	}
}

func blobKey(prefix, ownerID, id, ext string) string {
	return fmt.Sprintf("%s/%s/%s%s", prefix, ownerID, id, ext)
}
