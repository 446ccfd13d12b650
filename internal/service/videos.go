package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/cleanup"
	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/pipeline"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/validation"
	"github.com/vidshare/backend/internal/views"
)

// VideoService publishes, edits and serves videos.
type VideoService struct {
	videos   repositories.VideoRepository
	users    repositories.UserRepository
	blobs    BlobStore
	prober   DurationProber
	cleanup  CleanupQueue
	views    *views.Composer
	validate *validation.Validator
	newID    func() string
}

// NewVideoService wires a VideoService.
func NewVideoService(videos repositories.VideoRepository, users repositories.UserRepository, blobs BlobStore,
	prober DurationProber, queue CleanupQueue, composer *views.Composer, validate *validation.Validator) *VideoService {
	return &VideoService{
		videos:   videos,
		users:    users,
		blobs:    blobs,
		prober:   prober,
		cleanup:  queue,
		views:    composer,
		validate: validate,
		newID:    uuid.NewString,
	}
}

// Feed lists a channel's published videos.
func (s *VideoService) Feed(ctx context.Context, q views.FeedQuery, page pipeline.Page) (pipeline.Paginated[views.FeedVideo], error) {
	return s.views.VideoFeed(ctx, q, page)
}

// PublishInput is the metadata submitted with a new video.
type PublishInput struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank,max=5000"`
}

// Publish probes and uploads the video file and thumbnail, then creates the
// video. No video is created unless both uploads succeed.
func (s *VideoService) Publish(ctx context.Context, caller auth.Caller, in PublishInput, videoFile, thumbnail media.File) (models.Video, error) {
	ctx, span := logging.StartSpan(ctx, "service.publish_video")
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Validate(in); err != nil {
		return models.Video{}, err
	}
	videoType, err := media.Require("videoFile", videoFile, media.Video)
	if err != nil {
		return models.Video{}, err
	}
	thumbType, err := media.Require("thumbnail", thumbnail, media.Image)
	if err != nil {
		return models.Video{}, err
	}

	duration, err := s.prober.Duration(ctx, videoFile.Body)
	if err != nil {
		span.Fail(err)
		return models.Video{}, apperr.Validation("videoFile could not be read",
			apperr.FieldError{Field: "videoFile", Message: "videoFile is not a playable video"})
	}

	id := s.newID()
	assets, err := uploadAll(ctx, s.blobs,
		upload{field: "videoFile", key: blobKey("videos", caller.ID, id, videoType.Extension),
			contentType: videoType.ContentType, file: videoFile},
		upload{field: "thumbnail", key: blobKey("thumbnails", caller.ID, id, thumbType.Extension),
			contentType: thumbType.ContentType, file: thumbnail},
	)
	if err != nil {
		span.Fail(err)
		return models.Video{}, err
	}

	video, err := s.videos.Create(ctx, models.Video{
		ID:          id,
		OwnerID:     caller.ID,
		VideoFile:   assets[0],
		Thumbnail:   assets[1],
		Title:       in.Title,
		Description: in.Description,
		Duration:    duration,
		IsPublished: true,
	})
	if err != nil {
		discard(ctx, s.blobs, assets...)
		span.Fail(err)
		return models.Video{}, notFound(err, "owner not found")
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID, "ownerId", video.OwnerID, "duration", duration)
	return video, nil
}

// Detail serves a video page. It counts the view and records it in the
// caller's watch history before composing the page.
func (s *VideoService) Detail(ctx context.Context, caller auth.Caller, videoID string) (views.VideoDetail, error) {
	if err := requireID("videoId", videoID); err != nil {
		return views.VideoDetail{}, err
	}
	if _, err := visibleVideo(ctx, s.videos, caller, videoID); err != nil {
		return views.VideoDetail{}, err
	}

	if err := s.videos.IncrementViews(ctx, videoID); err != nil {
		return views.VideoDetail{}, notFound(err, "video not found")
	}
	if caller.ID != "" {
		if err := s.users.AddToWatchHistory(ctx, caller.ID, videoID); err != nil {
			return views.VideoDetail{}, notFound(err, "user not found")
		}
	}
	return s.views.VideoDetail(ctx, &caller, videoID)
}

// UpdateVideoInput carries the editable fields of a video. Nil fields are
// left unchanged.
type UpdateVideoInput struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description" validate:"omitnil,notblank,max=5000"`
	IsPublished *bool   `json:"isPublished"`
}

// Update edits a video owned by caller, replacing the thumbnail when one is given.
func (s *VideoService) Update(ctx context.Context, caller auth.Caller, videoID string, in UpdateVideoInput, thumbnail *media.File) (models.Video, error) {
	if err := requireID("videoId", videoID); err != nil {
		return models.Video{}, err
	}
	if in.Title != nil {
		*in.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		*in.Description = strings.TrimSpace(*in.Description)
	}
	if err := s.validate.Validate(in); err != nil {
		return models.Video{}, err
	}
	var thumbType media.Sniffed
	replaceThumb := thumbnail != nil && thumbnail.Size > 0
	if replaceThumb {
		var err error
		if thumbType, err = media.Require("thumbnail", *thumbnail, media.Image); err != nil {
			return models.Video{}, err
		}
	}

	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, notFound(err, "video not found")
	}
	if err := auth.AssertOwner(video.OwnerID, caller); err != nil {
		return models.Video{}, err
	}

	previous := video.Thumbnail
	if in.Title != nil {
		video.Title = *in.Title
	}
	if in.Description != nil {
		video.Description = *in.Description
	}
	if in.IsPublished != nil {
		video.IsPublished = *in.IsPublished
	}

	var uploaded []models.Asset
	if replaceThumb {
		uploaded, err = uploadAll(ctx, s.blobs, upload{field: "thumbnail",
			key:         blobKey("thumbnails", video.OwnerID, s.newID(), thumbType.Extension),
			contentType: thumbType.ContentType, file: *thumbnail})
		if err != nil {
			return models.Video{}, err
		}
		video.Thumbnail = uploaded[0]
	}

	updated, err := s.videos.Update(ctx, video)
	if err != nil {
		discard(ctx, s.blobs, uploaded...)
		return models.Video{}, notFound(err, "video not found")
	}
	if replaceThumb {
		discard(ctx, s.blobs, previous)
	}
	return updated, nil
}

// Delete removes a video owned by caller together with its media. Likes,
// comments, playlist entries and history entries are purged in the background.
func (s *VideoService) Delete(ctx context.Context, caller auth.Caller, videoID string) error {
	if err := requireID("videoId", videoID); err != nil {
		return err
	}
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return notFound(err, "video not found")
	}
	if err := auth.AssertOwner(video.OwnerID, caller); err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, videoID); err != nil {
		return notFound(err, "video not found")
	}

	discard(ctx, s.blobs, video.VideoFile, video.Thumbnail)
	enqueueCleanup(ctx, s.cleanup, cleanup.Job{Kind: cleanup.KindVideo, ID: videoID})
	logging.FromContext(ctx).Info("video deleted", "videoId", videoID)
	return nil
}

// TogglePublish flips the published flag of a video owned by caller.
func (s *VideoService) TogglePublish(ctx context.Context, caller auth.Caller, videoID string) (models.Video, error) {
	if err := requireID("videoId", videoID); err != nil {
		return models.Video{}, err
	}
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, notFound(err, "video not found")
	}
	if err := auth.AssertOwner(video.OwnerID, caller); err != nil {
		return models.Video{}, err
	}
	updated, err := s.videos.TogglePublished(ctx, videoID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Video{}, apperr.NotFound("video not found")
	}
	return updated, err
}
