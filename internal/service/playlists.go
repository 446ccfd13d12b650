package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repositories"
	"github.com/vidshare/backend/internal/validation"
	"github.com/vidshare/backend/internal/views"
)

// PlaylistInput is the name and description of a playlist.
type PlaylistInput struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	Description string `json:"description" validate:"notblank,max=1000"`
}

// PlaylistService manages user playlists.
type PlaylistService struct {
	playlists repositories.PlaylistRepository
	videos    repositories.VideoRepository
	views     *views.Composer
	validate  *validation.Validator
	newID     func() string
}

// NewPlaylistService wires a PlaylistService.
func NewPlaylistService(playlists repositories.PlaylistRepository, videos repositories.VideoRepository,
	composer *views.Composer, validate *validation.Validator) *PlaylistService {
	return &PlaylistService{
		playlists: playlists,
		videos:    videos,
		views:     composer,
		validate:  validate,
		newID:     uuid.NewString,
	}
}

// Create makes an empty playlist owned by caller.
func (s *PlaylistService) Create(ctx context.Context, caller auth.Caller, in PlaylistInput) (models.Playlist, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Validate(in); err != nil {
		return models.Playlist{}, err
	}
	playlist, err := s.playlists.Create(ctx, models.Playlist{
		ID:          s.newID(),
		OwnerID:     caller.ID,
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		return models.Playlist{}, notFound(err, "user not found")
	}
	return playlist, nil
}

// UserPlaylists lists the playlists of userID with their totals.
func (s *PlaylistService) UserPlaylists(ctx context.Context, userID string) ([]views.PlaylistSummary, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	return s.views.UserPlaylists(ctx, userID)
}

// Detail composes a playlist with its published videos.
func (s *PlaylistService) Detail(ctx context.Context, playlistID string) (views.PlaylistDetail, error) {
	if err := requireID("playlistId", playlistID); err != nil {
		return views.PlaylistDetail{}, err
	}
	return s.views.PlaylistDetail(ctx, playlistID)
}

// Update renames a playlist owned by caller.
func (s *PlaylistService) Update(ctx context.Context, caller auth.Caller, playlistID string, in PlaylistInput) (models.Playlist, error) {
	if err := requireID("playlistId", playlistID); err != nil {
		return models.Playlist{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Validate(in); err != nil {
		return models.Playlist{}, err
	}
	if _, err := s.owned(ctx, caller, playlistID); err != nil {
		return models.Playlist{}, err
	}
	updated, err := s.playlists.Update(ctx, playlistID, in.Name, in.Description)
	if err != nil {
		return models.Playlist{}, notFound(err, "playlist not found")
	}
	return updated, nil
}

// Delete removes a playlist owned by caller.
func (s *PlaylistService) Delete(ctx context.Context, caller auth.Caller, playlistID string) error {
	if err := requireID("playlistId", playlistID); err != nil {
		return err
	}
	if _, err := s.owned(ctx, caller, playlistID); err != nil {
		return err
	}
	return notFound(s.playlists.Delete(ctx, playlistID), "playlist not found")
}

// AddVideo appends videoID to a playlist owned by caller. Adding a video that
// is already a member leaves the playlist unchanged.
func (s *PlaylistService) AddVideo(ctx context.Context, caller auth.Caller, videoID, playlistID string) (models.Playlist, error) {
	if err := s.checkMember(ctx, caller, videoID, playlistID, true); err != nil {
		return models.Playlist{}, err
	}
	playlist, err := s.playlists.AddVideo(ctx, playlistID, videoID)
	if err != nil {
		return models.Playlist{}, notFound(err, "playlist not found")
	}
	return playlist, nil
}

// RemoveVideo drops videoID from a playlist owned by caller.
func (s *PlaylistService) RemoveVideo(ctx context.Context, caller auth.Caller, videoID, playlistID string) (models.Playlist, error) {
	if err := s.checkMember(ctx, caller, videoID, playlistID, false); err != nil {
		return models.Playlist{}, err
	}
	playlist, err := s.playlists.RemoveVideo(ctx, playlistID, videoID)
	if err != nil {
		return models.Playlist{}, notFound(err, "playlist not found")
	}
	return playlist, nil
}

// checkMember resolves the playlist and the video, then guards the playlist.
// Adding requires the video to be visible to caller; removing only requires it
// to exist, so owners can prune videos that went back to draft.
func (s *PlaylistService) checkMember(ctx context.Context, caller auth.Caller, videoID, playlistID string, visible bool) error {
	if err := requireID("videoId", videoID); err != nil {
		return err
	}
	if err := requireID("playlistId", playlistID); err != nil {
		return err
	}
	playlist, err := s.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return notFound(err, "playlist not found")
	}
	if visible {
		if _, err := visibleVideo(ctx, s.videos, caller, videoID); err != nil {
			return err
		}
	} else if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return notFound(err, "video not found")
	}
	return auth.AssertOwner(playlist.OwnerID, caller)
}

func (s *PlaylistService) owned(ctx context.Context, caller auth.Caller, playlistID string) (models.Playlist, error) {
	playlist, err := s.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, notFound(err, "playlist not found")
	}
	if err := auth.AssertOwner(playlist.OwnerID, caller); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}
