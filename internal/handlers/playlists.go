package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/response"
	"github.com/vidshare/backend/internal/service"
)

// PlaylistHandler implements the playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistService
}

// Create handles POST /playlist/create.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	var req service.PlaylistInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}
	playlist, err := h.Playlists.Create(ctx, caller, req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// UserPlaylists handles GET /playlist/user/{userId}.
func (h PlaylistHandler) UserPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlists, err := h.Playlists.UserPlaylists(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, playlists, "user playlists fetched successfully")
}

// Detail handles GET /playlist/{playlistId}.
func (h PlaylistHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, err := h.Playlists.Detail(ctx, chi.URLParam(r, "playlistId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// Update handles PATCH /playlist/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	var req service.PlaylistInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}
	playlist, err := h.Playlists.Update(ctx, caller, chi.URLParam(r, "playlistId"), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /playlist/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	if err := h.Playlists.Delete(ctx, caller, chi.URLParam(r, "playlistId")); err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, nil, "playlist deleted successfully")
}

// AddVideo handles PATCH /playlist/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.member(w, r, h.Playlists.AddVideo, "video added to playlist")
}

// RemoveVideo handles PATCH /playlist/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.member(w, r, h.Playlists.RemoveVideo, "video removed from playlist")
}

func (h PlaylistHandler) member(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, caller auth.Caller, videoID, playlistID string) (models.Playlist, error), message string) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	playlist, err := fn(ctx, caller, chi.URLParam(r, "videoId"), chi.URLParam(r, "playlistId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, playlist, message)
}
