package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/response"
	"github.com/vidshare/backend/internal/service"
)

// LikeHandler implements the like endpoints.
type LikeHandler struct {
	Likes LikeService
}

// ToggleVideo handles POST /like/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "videoId", h.Likes.ToggleVideoLike)
}

// ToggleComment handles POST /like/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "commentId", h.Likes.ToggleCommentLike)
}

// ToggleTweet handles POST /like/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "tweetId", h.Likes.ToggleTweetLike)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, param string,
	fn func(ctx context.Context, caller auth.Caller, id string) (service.LikeState, error)) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	state, err := fn(ctx, caller, chi.URLParam(r, param))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	message := "like removed"
	if state.IsLiked {
		message = "like added"
	}
	response.JSON(ctx, w, http.StatusOK, state, message)
}

// LikedVideos handles GET /like/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	liked, err := h.Likes.LikedVideos(ctx, caller)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, liked, "liked videos fetched successfully")
}
