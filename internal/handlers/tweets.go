package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidshare/backend/internal/response"
	"github.com/vidshare/backend/internal/service"
)

// TweetHandler implements the tweet endpoints.
type TweetHandler struct {
	Tweets TweetService
}

// Create handles POST /tweet/create.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	var req service.ContentInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}
	tweet, err := h.Tweets.Create(ctx, caller, req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusCreated, tweet, "tweet created successfully")
}

// UserTweets handles GET /tweet/user/{userId}.
func (h TweetHandler) UserTweets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	tweets, err := h.Tweets.UserTweets(ctx, caller, chi.URLParam(r, "userId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, tweets, "tweets fetched successfully")
}

// Update handles PATCH /tweet/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	var req service.ContentInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(ctx, w, err)
		return
	}
	tweet, err := h.Tweets.Update(ctx, caller, chi.URLParam(r, "tweetId"), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete handles DELETE /tweet/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	if err := h.Tweets.Delete(ctx, caller, chi.URLParam(r, "tweetId")); err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, nil, "tweet deleted successfully")
}
