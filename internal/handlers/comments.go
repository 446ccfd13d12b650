package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidshare/backend/internal/pipeline"
	"github.com/vidshare/backend/internal/response"
	"github.com/vidshare/backend/internal/service"
)

// CommentHandler implements the comment endpoints.
type CommentHandler struct {
	Comments CommentService
}

// List handles GET /comment/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	page, err := pipeline.ParsePage(r.URL.Query().Get("page"), r.URL.Query().Get("limit"), pipeline.DefaultLimit)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	comments, err := h.Comments.List(ctx, caller, chi.URLParam(r, "videoId"), page)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, comments, "comments fetched successfully")
}

// Add handles POST /comment/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
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
	comment, err := h.Comments.Add(ctx, caller, chi.URLParam(r, "videoId"), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// Update handles PATCH /comment/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	comment, err := h.Comments.Update(ctx, caller, chi.URLParam(r, "commentId"), req)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, comment, "comment updated successfully")
}

// Delete handles DELETE /comment/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	if err := h.Comments.Delete(ctx, caller, chi.URLParam(r, "commentId")); err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, nil, "comment deleted successfully")
}
