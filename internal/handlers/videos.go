package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/pipeline"
	"github.com/vidshare/backend/internal/response"
	"github.com/vidshare/backend/internal/service"
	"github.com/vidshare/backend/internal/views"
)

// VideoHandler provides endpoints for publishing and watching videos.
type VideoHandler struct {
	Videos         VideoService
	MaxUploadBytes int64
}

// Feed handles GET /video.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	page, err := pipeline.ParsePage(q.Get("page"), q.Get("limit"), pipeline.DefaultLimit)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	feed, err := h.Videos.Feed(ctx, views.FeedQuery{
		OwnerID:  q.Get("userId"),
		Query:    q.Get("query"),
		SortBy:   q.Get("sortBy"),
		SortType: q.Get("sortType"),
	}, page)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, feed, "videos fetched successfully")
}

// Publish handles POST /video/create.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		response.Error(ctx, w, err)
		return
	}
	defer cleanupMultipart(r)

	videoFile, closeVideo := formFile(r, "videoFile")
	defer closeVideo()
	thumbnail, closeThumb := formFile(r, "thumbnail")
	defer closeThumb()

	video, err := h.Videos.Publish(ctx, caller, service.PublishInput{
		Title:       formValue(r, "title"),
		Description: formValue(r, "description"),
	}, videoFile, thumbnail)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusCreated, video, "video uploaded successfully")
}

// Detail handles GET /video/{videoId}.
func (h VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	detail, err := h.Videos.Detail(ctx, caller, chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, detail, "video fetched successfully")
}

// Update handles PATCH /video/{videoId}. The body is either JSON or a
// multipart form carrying an optional replacement thumbnail.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}

	var (
		in        service.UpdateVideoInput
		thumbnail *media.File
	)
	if isMultipart(r) {
		if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
			response.Error(ctx, w, err)
			return
		}
		defer cleanupMultipart(r)

		if in, err = updateFromForm(r); err != nil {
			response.Error(ctx, w, err)
			return
		}
		var closeThumb func()
		thumbnail, closeThumb = optionalFormFile(r, "thumbnail")
		defer closeThumb()
	} else if err := decodeJSON(r, &in); err != nil {
		response.Error(ctx, w, err)
		return
	}

	video, err := h.Videos.Update(ctx, caller, chi.URLParam(r, "videoId"), in, thumbnail)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, video, "video updated successfully")
}

func updateFromForm(r *http.Request) (service.UpdateVideoInput, error) {
	var in service.UpdateVideoInput
	if vals, ok := r.MultipartForm.Value["title"]; ok && len(vals) > 0 {
		in.Title = &vals[0]
	}
	if vals, ok := r.MultipartForm.Value["description"]; ok && len(vals) > 0 {
		in.Description = &vals[0]
	}
	if raw := formValue(r, "isPublished"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return in, apperr.Validation("isPublished must be a boolean",
				apperr.FieldError{Field: "isPublished", Message: "isPublished must be a boolean"})
		}
		in.IsPublished = &published
	}
	return in, nil
}

// Delete handles DELETE /video/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	if err := h.Videos.Delete(ctx, caller, chi.URLParam(r, "videoId")); err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, nil, "video deleted successfully")
}

// TogglePublish handles PATCH /video/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	video, err := h.Videos.TogglePublish(ctx, caller, chi.URLParam(r, "videoId"))
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, map[string]bool{"isPublished": video.IsPublished},
		"video publish status toggled successfully")
}
