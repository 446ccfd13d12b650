package handlers

import (
	"net/http"

	"github.com/vidshare/backend/internal/response"
)

// DashboardHandler implements the channel dashboard endpoints.
type DashboardHandler struct {
	Dashboard DashboardService
}

// Stats handles GET /dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	stats, err := h.Dashboard.Stats(ctx, caller)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, stats, "channel stats fetched successfully")
}

// Videos handles GET /dashboard/videos.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := callerFrom(r)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	videos, err := h.Dashboard.Videos(ctx, caller)
	if err != nil {
		response.Error(ctx, w, err)
		return
	}
	response.JSON(ctx, w, http.StatusOK, videos, "channel videos fetched successfully")
}
