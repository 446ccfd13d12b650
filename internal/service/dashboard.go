package service

import (
	"context"

	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/views"
)

// DashboardService serves the caller's channel totals and video list.
type DashboardService struct {
	views *views.Composer
}

// NewDashboardService wires a DashboardService.
func NewDashboardService(composer *views.Composer) *DashboardService {
	return &DashboardService{views: composer}
}

// Stats returns the caller's channel totals.
func (s *DashboardService) Stats(ctx context.Context, caller auth.Caller) (views.ChannelStats, error) {
	return s.views.ChannelStats(ctx, caller.ID)
}

// Videos lists every video of the caller, published or not.
func (s *DashboardService) Videos(ctx context.Context, caller auth.Caller) ([]views.ChannelVideo, error) {
	return s.views.ChannelVideos(ctx, caller.ID)
}
