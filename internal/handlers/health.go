package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/response"
)

const healthTimeout = 2 * time.Second

// HealthHandler responds with service health information.
type HealthHandler struct {
	Database HealthChecker
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Handle implements GET /healthcheck.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := healthStatus{Status: "ok", Database: "skipped"}

	if h.Database != nil {
		pingCtx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		if err := h.Database.Ping(pingCtx); err != nil {
			logging.FromContext(ctx).Error("database health check failed", "error", err)
			status = healthStatus{Status: "degraded", Database: "unreachable"}
			response.JSON(ctx, w, http.StatusServiceUnavailable, status, "service unhealthy")
			return
		}
		status.Database = "ok"
	}

	response.JSON(ctx, w, http.StatusOK, status, "service healthy")
}
