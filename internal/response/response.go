// Package response writes the JSON envelope shared by every API endpoint.
package response

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/logging"
)

// Envelope wraps a successful payload.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorEnvelope describes a failed request.
type ErrorEnvelope struct {
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Errors     []apperr.FieldError `json:"errors"`
	Data       any                 `json:"data"`
	Success    bool                `json:"success"`
}

// JSON writes data inside a success envelope.
func JSON(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	if data == nil {
		data = struct{}{}
	}
	write(ctx, w, status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// Error writes err inside an error envelope. Internal errors are logged with
// their cause and rendered with a generic message.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	appErr := apperr.As(err)
	status := appErr.Kind.HTTPStatus()

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "error", err)
	default:
		logger.Warn("request returned client error", "status", status, "kind", appErr.Kind.String(), "message", appErr.Message)
	}

	fields := appErr.Fields
	if fields == nil {
		fields = []apperr.FieldError{}
	}
	write(ctx, w, status, ErrorEnvelope{
		StatusCode: status,
		Message:    appErr.Message,
		Errors:     fields,
		Success:    false,
	})
}

func write(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}
