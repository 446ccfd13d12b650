package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidshare/backend/internal/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestJSONWrapsData(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(context.Background(), rec, http.StatusCreated, map[string]string{"id": "v1"}, "created")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	body := decode(t, rec)
	if body["success"] != true || body["message"] != "created" || body["statusCode"] != float64(201) {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if data, ok := body["data"].(map[string]any); !ok || data["id"] != "v1" {
		t.Fatalf("unexpected data: %v", body["data"])
	}
}

func TestJSONNilDataIsEmptyObject(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(context.Background(), rec, http.StatusOK, nil, "done")

	body := decode(t, rec)
	if data, ok := body["data"].(map[string]any); !ok || len(data) != 0 {
		t.Fatalf("expected empty object, got %v", body["data"])
	}
}

func TestErrorEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		fields  int
	}{
		{
			name:    "validation",
			err:     apperr.Validation("title is required", apperr.FieldError{Field: "title", Message: "title is required"}),
			status:  http.StatusBadRequest,
			message: "title is required",
			fields:  1,
		},
		{name: "forbidden", err: apperr.Forbidden("nope"), status: http.StatusForbidden, message: "nope"},
		{name: "not found", err: apperr.NotFound("video not found"), status: http.StatusNotFound, message: "video not found"},
		{name: "internal", err: errors.New("connection reset"), status: http.StatusInternalServerError, message: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(context.Background(), rec, tt.err)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			body := decode(t, rec)
			if body["success"] != false || body["message"] != tt.message || body["data"] != nil {
				t.Fatalf("unexpected envelope: %v", body)
			}
			errs, ok := body["errors"].([]any)
			if !ok || len(errs) != tt.fields {
				t.Fatalf("expected %d field errors, got %v", tt.fields, body["errors"])
			}
		})
	}
}
