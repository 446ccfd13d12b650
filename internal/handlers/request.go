package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vidshare/backend/internal/apperr"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/media"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

func callerFrom(r *http.Request) (auth.Caller, error) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		return auth.Caller{}, apperr.Unauthenticated("unauthorized request")
	}
	return caller, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseMultipart parses a multipart body of at most maxBytes.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if !isMultipart(r) {
		return apperr.Validation("request must be multipart/form-data")
	}
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("upload exceeds the maximum allowed size")
		}
		return apperr.Validation("invalid multipart body")
	}
	return nil
}

// formFile opens the uploaded file of field. A missing file yields an empty
// media.File so the service reports it as a validation error.
func formFile(r *http.Request, field string) (media.File, func()) {
	if r.MultipartForm == nil {
		return media.File{}, func() {}
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return media.File{}, func() {}
	}
	return media.File{Name: header.Filename, Size: header.Size, Body: file}, func() { _ = file.Close() }
}

// optionalFormFile is formFile returning nil when field carries no file.
func optionalFormFile(r *http.Request, field string) (*media.File, func()) {
	f, closeFn := formFile(r, field)
	if f.Body == nil {
		return nil, closeFn
	}
	return &f, closeFn
}

func formValue(r *http.Request, field string) string {
	return strings.TrimSpace(r.FormValue(field))
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}
