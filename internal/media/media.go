// Package media inspects uploaded files before they reach blob storage.
package media

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vidshare/backend/internal/apperr"
)

// Category is the top-level media type an upload field accepts.
type Category string

const (
	Video Category = "video"
	Image Category = "image"
)

// File is an uploaded file. Body is rewound to the start after every
// inspection in this package.
type File struct {
	Name string
	Size int64
	Body io.ReadSeeker
}

// Sniffed is the detected type of a File.
type Sniffed struct {
	ContentType string
	Extension   string
}

// Detect sniffs the content type of f from its leading bytes.
func Detect(f File) (Sniffed, error) {
	if f.Body == nil {
		return Sniffed{}, fmt.Errorf("detect %q: empty body", f.Name)
	}
	mt, err := mimetype.DetectReader(f.Body)
	if err != nil {
		return Sniffed{}, fmt.Errorf("detect %q: %w", f.Name, err)
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return Sniffed{}, fmt.Errorf("rewind %q: %w", f.Name, err)
	}
	contentType, _, _ := strings.Cut(mt.String(), ";")
	return Sniffed{ContentType: strings.TrimSpace(contentType), Extension: mt.Extension()}, nil
}

// Require sniffs f and returns a validation error on field unless the content
// belongs to category.
func Require(field string, f File, category Category) (Sniffed, error) {
	if f.Body == nil || f.Size == 0 {
		return Sniffed{}, apperr.Validation(field+" is required",
			apperr.FieldError{Field: field, Message: field + " is required"})
	}
	sniffed, err := Detect(f)
	if err != nil {
		return Sniffed{}, err
	}
	if !strings.HasPrefix(sniffed.ContentType, string(category)+"/") {
		msg := fmt.Sprintf("%s must be a %s file, got %s", field, category, sniffed.ContentType)
		return Sniffed{}, apperr.Validation(msg, apperr.FieldError{Field: field, Message: msg})
	}
	return sniffed, nil
}
