package library

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/soundshelf/soundshelf/storage/record"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

var (
	imageContentTypes = []string{"image/jpeg", "image/jpg", "image/png"}
	audioContentTypes = []string{"audio/mpeg", "audio/mp3"}

	imageExtensions = []string{".jpeg", ".jpg", ".png"}
	audioExtensions = []string{".mp3"}
)

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if len(title) > maxTitleLen {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", maxTitleLen)}
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > maxDescriptionLen {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", maxDescriptionLen)}
	}
	return nil
}

// resolveCategory applies the fallback code for an omitted category and
// rejects codes outside the fixed set.
func resolveCategory(code string) (string, error) {
	if code == "" {
		return record.DefaultCategory, nil
	}
	if !record.ValidCategory(code) {
		return "", &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", code)}
	}
	return code, nil
}

func (s *Service) validateFile(field string, f *FileInput, contentTypes []string, extensions []string) error {
	if f == nil {
		return &ValidationError{Field: field, Message: "file is required"}
	}

	if s.MaxFileSize > 0 && f.Size > s.MaxFileSize {
		return &InvalidFileError{
			Field:   field,
			Message: fmt.Sprintf("exceeds the %d byte limit", s.MaxFileSize),
		}
	}

	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if ct != "" && slices.Contains(contentTypes, ct) {
		return nil
	}

	// Browsers are unreliable about audio content types, so fall back to the
	// file extension before rejecting.
	ext := strings.ToLower(filepath.Ext(f.Name))
	if slices.Contains(extensions, ext) {
		return nil
	}

	return &InvalidFileError{
		Field:   field,
		Message: fmt.Sprintf("unsupported type %q, allowed: %s", f.ContentType, strings.Join(extensions, ", ")),
	}
}

func (s *Service) validateImage(field string, f *FileInput) error {
	return s.validateFile(field, f, imageContentTypes, imageExtensions)
}

func (s *Service) validateAudio(field string, f *FileInput) error {
	return s.validateFile(field, f, audioContentTypes, audioExtensions)
}
