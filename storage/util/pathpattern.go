package util

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// PathPattern represents a configurable pattern for generating blob keys.
// It supports placeholders that get replaced with actual values:
//   - {year}  - 4-digit year (e.g., "2026")
//   - {month} - 2-digit month (e.g., "01")
//   - {day}   - 2-digit day (e.g., "15")
//   - {ts}    - unix timestamp in milliseconds at write time
//   - {name}  - the base name (slugified original filename or a uuid)
//   - {ext}   - file extension (with leading dot, e.g., ".mp3")
//   - {filename} - full filename including extension
//
// Example patterns:
//   - "{ts}-{name}{ext}" → "1767225600000-night-drive.mp3"
//   - "{year}/{month}/{filename}" → "2026/01/night-drive.mp3"
type PathPattern struct {
	pattern string
}

// NewPathPattern creates a new PathPattern from a template string.
func NewPathPattern(pattern string) *PathPattern {
	return &PathPattern{pattern: pattern}
}

// Generate produces a blob key by replacing placeholders with actual values.
// The name parameter is required. The timestamp is optional (pass time.Time{}
// to skip date and timestamp placeholders). The extension is optional (pass
// empty string to skip).
func (p *PathPattern) Generate(name string, timestamp time.Time, ext string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	result := p.pattern

	if !timestamp.IsZero() {
		result = strings.ReplaceAll(result, "{year}", fmt.Sprintf("%04d", timestamp.Year()))
		result = strings.ReplaceAll(result, "{month}", fmt.Sprintf("%02d", timestamp.Month()))
		result = strings.ReplaceAll(result, "{day}", fmt.Sprintf("%02d", timestamp.Day()))
		result = strings.ReplaceAll(result, "{ts}", strconv.FormatInt(timestamp.UnixMilli(), 10))
	}

	// Ensure extension has leading dot if provided
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	filename := name
	if ext != "" {
		filename = name + ext
	}

	result = strings.ReplaceAll(result, "{name}", name)
	result = strings.ReplaceAll(result, "{filename}", filename)
	result = strings.ReplaceAll(result, "{ext}", ext)

	// Clean the path (removes double slashes, etc.)
	result = filepath.Clean(result)

	return result, nil
}

// DefaultBlobPattern returns the default pattern for uploaded blobs.
// Pattern: "{ts}-{name}{ext}" (flat structure keyed by write time)
func DefaultBlobPattern() *PathPattern {
	return NewPathPattern("{ts}-{name}{ext}")
}
