// Package content materializes captured media payloads to disk so that
// live notifications can carry a reference URL instead of raw bytes.
package content

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store writes base64-encoded image payloads under a single directory,
// keyed by device id plus a sanitized filename.
type Store struct {
	dir     string
	urlBase string
}

// NewStore creates the storage directory if needed and returns a Store
// whose references are rooted at urlBase.
func NewStore(dir, urlBase string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	return &Store{dir: dir, urlBase: strings.TrimRight(urlBase, "/")}, nil
}

// SanitizeFilename strips every character outside [A-Za-z0-9._-] so a
// hostile filename cannot introduce path traversal segments.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Save decodes the base64 payload and writes it as
// <dir>/<deviceID>_<sanitized filename>, returning the addressable
// reference path. An empty post-sanitization filename gets a
// timestamped default.
func (s *Store) Save(deviceID, filename, imageBase64 string) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		name = fmt.Sprintf("img_%s.jpg", time.Now().Format("20060102_150405"))
	}

	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode image payload: %w", err)
	}

	stored := fmt.Sprintf("%s_%s", SanitizeFilename(deviceID), name)
	if err := os.WriteFile(filepath.Join(s.dir, stored), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return s.urlBase + "/" + stored, nil
}

// Path resolves a stored filename back to its on-disk location,
// rejecting names that survive sanitization differently (traversal
// attempts).
func (s *Store) Path(filename string) (string, error) {
	if filename == "" || filename != SanitizeFilename(filename) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	return filepath.Join(s.dir, filename), nil
}
