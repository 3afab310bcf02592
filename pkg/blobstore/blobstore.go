package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage categories. Each maps to a subdirectory under the store root.
const (
	DirProfilePictures = "profile-pictures"
	DirResumes         = "resumes"
)

// ErrNotFound is returned when a requested file does not resolve to a
// readable path under the store root. Path-traversal attempts return the
// same error so the response cannot be used to probe the filesystem.
var ErrNotFound = errors.New("blobstore: file not found")

var categories = map[string]bool{
	DirProfilePictures: true,
	DirResumes:         true,
}

// contentTypes maps file extensions to MIME types for serving.
// Display only - classification has no security role.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// Store persists uploaded files on local disk under a fixed root.
type Store struct {
	root string
}

// New resolves root to an absolute path and eagerly creates the root and
// every category directory. Creation is idempotent - existing directories
// are not an error.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blobstore: resolve root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root: %w", err)
	}
	for dir := range categories {
		if err := os.MkdirAll(filepath.Join(abs, dir), 0o755); err != nil {
			return nil, fmt.Errorf("blobstore: create category %s: %w", dir, err)
		}
	}

	return &Store{root: abs}, nil
}

// Save writes the stream to <root>/<subDir>/<uuid>_<originalName> and
// returns the retrieval path clients use to fetch it back. The fresh UUID
// token makes collisions between concurrent uploads of identically named
// files practically impossible.
func (s *Store) Save(subDir, originalName string, r io.Reader) (string, error) {
	if !categories[subDir] {
		return "", fmt.Errorf("blobstore: unknown category %q", subDir)
	}

	storedName := uuid.NewString() + "_" + sanitizeFilename(filepath.Base(originalName))
	target := filepath.Join(s.root, subDir, storedName)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("blobstore: create %s: %w", storedName, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("blobstore: write %s: %w", storedName, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("blobstore: close %s: %w", storedName, err)
	}

	return "/uploads/" + subDir + "/" + storedName, nil
}

// Open returns a reader over a previously stored file. The resolved path
// is canonicalized and must stay inside the store root; anything escaping
// it (e.g. "../" segments in fileName) is reported as ErrNotFound. This
// check is independent of the router's own path matching.
func (s *Store) Open(subDir, fileName string) (io.ReadCloser, error) {
	if !categories[subDir] {
		return nil, ErrNotFound
	}

	resolved, err := filepath.Abs(filepath.Join(s.root, subDir, fileName))
	if err != nil {
		return nil, ErrNotFound
	}
	if !strings.HasPrefix(resolved, s.root+string(filepath.Separator)) {
		return nil, ErrNotFound
	}

	f, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blobstore: open %s: %w", fileName, err)
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	return f, nil
}

// ContentType derives a MIME type from the file-name suffix. Unknown
// extensions map to a generic binary type.
func ContentType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// sanitizeFilename replaces spaces with underscores and drops everything
// outside ASCII alphanumerics, dots, underscores and dashes so stored
// names are filesystem- and URL-safe.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, " ", "_")

	var result strings.Builder
	for _, r := range filename {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}

	if result.Len() == 0 {
		return "file"
	}
	return result.String()
}
