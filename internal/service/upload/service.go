// Package upload persists uploaded file blobs under a configured upload
// directory. Storage names are prefixed with fresh random tokens, so name
// uniqueness — not locking — is what prevents collisions between unrelated
// uploads.
package upload

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/phrazzld/worktodo-api/internal/platform/logger"
)

// ErrEmptyFilename is returned when an upload declares no usable filename.
var ErrEmptyFilename = errors.New("filename cannot be empty")

// storagePrefixBytes is the entropy of the random storage-name prefix.
// 16 bytes (32 hex characters) makes collisions across unrelated uploads
// negligible.
const storagePrefixBytes = 16

// Service writes uploaded blobs to the upload directory and streams them
// back out for downloads.
type Service struct {
	dir    string
	logger *slog.Logger
}

// NewService creates an upload service rooted at dir, creating the
// directory if it does not exist.
// If logger is nil, a default logger will be used.
func NewService(dir string, logger *slog.Logger) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		dir:    dir,
		logger: logger.With(slog.String("component", "upload_service")),
	}, nil
}

// SanitizeFilename strips every character that is not alphanumeric, space,
// period, or underscore, and removes trailing whitespace.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == ' ', r == '.', r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Save persists the stream under a collision-resistant storage name built
// from a fresh random hex token and the sanitized original filename.
// It returns the sanitized filename, the absolute storage path, and the
// number of bytes written. The stream is consumed exactly once; the write
// is also the size measurement.
// On a write failure the partial blob is removed before returning.
func (s *Service) Save(ctx context.Context, originalName string, r io.Reader) (string, string, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sanitized := SanitizeFilename(originalName)
	if sanitized == "" {
		return "", "", 0, ErrEmptyFilename
	}

	token := make([]byte, storagePrefixBytes)
	if _, err := rand.Read(token); err != nil {
		return "", "", 0, fmt.Errorf("failed to generate storage name: %w", err)
	}
	storageName := hex.EncodeToString(token) + "_" + sanitized

	path, err := filepath.Abs(filepath.Join(s.dir, storageName))
	if err != nil {
		return "", "", 0, fmt.Errorf("failed to resolve storage path: %w", err)
	}

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		log.Error("failed to create upload file", slog.String("error", err.Error()))
		return "", "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(dst, r)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Do not leave a partial blob behind.
		if rmErr := os.Remove(path); rmErr != nil {
			log.Error("failed to remove partial upload",
				slog.String("error", rmErr.Error()))
		}
		log.Error("failed to write upload", slog.String("error", err.Error()))
		return "", "", 0, fmt.Errorf("failed to write upload: %w", err)
	}

	log.Debug("upload stored",
		slog.String("storage_name", storageName),
		slog.Int64("size", written))
	return sanitized, path, written, nil
}

// Open opens a stored blob for reading.
func (s *Service) Open(path string) (*os.File, error) {
	return os.Open(path)
}

// Remove deletes stored blobs best-effort: failures are logged, never
// returned, so a missed unlink cannot fail an API call whose database work
// already committed.
func (s *Service) Remove(ctx context.Context, paths ...string) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove stored file",
				slog.String("error", err.Error()))
		}
	}
}
