// Package storage keeps problem attachments on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidPath is returned for paths outside the storage root.
var ErrInvalidPath = errors.New("invalid attachment path")

// Store persists and retrieves attachment blobs.
type Store interface {
	// Store writes r under a unique name derived from filename and returns its path.
	Store(filename string, r io.Reader) (string, error)
	// Open opens a stored blob.
	Open(path string) (io.ReadCloser, error)
	// Remove deletes a stored blob. Removing a missing blob is not an error.
	Remove(path string) error
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type localStore struct {
	root   string
	logger *zap.SugaredLogger
}

// NewLocal creates a store rooted at dir, creating it if needed.
func NewLocal(dir string, logger *zap.SugaredLogger) (Store, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStore{root: root, logger: logger}, nil
}

// Store writes r to <root>/<uuid>_<sanitized name>. Paths are returned
// relative to the root so the upload directory can move.
func (s *localStore) Store(filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + "_" + sanitize(filename)
	full := filepath.Join(s.root, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}

	written, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("write attachment: %w", errors.Join(copyErr, closeErr))
	}

	s.logger.Debugw("attachment stored", "path", name, "bytes", written)
	return name, nil
}

func (s *localStore) Open(path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (s *localStore) Remove(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove attachment: %w", err)
	}
	s.logger.Debugw("attachment removed", "path", path)
	return nil
}

func (s *localStore) resolve(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return "", ErrInvalidPath
	}
	full := filepath.Join(s.root, filepath.Clean(path))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "attachment"
	}
	if len(base) > 100 {
		base = base[len(base)-100:]
	}
	return base
}
