// Package blob provides a filesystem-backed driven.BlobStore.
//
// Blobs live under the data directory, one subdirectory per namespace:
// raw uploads under documents/ and video transcripts under youtube/.
// Keys are slash-separated paths relative to the root.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store keeps blobs as files under a root directory.
type Store struct {
	root string
}

// NewStore creates a blob store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: blob directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

// Put writes data to namespace/name. The file is written to a temporary
// name first and renamed into place.
func (s *Store) Put(_ context.Context, namespace, name string, data []byte) (string, error) {
	if namespace == "" || name == "" {
		return "", domain.ErrInvalidInput
	}
	key := path.Join(namespace, name)
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return "", fmt.Errorf("creating namespace %s: %w", namespace, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".put-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}
	return key, nil
}

// Get reads the blob stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the blob. Missing keys are not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// resolve maps a key to a path under root, rejecting keys that escape it.
func (s *Store) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "\\") || path.Clean(key) != strings.TrimPrefix(clean, "/") {
		return "", fmt.Errorf("%w: blob key %q", domain.ErrInvalidInput, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
