package filesystemStore

import (
	"fmt"
	"os"
	"path/filepath"

	"asset-catalog/blobstore"
)

// FilesystemStore implements the blob store interface using simple
// filesystem storage
type FilesystemStore struct {
	baseDir string
}

// New creates a new filesystem-based blob store
func New(baseDir string) (*FilesystemStore, error) {
	//nolint:gosec,mnd // Directory permissions 0755 are intentional
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FilesystemStore{baseDir: baseDir}, nil
}

// Put stores a payload under the given asset id
func (s *FilesystemStore) Put(id string, content []byte) error {
	blobPath := s.getBlobPath(id)

	//nolint:gosec,mnd // Directory permissions 0755 are intentional
	if err := os.MkdirAll(filepath.Dir(blobPath), 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	//nolint:gosec,mnd // File permissions 0644 are intentional
	if err := os.WriteFile(blobPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}

	return nil
}

// Get retrieves a payload by asset id
func (s *FilesystemStore) Get(id string) ([]byte, error) {
	content, err := os.ReadFile(s.getBlobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, blobstore.ErrBlobNotFound
		}

		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	return content, nil
}

// Delete removes a payload by asset id
func (s *FilesystemStore) Delete(id string) error {
	err := os.Remove(s.getBlobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("failed to remove blob: %w", blobstore.ErrBlobNotFound)
		}

		return fmt.Errorf("failed to remove blob: %w", err)
	}

	return nil
}

// getBlobPath returns the file path for an asset payload. Ids are sharded
// by their first two characters to keep directories small.
func (s *FilesystemStore) getBlobPath(id string) string {
	shard := id
	if len(shard) > 2 {
		shard = shard[:2]
	}

	return filepath.Join(s.baseDir, shard, id)
}
