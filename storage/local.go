package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalArchive keeps judgment documents on the local filesystem.
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates a local archive rooted at basePath.
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

// Save writes the document under its sharded archive path.
func (a *LocalArchive) Save(ctx context.Context, docID uuid.UUID, filename string, data io.Reader) (string, error) {
	path := archivePath(docID, filename)
	fullPath := filepath.Join(a.basePath, path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}

// Load opens an archived document.
func (a *LocalArchive) Load(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(a.basePath, path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return file, nil
}

// Delete removes an archived document. Deleting a missing document is
// not an error.
func (a *LocalArchive) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(a.basePath, path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
