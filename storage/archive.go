package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Archive keeps the original uploaded judgment documents so the source
// of every extracted case can be retrieved later.
type Archive interface {
	// Save stores a document and returns its archive path.
	Save(ctx context.Context, docID uuid.UUID, filename string, data io.Reader) (string, error)

	// Load retrieves a document by archive path.
	Load(ctx context.Context, archivePath string) (io.ReadCloser, error)

	// Delete removes a document by archive path.
	Delete(ctx context.Context, archivePath string) error
}

// ArchiveType selects the archive backend.
type ArchiveType string

const (
	ArchiveTypeLocal ArchiveType = "local"
	ArchiveTypeS3    ArchiveType = "s3"
)

// ArchiveConfig holds configuration for the archive backends.
type ArchiveConfig struct {
	Type         ArchiveType
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// NewArchive creates an archive for the configured backend.
func NewArchive(cfg ArchiveConfig) (Archive, error) {
	switch cfg.Type {
	case ArchiveTypeLocal:
		return NewLocalArchive(cfg.LocalPath)
	case ArchiveTypeS3:
		return NewS3Archive(cfg)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}

// NewArchiveFromEnv creates an archive from environment variables,
// defaulting to local storage for development.
func NewArchiveFromEnv() (Archive, error) {
	archiveType := os.Getenv("ARCHIVE_TYPE")
	if archiveType == "" {
		archiveType = "local"
	}

	switch ArchiveType(archiveType) {
	case ArchiveTypeLocal:
		localPath := os.Getenv("ARCHIVE_LOCAL_PATH")
		if localPath == "" {
			localPath = "./storage/judgments"
		}
		return NewLocalArchive(localPath)

	case ArchiveTypeS3:
		cfg := ArchiveConfig{
			Type:         ArchiveTypeS3,
			S3Bucket:     os.Getenv("AWS_S3_BUCKET"),
			S3Region:     os.Getenv("AWS_REGION"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 archive")
		}
		return NewS3Archive(cfg)

	default:
		return nil, fmt.Errorf("unknown archive type: %s", archiveType)
	}
}

// archivePath builds a unique path for a document, sharded by the first
// two characters of its ID.
func archivePath(docID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filepath.Base(filename), ext)
	baseName = strings.ReplaceAll(baseName, " ", "_")

	return fmt.Sprintf("%s/%s_%s%s", docID.String()[:2], docID.String(), baseName, ext)
}
