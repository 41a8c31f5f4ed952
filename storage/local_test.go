package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalArchive_SaveLoadDelete(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	docID := uuid.New()

	path, err := archive.Save(ctx, docID, "judgment 2023.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Contains(t, path, docID.String())
	assert.Contains(t, path, "judgment_2023.pdf")

	reader, err := archive.Load(ctx, path)
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(content))

	require.NoError(t, archive.Delete(ctx, path))
	_, err = archive.Load(ctx, path)
	assert.Error(t, err)
}

func TestLocalArchive_DeleteMissingIsNoop(t *testing.T) {
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, archive.Delete(context.Background(), "ab/missing.pdf"))
}

func TestArchivePath_ShardsByDocID(t *testing.T) {
	docID := uuid.MustParse("d94f2b10-1111-4222-8333-444455556666")

	path := archivePath(docID, "Some Judgment.pdf")

	assert.Equal(t, "d9/d94f2b10-1111-4222-8333-444455556666_Some_Judgment.pdf", path)
}

func TestNewArchive_UnknownType(t *testing.T) {
	_, err := NewArchive(ArchiveConfig{Type: "ftp"})

	assert.Error(t, err)
}
