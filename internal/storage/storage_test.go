package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	storagePath, size, err := store.Upload(ctx, "quote.pdf", "application/pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.EqualValues(t, len("pdf-bytes"), size)
	assert.True(t, strings.HasSuffix(storagePath, ".pdf"), "key keeps the original extension, got %q", storagePath)

	reader, err := store.Download(ctx, storagePath)
	require.NoError(t, err)
	content, err := io.ReadAll(reader)
	require.NoError(t, reader.Close())
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))

	require.NoError(t, store.Delete(ctx, storagePath))

	_, err = store.Download(ctx, storagePath)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_UploadsNeverCollide(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, _, err := store.Upload(ctx, "quote.pdf", "application/pdf", strings.NewReader("one"))
	require.NoError(t, err)
	second, _, err := store.Upload(ctx, "quote.pdf", "application/pdf", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestLocalStorage_DeleteMissingIsNotAnError(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "2024/01/does-not-exist.pdf"))
}

func TestAttachmentKeyPartitionsByMonth(t *testing.T) {
	key := attachmentKey("report.xlsx")
	assert.Regexp(t, `^\d{4}/\d{2}/[0-9a-f-]{36}\.xlsx$`, key)
}
