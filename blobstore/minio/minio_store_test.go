package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mtmstats/blobstore"
)

func TestStore_Keys(t *testing.T) {
	s := NewStore(nil, "bucket", "relations/")
	assert.Equal(t, "relations/a/rows.bin", s.key("a/rows.bin"))
	assert.Equal(t, "a/rows.bin", s.relName("relations/a/rows.bin"))

	bare := NewStore(nil, "bucket", "")
	assert.Equal(t, "x", bare.key("x"))
	assert.Equal(t, "x", bare.relName("x"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}

func TestDial(t *testing.T) {
	s, err := Dial("localhost:9000", "minioadmin", "minioadmin", false, "bucket", "p/")
	require.NoError(t, err)
	assert.Equal(t, "bucket", s.bucket)
}

// TestMinioStore_Integration requires a running MinIO instance.
// Set MINIO_ENDPOINT to enable.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping MinIO integration test: MINIO_ENDPOINT not set")
	}
	bucket := "test-mtmstats"

	store, err := Dial(endpoint, "minioadmin", "minioadmin", false, bucket, "test-prefix/")
	require.NoError(t, err)

	ctx := context.Background()
	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := store.client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	blob, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, len(data))
	n, err := blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)

	rc, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "minio", string(part))
	require.NoError(t, rc.Close())

	w, err := store.Create(ctx, "stream.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.txt")
	assert.Contains(t, names, "stream.bin")

	require.NoError(t, store.Delete(ctx, "test.txt"))
	require.NoError(t, store.Delete(ctx, "stream.bin"))

	_, err = store.Open(ctx, "test.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
