//go:build integration

package storage_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrocert/internal/storage"
	"agrocert/pkg/testutil/containers"
)

func TestMinioStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	mc := containers.GetManager().GetMinio(t)

	files, err := storage.NewMinioStorage(mc.Endpoint, mc.AccessKey, mc.SecretKey, "evidencias", false)
	require.NoError(t, err)
	require.NoError(t, files.EnsureBucket(ctx))
	require.NoError(t, files.EnsureBucket(ctx), "existing bucket is reused")

	body := "croquis de parcela"
	key := storage.ObjectKey("fichas", "f-1", "croquis.png")
	obj, err := files.Put(ctx, key, strings.NewReader(body), int64(len(body)), "image/png")
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(body))
	assert.Equal(t, hex.EncodeToString(sum[:]), obj.Hash)
	assert.Equal(t, int64(len(body)), obj.Size)
	assert.Equal(t, "evidencias/"+key, obj.Path)

	require.NoError(t, files.Delete(ctx, key))

	_, err = files.Put(ctx, key, strings.NewReader(""), storage.MaxFileSize+1, "image/png")
	assert.Error(t, err)
}
