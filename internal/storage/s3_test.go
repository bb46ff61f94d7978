//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/dukaanlabs/dukaan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(ctx context.Context, t *testing.T) (*S3Client, func()) {
	t.Helper()

	rc := testutil.NewRustFSContainer(ctx, t)
	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "ap-south-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "dukaan-archive-test",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	return client, func() { _ = rc.Terminate(ctx) }
}

func TestS3Client_ArchiveObjectLifecycle(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newTestClient(ctx, t)
	defer cleanup()

	require.NoError(t, client.EnsureBucket(ctx))
	// Idempotent when the bucket already exists.
	require.NoError(t, client.EnsureBucket(ctx))

	body := []byte(`{"id":"int-1","query":"bijli ka kaam"}` + "\n")
	key := "interactions/2026/05/10/093000-int-1.jsonl"

	require.NoError(t, client.PutObject(ctx, key, body, "application/x-ndjson"))

	meta, err := client.HeadObject(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), meta.ContentLength)
	assert.Equal(t, "application/x-ndjson", meta.ContentType)

	require.NoError(t, client.DeleteObject(ctx, key))

	_, err = client.HeadObject(ctx, key)
	assert.Error(t, err)
}
