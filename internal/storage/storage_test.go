package storage

import (
	"alcyxob/trainer-app/internal/config"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarKey(t *testing.T) {
	key, err := AvatarKey("t1", "image/PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "avatars/t1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.True(t, OwnsAvatarKey("t1", key))
	assert.False(t, OwnsAvatarKey("t2", key))
	assert.False(t, OwnsAvatarKey("t1", "avatars/t1/../t2/x.png"))

	_, err = AvatarKey("t1", "application/pdf")
	assert.Error(t, err)
}

func TestExportKey(t *testing.T) {
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	assert.Equal(t, "exports/t1/20240203-040506-payments.xlsx", ExportKey("t1", "payments.xlsx", at))
}

func TestNewS3Storage_NotConfigured(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewS3Storage_Presign(t *testing.T) {
	s, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "uploads",
	})
	require.NoError(t, err)

	url, err := s.GeneratePresignedDownloadURL(context.Background(), "avatars/t1/a.png", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/uploads/avatars/t1/a.png?"))
	assert.Contains(t, url, "X-Amz-Signature=")
}
