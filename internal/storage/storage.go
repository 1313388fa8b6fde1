package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrNotConfigured is returned by features that need object storage when none is set up.
var ErrNotConfigured = errors.New("object storage is not configured")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// PutObject uploads body under objectKey.
	PutObject(ctx context.Context, objectKey string, contentType string, body io.Reader) error

	DeleteObject(ctx context.Context, objectKey string) error
}

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarKey builds a fresh object key for a trainer's avatar. Only common image types are accepted.
func AvatarKey(trainerID, contentType string) (string, error) {
	ext, ok := avatarExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported avatar content type %q", contentType)
	}
	return path.Join("avatars", trainerID, uuid.NewString()+ext), nil
}

// OwnsAvatarKey reports whether key was issued by AvatarKey for trainerID.
func OwnsAvatarKey(trainerID, key string) bool {
	return strings.HasPrefix(key, path.Join("avatars", trainerID)+"/") && !strings.Contains(key, "..")
}

// ExportKey builds the object key of a generated report.
func ExportKey(trainerID, name string, at time.Time) string {
	return path.Join("exports", trainerID, at.UTC().Format("20060102-150405")+"-"+name)
}
