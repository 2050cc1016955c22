package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrUnsupportedContentType = errors.New("unsupported photo content type")

// FileStorage is the object store holding member photos.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a temporary URL accepting a PUT of
	// objectKey. The uploader must send the same Content-Type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a temporary GET URL for objectKey.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// ObjectExists reports whether objectKey has been uploaded.
	ObjectExists(ctx context.Context, objectKey string) (bool, error)

	DeleteObject(ctx context.Context, objectKey string) error
}

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// MemberPhotoKey builds a fresh object key for a member's photo, e.g.
// "members/65f0.../photo-<uuid>.jpg". Every upload gets a new key so cached
// URLs of the previous photo never serve the new one.
func MemberPhotoKey(memberID, contentType string) (string, error) {
	ext, ok := photoExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	return fmt.Sprintf("members/%s/photo-%s%s", memberID, uuid.NewString(), ext), nil
}

// IsMemberPhotoKey reports whether key was issued by MemberPhotoKey for memberID.
func IsMemberPhotoKey(memberID, key string) bool {
	return strings.HasPrefix(key, "members/"+memberID+"/photo-")
}
