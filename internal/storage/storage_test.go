package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberPhotoKey(t *testing.T) {
	key, err := MemberPhotoKey("abc123", "Image/JPEG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "members/abc123/photo-"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.True(t, IsMemberPhotoKey("abc123", key))
	assert.False(t, IsMemberPhotoKey("other", key))

	again, err := MemberPhotoKey("abc123", "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, key, again)
}

func TestMemberPhotoKey_RejectsNonImages(t *testing.T) {
	_, err := MemberPhotoKey("abc123", "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "", endpointURL("", true))
	assert.Equal(t, "https://minio:9000", endpointURL("minio:9000", true))
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "http://localhost:9000", endpointURL("http://localhost:9000", true))
}
