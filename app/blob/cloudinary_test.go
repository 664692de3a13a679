package blob

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := publicID(now)
	assert.Regexp(t, regexp.MustCompile(`^1700000000123-\d{1,9}$`), id)
}

func TestNewCloudinaryStoreRequiresCredentials(t *testing.T) {
	_, err := NewCloudinaryStore("", "key", "secret", "uploads", nil)
	assert.Error(t, err)

	store, err := NewCloudinaryStore("demo", "key", "secret", "uploads", nil)
	require.NoError(t, err)
	assert.Equal(t, "uploads", store.folder)
}

func TestCloudinaryStoreRejectsBeforeUpload(t *testing.T) {
	store, err := NewCloudinaryStore("demo", "key", "secret", "uploads", nil)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), Object{Filename: "x.txt", Data: []byte("nope")})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
