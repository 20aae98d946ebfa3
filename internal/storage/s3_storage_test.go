package storage

import (
	"strings"
	"testing"

	"github.com/stickerverse/sticker-catalog/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(baseURL string) *S3Storage {
	return NewS3Storage(&config.S3Config{
		Region:          "us-east-1",
		Bucket:          "stickers-test",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		BaseURL:         baseURL,
		UploadFolder:    "/stickers/",
	})
}

func TestS3Storage_ResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		key     string
		want    *string
	}{
		{"empty key", "", "", nil},
		{"direct s3", "", "stickers/a.png", strPtr("https://stickers-test.s3.us-east-1.amazonaws.com/stickers/a.png")},
		{"cdn", "https://cdn.example.com/", "stickers/a.png", strPtr("https://cdn.example.com/stickers/a.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestStorage(tt.baseURL).ResolveURL(tt.key)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestS3Storage_GenerateUploadURL(t *testing.T) {
	s := newTestStorage("https://cdn.example.com")

	resp, err := s.GenerateUploadURL("POK-GEN_bulbasaur.PNG", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, "stickers/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+resp.Key, resp.FileURL)
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature")
}

func TestS3Storage_GenerateUploadURL_RejectsContentType(t *testing.T) {
	_, err := newTestStorage("").GenerateUploadURL("a.gif", "image/gif")
	assert.Error(t, err)
}

func strPtr(s string) *string {
	return &s
}
