package storage

import (
	"alcyxob/fitcoach/internal/config"
	"alcyxob/fitcoach/internal/logger"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, endpoint string) FileStorage {
	t.Helper()
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        endpoint,
		Region:          "us-east-1",
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
		BucketName:      "avatars",
	}, logger.Nop())
	require.NoError(t, err)
	return fs
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		cfg  config.S3Config
		want string
	}{
		{config.S3Config{}, ""},
		{config.S3Config{Endpoint: "minio:9000"}, "http://minio:9000"},
		{config.S3Config{Endpoint: "minio:9000", UseSSL: true}, "https://minio:9000"},
		{config.S3Config{Endpoint: "http://localhost:9000", UseSSL: true}, "http://localhost:9000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, endpointURL(tt.cfg))
	}
}

func TestPresignedURLs(t *testing.T) {
	fs := newTestStorage(t, "localhost:9000")
	ctx := context.Background()

	upload, err := fs.GeneratePresignedUploadURL(ctx, "profiles/abc/photo.png", "image/png", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(upload)
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/avatars/profiles/abc/photo.png", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "AWS4-HMAC-SHA256", u.Query().Get("X-Amz-Algorithm"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "host")

	download, err := fs.GeneratePresignedDownloadURL(ctx, "profiles/abc/photo.png", 0)
	require.NoError(t, err)
	u, err = url.Parse(download)
	require.NoError(t, err)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestDeleteObject(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	fs := newTestStorage(t, server.URL)
	require.NoError(t, fs.DeleteObject(context.Background(), "profiles/abc/old.png"))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.True(t, strings.HasSuffix(gotPath, "/avatars/profiles/abc/old.png"), gotPath)
}
