package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave-backend/config"
	apperrors "github.com/tripweave/tripweave-backend/errors"
	"github.com/tripweave/tripweave-backend/logger"
)

func init() {
	logger.IsTest = true
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newLocalService(t *testing.T, maxBytes int64) (*MediaService, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewMediaService(NewLocalFileStorage(dir), maxBytes,
		WithIDGenerator(func() string { return "m1" }),
		WithClock(func() time.Time { return fixedNow }),
	)
	return svc, dir
}

func TestUploadStoresImage(t *testing.T) {
	svc, dir := newLocalService(t, 0)
	assert.Equal(t, DefaultMaxUploadBytes, svc.MaxBytes())

	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 1024)...)
	item, err := svc.Upload(context.Background(), "t1", "../Beach Day.png", bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)

	assert.Equal(t, "m1", item.ID)
	assert.Equal(t, "Beach_Day.png", item.Name)
	assert.Equal(t, "image/png", item.Type)
	assert.Equal(t, int64(len(body)), item.Size)
	assert.Equal(t, fixedNow, item.CreatedAt)

	stored, err := os.ReadFile(filepath.Join(dir, "trips", "t1", "media", "m1"))
	require.NoError(t, err)
	assert.Equal(t, body, stored)

	rc, err := svc.Open(context.Background(), "t1", "m1")
	require.NoError(t, err)
	defer rc.Close()
	read, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, body, read)

	url, err := svc.Locate(context.Background(), "t1", "m1")
	require.NoError(t, err)
	assert.Empty(t, url, "local blobs are streamed")
}

func TestUploadRejects(t *testing.T) {
	tests := []struct {
		name       string
		tripID     string
		body       []byte
		size       int64
		wantStatus int
	}{
		{"text file", "t1", []byte("just some notes about the trip"), 30, http.StatusUnsupportedMediaType},
		{"pdf", "t1", []byte("%PDF-1.7\n%âãÏÓ\n1 0 obj"), 22, http.StatusUnsupportedMediaType},
		{"empty", "t1", nil, 0, http.StatusBadRequest},
		{"declared too large", "t1", pngHeader, 1 << 20, http.StatusRequestEntityTooLarge},
		{"body too large", "t1", append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 100)...), 0, http.StatusRequestEntityTooLarge},
		{"traversal trip id", "..", pngHeader, 10, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir := newLocalService(t, 64)
			_, err := svc.Upload(context.Background(), tt.tripID, "file.bin", bytes.NewReader(tt.body), tt.size)
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, apperrors.StatusFor(err))

			_, statErr := os.Stat(filepath.Join(dir, "trips", "t1", "media", "m1"))
			assert.True(t, os.IsNotExist(statErr), "nothing is left behind")
		})
	}
}

func TestUploadAcceptsGIF(t *testing.T) {
	svc, _ := newLocalService(t, 0)
	item, err := svc.Upload(context.Background(), "t1", "wave.gif", strings.NewReader("GIF89a\x01\x00\x01\x00\x00\x00\x00;"), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", item.Type)
}

func TestRemoveAndMissingMedia(t *testing.T) {
	svc, _ := newLocalService(t, 0)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "t1", "a.png", bytes.NewReader(pngHeader), 0)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "t1", "m1"))
	require.NoError(t, svc.Remove(ctx, "t1", "m1"), "removal is idempotent")

	_, err = svc.Open(ctx, "t1", "m1")
	assert.Equal(t, http.StatusNotFound, apperrors.StatusFor(err))

	_, err = svc.Open(ctx, "t1", "../../etc")
	assert.Equal(t, http.StatusNotFound, apperrors.StatusFor(err))
}

func TestLocalStorageContainsPaths(t *testing.T) {
	storage := NewLocalFileStorage(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"../escape", "trips/../../escape", ""} {
		assert.Error(t, storage.Save(ctx, key, strings.NewReader("x"), 1), key)
		_, err := storage.Open(ctx, key)
		assert.Error(t, err, key)
		assert.Error(t, storage.Delete(ctx, key), key)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"photo.jpg", "photo.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\ana\trip video.mp4`, "trip_video.mp4"},
		{"", "upload"},
		{"..", "upload"},
		{strings.Repeat("a", 300) + ".png", strings.Repeat("a", 251) + ".png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}

func TestNewS3FileStorage(t *testing.T) {
	storage, err := NewS3FileStorage(context.Background(), config.StorageConfig{
		S3Bucket:       "media",
		S3Endpoint:     "http://localhost:9000",
		S3Region:       "us-east-1",
		S3AccessKey:    "AKID",
		S3SecretKey:    "SECRET",
		PresignMinutes: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "media", storage.bucketName)
	assert.Equal(t, 5*time.Minute, storage.presignTTL)

	url, err := storage.URL(context.Background(), MediaKey("t1", "m1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/media/trips/t1/media/m1?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=300")

	_, err = storage.URL(context.Background(), "trips/../secret")
	assert.Error(t, err)
}

func TestNewS3FileStorageRequiresBucket(t *testing.T) {
	_, err := NewS3FileStorage(context.Background(), config.StorageConfig{})
	assert.Error(t, err)
}
