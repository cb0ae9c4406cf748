// Package service stores trip media blobs and describes them as
// types.MediaItem values for the trip engine.
package service

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	apperrors "github.com/tripweave/tripweave-backend/errors"
	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/types"
)

// DefaultMaxUploadBytes caps a single upload at 250MB.
const DefaultMaxUploadBytes int64 = 250 * 1024 * 1024

const sniffLen = 512

var ErrBlobNotFound = stderrors.New("blob not found")

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// MediaService validates uploads and places them in a FileStorage.
type MediaService struct {
	storage  FileStorage
	maxBytes int64
	clock    func() time.Time
	newID    func() string
}

type Option func(*MediaService)

func WithClock(clock func() time.Time) Option {
	return func(s *MediaService) { s.clock = clock }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *MediaService) { s.newID = newID }
}

// NewMediaService falls back to DefaultMaxUploadBytes when maxBytes is not
// positive.
func NewMediaService(storage FileStorage, maxBytes int64, opts ...Option) *MediaService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	s := &MediaService{
		storage:  storage,
		maxBytes: maxBytes,
		clock:    func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MediaService) MaxBytes() int64 { return s.maxBytes }

// MediaKey is the storage key of a trip's media blob.
func MediaKey(tripID, mediaID string) string {
	return fmt.Sprintf("trips/%s/media/%s", tripID, mediaID)
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func tooLarge(n, max int64) error {
	return apperrors.New(apperrors.PayloadTooLargeError, "File too large",
		fmt.Sprintf("file size %d exceeds maximum of %d bytes", n, max))
}

// Upload sniffs the content type, accepts only images and videos, and stores
// the blob. size is the client-reported length; the bytes actually read are
// authoritative.
func (s *MediaService) Upload(ctx context.Context, tripID, fileName string, r io.Reader, size int64) (*types.MediaItem, error) {
	log := logger.GetLogger()
	if !validSegment(tripID) {
		return nil, apperrors.ValidationFailed("invalid trip id", tripID)
	}
	if size > s.maxBytes {
		return nil, tooLarge(size, s.maxBytes)
	}

	sniffBuf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, sniffBuf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	if n == 0 {
		return nil, apperrors.ValidationFailed("empty file", fileName)
	}
	detected := mimetype.Detect(sniffBuf[:n])
	mime := strings.SplitN(detected.String(), ";", 2)[0]
	if !strings.HasPrefix(mime, "image/") && !strings.HasPrefix(mime, "video/") {
		return nil, apperrors.New(apperrors.UnsupportedMediaError, "Unsupported media type",
			fmt.Sprintf("MIME type %s is not allowed; only images and videos", mime))
	}

	// One byte past the cap is enough to detect an oversized body.
	cr := &countingReader{r: io.LimitReader(io.MultiReader(bytes.NewReader(sniffBuf[:n]), r), s.maxBytes+1)}
	id := s.newID()
	key := MediaKey(tripID, id)

	if err := s.storage.Save(ctx, key, cr, size); err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to store media")
	}
	if cr.n > s.maxBytes {
		if err := s.storage.Delete(ctx, key); err != nil {
			log.Warnw("Failed to remove oversized upload", "key", key, "error", err)
		}
		return nil, tooLarge(cr.n, s.maxBytes)
	}

	log.Infow("Media stored", "tripId", tripID, "mediaId", id, "type", mime, "bytes", cr.n)
	return &types.MediaItem{
		ID:        id,
		Name:      sanitizeFilename(fileName),
		Type:      mime,
		Size:      cr.n,
		CreatedAt: s.clock(),
	}, nil
}

// Open streams a stored blob. The caller closes the reader.
func (s *MediaService) Open(ctx context.Context, tripID, mediaID string) (io.ReadCloser, error) {
	if !validSegment(tripID) || !validSegment(mediaID) {
		return nil, apperrors.NotFound("Media", mediaID)
	}
	rc, err := s.storage.Open(ctx, MediaKey(tripID, mediaID))
	if err != nil {
		if stderrors.Is(err, ErrBlobNotFound) {
			return nil, apperrors.NotFound("Media", mediaID)
		}
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to read media")
	}
	return rc, nil
}

// Locate returns a direct download URL, or "" when the blob must be
// streamed through Open.
func (s *MediaService) Locate(ctx context.Context, tripID, mediaID string) (string, error) {
	if !validSegment(tripID) || !validSegment(mediaID) {
		return "", apperrors.NotFound("Media", mediaID)
	}
	url, err := s.storage.URL(ctx, MediaKey(tripID, mediaID))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ServerError, "Failed to locate media")
	}
	return url, nil
}

// Remove deletes the blob. Missing blobs are not an error.
func (s *MediaService) Remove(ctx context.Context, tripID, mediaID string) error {
	if !validSegment(tripID) || !validSegment(mediaID) {
		return apperrors.NotFound("Media", mediaID)
	}
	if err := s.storage.Delete(ctx, MediaKey(tripID, mediaID)); err != nil {
		return apperrors.Wrap(err, apperrors.ServerError, "Failed to delete media")
	}
	return nil
}

var safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// sanitizeFilename strips directories and unsafe characters, keeping the
// extension when truncating.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." || name == "/" {
		name = "upload"
	}
	if len(name) > 255 {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		maxStem := 255 - len(ext)
		if maxStem < 1 {
			maxStem = 1
		}
		if len(stem) > maxStem {
			stem = stem[:maxStem]
		}
		name = stem + ext
	}
	return name
}
