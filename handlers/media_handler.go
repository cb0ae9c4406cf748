package handlers

import (
	stderrors "errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tripweave/tripweave-backend/errors"
	"github.com/tripweave/tripweave-backend/logger"
	mediaservice "github.com/tripweave/tripweave-backend/models/media/service"
	tripservice "github.com/tripweave/tripweave-backend/models/trip/service"
	"github.com/tripweave/tripweave-backend/types"
)

// multipartOverhead leaves room for form boundaries and headers on top of
// the blob size cap.
const multipartOverhead = 1 << 20

// MediaHandler uploads trip media blobs and records them on the trip.
type MediaHandler struct {
	engine *tripservice.Engine
	media  *mediaservice.MediaService
}

func NewMediaHandler(engine *tripservice.Engine, media *mediaservice.MediaService) *MediaHandler {
	return &MediaHandler{engine: engine, media: media}
}

func findMedia(trip *types.Trip, id string) (types.MediaItem, bool) {
	for _, m := range trip.Media {
		if m.ID == id {
			return m, true
		}
	}
	return types.MediaItem{}, false
}

// UploadMediaHandler handles POST /v1/trips/:id/media. Every "file" part is
// stored; the trip is updated once with all of them.
func (h *MediaHandler) UploadMediaHandler(c *gin.Context) {
	log := logger.GetLogger()
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.media.MaxBytes()+multipartOverhead)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			_ = c.Error(apperrors.New(apperrors.PayloadTooLargeError, "File too large",
				fmt.Sprintf("limit is %d bytes", h.media.MaxBytes())))
			return
		}
		_ = c.Error(apperrors.ValidationFailed("invalid_multipart_form", err.Error()))
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		_ = c.Error(apperrors.ValidationFailed("missing_file", "at least one file part is required"))
		return
	}

	ctx := c.Request.Context()
	items := make([]types.MediaItem, 0, len(files))
	cleanup := func() {
		for _, item := range items {
			if err := h.media.Remove(ctx, trip.ID, item.ID); err != nil {
				log.Warnw("Failed to clean up media blob", "tripId", trip.ID, "mediaId", item.ID, "error", err)
			}
		}
	}

	for _, fh := range files {
		item, err := h.storeFile(c, trip.ID, fh)
		if err != nil {
			cleanup()
			_ = c.Error(err)
			return
		}
		items = append(items, *item)
	}

	next, err := h.engine.AddMedia(ctx, trip, items)
	if err != nil {
		cleanup()
		_ = c.Error(err)
		return
	}
	respondTrip(c, http.StatusCreated, next)
}

func (h *MediaHandler) storeFile(c *gin.Context, tripID string, fh *multipart.FileHeader) (*types.MediaItem, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.ValidationFailed("unreadable_file", err.Error())
	}
	defer f.Close()
	return h.media.Upload(c.Request.Context(), tripID, fh.Filename, f, fh.Size)
}

// GetMediaHandler handles GET /v1/trips/:id/media/:mediaId. Blob stores that
// can presign get a redirect; local blobs are streamed.
func (h *MediaHandler) GetMediaHandler(c *gin.Context) {
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	item, found := findMedia(trip, c.Param("mediaId"))
	if !found {
		_ = c.Error(apperrors.NotFound("Media", c.Param("mediaId")))
		return
	}

	ctx := c.Request.Context()
	url, err := h.media.Locate(ctx, trip.ID, item.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if url != "" {
		c.Redirect(http.StatusFound, url)
		return
	}

	rc, err := h.media.Open(ctx, trip.ID, item.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, item.Size, item.Type, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", item.Name),
	})
}

// DeleteMediaHandler handles DELETE /v1/trips/:id/media/:mediaId. The blob is
// removed after the trip no longer references it.
func (h *MediaHandler) DeleteMediaHandler(c *gin.Context) {
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	mediaID := c.Param("mediaId")
	if _, found := findMedia(trip, mediaID); !found {
		_ = c.Error(apperrors.NotFound("Media", mediaID))
		return
	}

	ctx := c.Request.Context()
	next, err := h.engine.RemoveMedia(ctx, trip, mediaID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.media.Remove(ctx, trip.ID, mediaID); err != nil {
		logger.GetLogger().Warnw("Media blob left behind", "tripId", trip.ID, "mediaId", mediaID, "error", err)
	}
	respondTrip(c, http.StatusOK, next)
}
