package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripweave/tripweave-backend/logger"
	tripservice "github.com/tripweave/tripweave-backend/models/trip/service"
	"github.com/tripweave/tripweave-backend/types"
)

// TripHandler exposes the trip engine over HTTP.
type TripHandler struct {
	engine *tripservice.Engine
}

func NewTripHandler(engine *tripservice.Engine) *TripHandler {
	return &TripHandler{engine: engine}
}

type ArchiveRequest struct {
	Archived bool `json:"archived"`
}

type ActivityRequest struct {
	Text string `json:"text" binding:"required"`
}

type MoveActivityRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type ParticipantRequest struct {
	Participant string `json:"participant" binding:"required"`
}

// CreateTripHandler handles POST /v1/trips.
func (h *TripHandler) CreateTripHandler(c *gin.Context) {
	var req types.NewTripParams
	if c.Request.ContentLength != 0 && !bindJSONOrError(c, &req) {
		return
	}

	trip, err := h.engine.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondTrip(c, http.StatusCreated, trip)
}

// ListTripsHandler handles GET /v1/trips.
func (h *TripHandler) ListTripsHandler(c *gin.Context) {
	list, err := h.engine.ListRecent(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetTripHandler handles GET /v1/trips/:id.
func (h *TripHandler) GetTripHandler(c *gin.Context) {
	trip, ok := loadTrip(c, h.engine, false)
	if !ok {
		return
	}
	respondTrip(c, http.StatusOK, trip)
}

// DeleteTripHandler handles DELETE /v1/trips/:id.
func (h *TripHandler) DeleteTripHandler(c *gin.Context) {
	if err := h.engine.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	logger.GetLogger().Infow("Trip deleted via API", "tripId", c.Param("id"), "actor", logger.MaskEmail(c.GetString(logger.ActorKey)))
	c.Status(http.StatusNoContent)
}

// UpdateMetaHandler handles PUT /v1/trips/:id/meta. Saving details is what
// opens the gated routes, so it is not gated itself.
func (h *TripHandler) UpdateMetaHandler(c *gin.Context) {
	var req types.MetaUpdate
	if !bindJSONOrError(c, &req) {
		return
	}
	trip, ok := loadTrip(c, h.engine, false)
	if !ok {
		return
	}
	next, err := h.engine.UpdateMeta(c.Request.Context(), trip, req)
	respondMutation(c, next, err)
}

// ArchiveTripHandler handles PUT /v1/trips/:id/archive.
func (h *TripHandler) ArchiveTripHandler(c *gin.Context) {
	var req ArchiveRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	trip, ok := loadTrip(c, h.engine, false)
	if !ok {
		return
	}
	next, err := h.engine.SetArchived(c.Request.Context(), trip, req.Archived)
	respondMutation(c, next, err)
}

// AddActivityHandler handles POST /v1/trips/:id/days/:day/activities.
func (h *TripHandler) AddActivityHandler(c *gin.Context) {
	var req ActivityRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	day, ok := pathInt(c, "day")
	if !ok {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.AddActivity(c.Request.Context(), trip, day, req.Text)
	respondMutation(c, next, err)
}

// EditActivityHandler handles PUT /v1/trips/:id/days/:day/activities/:item.
func (h *TripHandler) EditActivityHandler(c *gin.Context) {
	var req ActivityRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	day, ok := pathInt(c, "day")
	if !ok {
		return
	}
	item, ok := pathInt(c, "item")
	if !ok {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.EditActivity(c.Request.Context(), trip, day, item, req.Text)
	respondMutation(c, next, err)
}

// RemoveActivityHandler handles DELETE /v1/trips/:id/days/:day/activities/:item.
func (h *TripHandler) RemoveActivityHandler(c *gin.Context) {
	day, ok := pathInt(c, "day")
	if !ok {
		return
	}
	item, ok := pathInt(c, "item")
	if !ok {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.RemoveActivity(c.Request.Context(), trip, day, item)
	respondMutation(c, next, err)
}

// MoveActivityHandler handles POST /v1/trips/:id/days/:day/activities/move.
func (h *TripHandler) MoveActivityHandler(c *gin.Context) {
	var req MoveActivityRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	day, ok := pathInt(c, "day")
	if !ok {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.MoveActivity(c.Request.Context(), trip, day, req.From, req.To)
	respondMutation(c, next, err)
}

// AddParticipantHandler handles POST /v1/trips/:id/participants.
func (h *TripHandler) AddParticipantHandler(c *gin.Context) {
	var req ParticipantRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	trip, ok := loadTrip(c, h.engine, false)
	if !ok {
		return
	}
	next, err := h.engine.AddParticipant(c.Request.Context(), trip, req.Participant)
	respondMutation(c, next, err)
}

// RemoveParticipantHandler handles DELETE /v1/trips/:id/participants/:index.
func (h *TripHandler) RemoveParticipantHandler(c *gin.Context) {
	index, ok := pathInt(c, "index")
	if !ok {
		return
	}
	trip, ok := loadTrip(c, h.engine, false)
	if !ok {
		return
	}
	next, err := h.engine.RemoveParticipant(c.Request.Context(), trip, index)
	respondMutation(c, next, err)
}
