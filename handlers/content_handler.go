package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tripweave/tripweave-backend/types"
)

type ChatRequest struct {
	Text     string   `json:"text"`
	MediaIDs []string `json:"mediaIds"`
	From     string   `json:"from"`
}

// AppendChatHandler handles POST /v1/trips/:id/chat.
func (h *TripHandler) AppendChatHandler(c *gin.Context) {
	var req ChatRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.AppendChatMessage(c.Request.Context(), trip, req.Text, req.MediaIDs, req.From)
	respondMutation(c, next, err)
}

// AddDocHandler handles POST /v1/trips/:id/docs.
func (h *TripHandler) AddDocHandler(c *gin.Context) {
	var req types.DocDraft
	if !bindJSONOrError(c, &req) {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.AddDoc(c.Request.Context(), trip, req)
	respondMutation(c, next, err)
}

// UpdateDocHandler handles PUT /v1/trips/:id/docs/:docId.
func (h *TripHandler) UpdateDocHandler(c *gin.Context) {
	var req types.DocDraft
	if !bindJSONOrError(c, &req) {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.UpdateDoc(c.Request.Context(), trip, c.Param("docId"), req)
	respondMutation(c, next, err)
}

// RemoveDocHandler handles DELETE /v1/trips/:id/docs/:docId.
func (h *TripHandler) RemoveDocHandler(c *gin.Context) {
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.RemoveDoc(c.Request.Context(), trip, c.Param("docId"))
	respondMutation(c, next, err)
}
