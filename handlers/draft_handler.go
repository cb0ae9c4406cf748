package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripweave/tripweave-backend/types"
)

// GetDraftHandler handles GET /v1/drafts.
func (h *TripHandler) GetDraftHandler(c *gin.Context) {
	draft, err := h.engine.Draft(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SaveDraftHandler handles PUT /v1/drafts. The caller's previous draft is
// replaced.
func (h *TripHandler) SaveDraftHandler(c *gin.Context) {
	var req types.TripRecord
	if !bindJSONOrError(c, &req) {
		return
	}
	saved, err := h.engine.SaveDraft(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
