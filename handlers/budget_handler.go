package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tripservice "github.com/tripweave/tripweave-backend/models/trip/service"
	"github.com/tripweave/tripweave-backend/types"
)

// BudgetRequest applies whichever fields are present, in the order
// originCountry, currency, estimate. ClearEstimated removes the estimate.
type BudgetRequest struct {
	Currency       *string  `json:"currency"`
	Estimated      *float64 `json:"estimated"`
	ClearEstimated bool     `json:"clearEstimated"`
	OriginCountry  *string  `json:"originCountry"`
}

type ParticipantBudgetRequest struct {
	Amount float64 `json:"amount"`
}

// GetBudgetHandler handles GET /v1/trips/:id/budget.
func (h *TripHandler) GetBudgetHandler(c *gin.Context) {
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tripservice.Summary(trip))
}

// UpdateBudgetHandler handles PUT /v1/trips/:id/budget.
func (h *TripHandler) UpdateBudgetHandler(c *gin.Context) {
	var req BudgetRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var err error
	if req.OriginCountry != nil {
		if trip, err = h.engine.SetOriginCountry(ctx, trip, *req.OriginCountry); err != nil {
			_ = c.Error(err)
			return
		}
	}
	if req.Currency != nil {
		if trip, err = h.engine.SetCurrency(ctx, trip, *req.Currency); err != nil {
			_ = c.Error(err)
			return
		}
	}
	if req.Estimated != nil || req.ClearEstimated {
		estimated := req.Estimated
		if req.ClearEstimated {
			estimated = nil
		}
		if trip, err = h.engine.SetEstimatedBudget(ctx, trip, estimated); err != nil {
			_ = c.Error(err)
			return
		}
	}
	respondTrip(c, http.StatusOK, trip)
}

// SetParticipantBudgetHandler handles
// PUT /v1/trips/:id/budget/participants/:participant.
func (h *TripHandler) SetParticipantBudgetHandler(c *gin.Context) {
	var req ParticipantBudgetRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.SetParticipantBudget(c.Request.Context(), trip, c.Param("participant"), req.Amount)
	respondMutation(c, next, err)
}

// AddExpenseHandler handles POST /v1/trips/:id/expenses.
func (h *TripHandler) AddExpenseHandler(c *gin.Context) {
	var req types.ExpenseDraft
	if !bindJSONOrError(c, &req) {
		return
	}
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.AddExpense(c.Request.Context(), trip, req)
	respondMutation(c, next, err)
}

// RemoveExpenseHandler handles DELETE /v1/trips/:id/expenses/:expenseId.
func (h *TripHandler) RemoveExpenseHandler(c *gin.Context) {
	trip, ok := loadTrip(c, h.engine, true)
	if !ok {
		return
	}
	next, err := h.engine.RemoveExpense(c.Request.Context(), trip, c.Param("expenseId"))
	respondMutation(c, next, err)
}
