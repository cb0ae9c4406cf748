package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/tripweave/tripweave-backend/errors"
	tripservice "github.com/tripweave/tripweave-backend/models/trip/service"
	"github.com/tripweave/tripweave-backend/types"
)

// bindJSONOrError binds the JSON body and records a validation error when it
// fails. Returns false if the caller should return.
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}

// pathInt parses an integer path parameter.
func pathInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_path_parameter", fmt.Sprintf("%s must be an integer", name)))
		return 0, false
	}
	return v, true
}

// loadTrip fetches the trip named by :id. With an If-Match header the stored
// version must match. When gated, the trip must have been submitted.
func loadTrip(c *gin.Context, engine *tripservice.Engine, gated bool) (*types.Trip, bool) {
	id := c.Param("id")
	trip, err := engine.Load(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}

	if ifMatch := strings.Trim(c.GetHeader("If-Match"), `" `); ifMatch != "" {
		want, err := strconv.ParseInt(ifMatch, 10, 64)
		if err != nil {
			_ = c.Error(apperrors.ValidationFailed("invalid_if_match", "If-Match must be a trip version"))
			return nil, false
		}
		if want != trip.Version {
			_ = c.Error(apperrors.NewConflictError("Trip has changed",
				fmt.Sprintf("expected version %d, current version %d", want, trip.Version)))
			return nil, false
		}
	}

	if gated && !trip.Submitted {
		_ = c.Error(apperrors.TripNotSubmitted(trip.ID))
		return nil, false
	}
	return trip, true
}

// respondTrip writes the trip with its version as the ETag.
func respondTrip(c *gin.Context, status int, trip *types.Trip) {
	c.Header("ETag", strconv.Quote(strconv.FormatInt(trip.Version, 10)))
	c.JSON(status, trip)
}

// respondMutation finishes a mutation route.
func respondMutation(c *gin.Context, trip *types.Trip, err error) {
	if err != nil {
		_ = c.Error(err)
		return
	}
	respondTrip(c, http.StatusOK, trip)
}
