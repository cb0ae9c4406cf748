package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/types"
)

// ForecastResolver is implemented by the weather service.
type ForecastResolver interface {
	ResolveForecast(ctx context.Context, req types.ForecastRequest) types.ForecastResponse
}

type WeatherHandler struct {
	weather ForecastResolver
}

func NewWeatherHandler(weather ForecastResolver) *WeatherHandler {
	return &WeatherHandler{weather: weather}
}

// ForecastHandler handles POST /v1/weather. Lookup failures still answer 200
// with the reason in the error field; only an unreadable body is a 400, and
// it keeps the same response shape.
func (h *WeatherHandler) ForecastHandler(c *gin.Context) {
	var req types.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Debugw("Malformed forecast request", "error", err)
		c.JSON(http.StatusBadRequest, types.ForecastResponse{
			ByDate: map[string]types.ForecastEntry{},
			Unit:   types.UnitCelsius,
			Error:  "Invalid request body",
		})
		return
	}
	c.JSON(http.StatusOK, h.weather.ResolveForecast(c.Request.Context(), req))
}
