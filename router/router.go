package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tripweave/tripweave-backend/config"
	"github.com/tripweave/tripweave-backend/handlers"
	"github.com/tripweave/tripweave-backend/middleware"
)

// Dependencies holds everything needed to mount the routes. RedisClient is
// optional; without it the weather route is not rate limited.
type Dependencies struct {
	Config         *config.Config
	TripHandler    *handlers.TripHandler
	MediaHandler   *handlers.MediaHandler
	WeatherHandler *handlers.WeatherHandler
	HealthHandler  *handlers.HealthHandler
	RedisClient    *redis.Client
}

// SetupRouter configures and returns the gin engine with all routes.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.ActorMiddleware())

	r.GET("/health", deps.HealthHandler.ReadinessCheck)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		weatherHandlers := []gin.HandlerFunc{}
		if deps.RedisClient != nil && deps.Config.RateLimit.WeatherRequestsPerMinute > 0 {
			window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
			if window <= 0 {
				window = time.Minute
			}
			weatherHandlers = append(weatherHandlers,
				middleware.WeatherRateLimiter(deps.RedisClient, deps.Config.RateLimit.WeatherRequestsPerMinute, window))
		}
		weatherHandlers = append(weatherHandlers, deps.WeatherHandler.ForecastHandler)
		v1.POST("/weather", weatherHandlers...)

		v1.GET("/drafts", deps.TripHandler.GetDraftHandler)
		v1.PUT("/drafts", deps.TripHandler.SaveDraftHandler)

		tripRoutes := v1.Group("/trips")
		{
			tripRoutes.POST("", deps.TripHandler.CreateTripHandler)
			tripRoutes.GET("", deps.TripHandler.ListTripsHandler)
			tripRoutes.GET("/:id", deps.TripHandler.GetTripHandler)
			tripRoutes.DELETE("/:id", deps.TripHandler.DeleteTripHandler)
			tripRoutes.PUT("/:id/meta", deps.TripHandler.UpdateMetaHandler)
			tripRoutes.PUT("/:id/archive", deps.TripHandler.ArchiveTripHandler)

			dayRoutes := tripRoutes.Group("/:id/days/:day/activities")
			{
				dayRoutes.POST("", deps.TripHandler.AddActivityHandler)
				dayRoutes.POST("/move", deps.TripHandler.MoveActivityHandler)
				dayRoutes.PUT("/:item", deps.TripHandler.EditActivityHandler)
				dayRoutes.DELETE("/:item", deps.TripHandler.RemoveActivityHandler)
			}

			tripRoutes.POST("/:id/participants", deps.TripHandler.AddParticipantHandler)
			tripRoutes.DELETE("/:id/participants/:index", deps.TripHandler.RemoveParticipantHandler)

			tripRoutes.GET("/:id/budget", deps.TripHandler.GetBudgetHandler)
			tripRoutes.PUT("/:id/budget", deps.TripHandler.UpdateBudgetHandler)
			tripRoutes.PUT("/:id/budget/participants/:participant", deps.TripHandler.SetParticipantBudgetHandler)
			tripRoutes.POST("/:id/expenses", deps.TripHandler.AddExpenseHandler)
			tripRoutes.DELETE("/:id/expenses/:expenseId", deps.TripHandler.RemoveExpenseHandler)

			tripRoutes.POST("/:id/chat", deps.TripHandler.AppendChatHandler)

			tripRoutes.POST("/:id/docs", deps.TripHandler.AddDocHandler)
			tripRoutes.PUT("/:id/docs/:docId", deps.TripHandler.UpdateDocHandler)
			tripRoutes.DELETE("/:id/docs/:docId", deps.TripHandler.RemoveDocHandler)

			if deps.MediaHandler != nil {
				tripRoutes.POST("/:id/media", deps.MediaHandler.UploadMediaHandler)
				tripRoutes.GET("/:id/media/:mediaId", deps.MediaHandler.GetMediaHandler)
				tripRoutes.DELETE("/:id/media/:mediaId", deps.MediaHandler.DeleteMediaHandler)
			}
		}
	}

	return r
}
