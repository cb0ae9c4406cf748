package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tripweave/tripweave-backend/logger"
	"github.com/tripweave/tripweave-backend/types"
)

// ActorMiddleware resolves the calling participant and stores it on both the
// gin context (for logging) and the request context (for the trip engine).
// Requests without the header act as types.AnonymousActor.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			actor = types.AnonymousActor
		}

		c.Set(logger.ActorKey, actor)
		c.Request = c.Request.WithContext(types.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}
