package middleware

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tripweave/tripweave-backend/errors"
	"github.com/tripweave/tripweave-backend/logger"
)

// ErrorHandler renders the last error attached with c.Error as JSON. Handlers
// that already wrote a response are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		err := last.Err

		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			status := errors.StatusFor(appErr)
			if status >= http.StatusInternalServerError {
				logger.LogHTTPError(c, err, status, string(appErr.Type)+" error")
			} else {
				logger.GetLogger().Debugw("Request rejected",
					"type", appErr.Type, "message", appErr.Message, "path", c.Request.URL.Path)
			}

			response := gin.H{
				"type":    string(appErr.Type),
				"message": appErr.Message,
				"code":    strconv.Itoa(status),
			}
			if appErr.Detail != "" && (gin.IsDebugging() || status < http.StatusInternalServerError) {
				response["details"] = appErr.Detail
			}
			c.JSON(status, response)
			return
		}

		if last.Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
			c.JSON(http.StatusBadRequest, gin.H{
				"type":    string(errors.ValidationError),
				"message": "Failed to bind request",
				"details": err.Error(),
				"code":    "400",
			})
			return
		}

		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")
		response := gin.H{
			"type":    string(errors.ServerError),
			"message": "Internal Server Error",
			"code":    "500",
		}
		if gin.IsDebugging() {
			response["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, response)
	}
}
