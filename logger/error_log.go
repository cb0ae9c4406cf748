package logger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys shared with the middleware package. They are plain strings
// because gin.Context stores values by string key.
const (
	RequestIDKey = "request_id"
	ActorKey     = "actor_id"
)

// LogError writes a structured error entry. When ctx is a *gin.Context the
// request id, actor, path and method are attached.
func LogError(ctx context.Context, err error, message string, metadata map[string]interface{}) {
	fields := []zap.Field{zap.Error(err)}
	if err != nil {
		fields = append(fields, zap.String("error_type", errorTypeName(err)))
	}

	if c, ok := ctx.(*gin.Context); ok && c.Request != nil {
		if id := c.GetString(RequestIDKey); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if actor := c.GetString(ActorKey); actor != "" {
			fields = append(fields, zap.String("actor", MaskEmail(actor)))
		}
		fields = append(fields,
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("client_ip", c.ClientIP()),
		)
	}

	if os.Getenv("SERVER_ENVIRONMENT") != "production" {
		fields = append(fields, zap.String("stack_trace", stackTrace(3)))
	}

	for k, v := range metadata {
		fields = append(fields, zap.Any(k, v))
	}

	GetLogger().Desugar().Error(message, fields...)
}

// LogHTTPError logs a failed request together with its status and a redacted
// copy of the request headers.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	LogError(c, err, message, map[string]interface{}{
		"status_code": statusCode,
		"headers":     redactHeaders(c.Request.Header),
	})
}

func errorTypeName(err error) string {
	// Unwrap to the innermost concrete type so "*fmt.wrapError" does not hide it.
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	name := fmt.Sprintf("%T", err)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func stackTrace(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			b.WriteString(frame.Function)
			b.WriteString("\n\t")
			b.WriteString(frame.File)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(frame.Line))
			b.WriteString("\n")
		}
		if !more {
			break
		}
	}
	return b.String()
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		if lower == "authorization" || lower == "cookie" ||
			strings.Contains(lower, "token") || strings.Contains(lower, "key") {
			out[name] = "[REDACTED]"
			continue
		}
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}
