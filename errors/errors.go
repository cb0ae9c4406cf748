package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/tripweave/tripweave-backend/logger"
)

type ErrorType string

const (
	ValidationError       ErrorType = "VALIDATION_ERROR"
	NotFoundError         ErrorType = "NOT_FOUND"
	DatabaseError         ErrorType = "DATABASE_ERROR"
	ServerError           ErrorType = "SERVER_ERROR"
	TripNotFoundError     ErrorType = "TRIP_NOT_FOUND"
	TripNotSubmittedError ErrorType = "TRIP_NOT_SUBMITTED"
	PersistenceError      ErrorType = "PERSISTENCE_ERROR"
	ConflictError         ErrorType = "CONFLICT"
	RateLimitError        ErrorType = "RATE_LIMIT_EXCEEDED"
	UnsupportedMediaError ErrorType = "UNSUPPORTED_MEDIA"
	PayloadTooLargeError  ErrorType = "PAYLOAD_TOO_LARGE"
	UpstreamError         ErrorType = "UPSTREAM_ERROR"
)

// AppError is the error shape every handler understands.
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// New creates an AppError whose status is derived from its type.
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap attaches AppError context to a raw error. A nil err stays nil.
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func TripNotFound(id string) *AppError {
	return &AppError{
		Type:       TripNotFoundError,
		Message:    "Trip not found",
		Detail:     fmt.Sprintf("Trip ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

// TripNotSubmitted is returned by routes that stay closed until the trip
// metadata has been saved at least once.
func TripNotSubmitted(id string) *AppError {
	return &AppError{
		Type:       TripNotSubmittedError,
		Message:    "Trip details must be saved first",
		Detail:     fmt.Sprintf("Trip ID: %s", id),
		HTTPStatus: http.StatusConflict,
	}
}

func NewConflictError(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

// PersistenceFailed reports a failed snapshot encode or store write. The raw
// error is logged and kept for errors.Is checks but not shown to clients.
func PersistenceFailed(err error) *AppError {
	logger.GetLogger().Errorw("Trip persistence failed", "error", err)
	return &AppError{
		Type:       PersistenceError,
		Message:    "Failed to save trip",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func NewDatabaseError(err error) *AppError {
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// StatusFor resolves the HTTP status for any error, falling back to 500.
func StatusFor(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if appErr.HTTPStatus != 0 {
			return appErr.HTTPStatus
		}
		return getHTTPStatus(appErr.Type)
	}
	return http.StatusInternalServerError
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError, TripNotFoundError:
		return http.StatusNotFound
	case TripNotSubmittedError, ConflictError:
		return http.StatusConflict
	case RateLimitError:
		return http.StatusTooManyRequests
	case UnsupportedMediaError:
		return http.StatusUnsupportedMediaType
	case PayloadTooLargeError:
		return http.StatusRequestEntityTooLarge
	case UpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
