package services

import (
	"errors"
	"net/http"

	memora_errors "memora/pkg/errors"
)

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, memora_errors.ErrDepthExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, memora_errors.ErrInvalidInput), errors.Is(err, memora_errors.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, memora_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, memora_errors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, memora_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, memora_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, memora_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, memora_errors.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode returns the stable machine-readable code sent to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, memora_errors.ErrDepthExceeded):
		return "DEPTH_EXCEEDED"
	case errors.Is(err, memora_errors.ErrInvalidInput):
		return "INVALID_REQUEST"
	case errors.Is(err, memora_errors.ErrInvalidOperation):
		return "INVALID_OPERATION"
	case errors.Is(err, memora_errors.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, memora_errors.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, memora_errors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, memora_errors.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, memora_errors.ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, memora_errors.ErrTransient):
		return "TRANSIENT"
	default:
		return "INTERNAL"
	}
}

// PublicMessage hides internal error detail for server-side failures.
func PublicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusServiceUnavailable:
		return "storage temporarily unavailable, retry the request"
	default:
		return err.Error()
	}
}
