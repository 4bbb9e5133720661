package apperr

import "errors"

// Recoverable business errors shared by services and handlers.
// Handlers map these to HTTP status codes; anything else is a 500.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrSameProduct       = errors.New("source and target product must differ")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("request is not pending")
	ErrNotAuthorized     = errors.New("admin role required")
	ErrValidation        = errors.New("validation failed")
)

// StatusCode returns the HTTP status for a known business error, 500 otherwise.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrSameProduct), errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrInsufficientStock):
		return 422
	case errors.Is(err, ErrInvalidState):
		return 409
	case errors.Is(err, ErrNotAuthorized):
		return 403
	}
	return 500
}
