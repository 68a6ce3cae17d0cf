package veranstalter

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/validation"
)

// Domain errors for organizer operations.
var (
	ErrNotFound             = errors.New("veranstalter not found")
	ErrInvalidSearch        = errors.New("invalid search parameters")
	ErrValidation           = validation.ErrInvalid
	ErrVersionInvalid       = errors.New("invalid version number")
	ErrVersionOutdated      = errors.New("version number is outdated")
	ErrInvalidMimeType      = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum upload size")
	ErrInvalidFile          = errors.New("invalid file")
	ErrNotAcceptable        = errors.New("not acceptable")
	ErrPreconditionRequired = errors.New(`Header "If-Match" fehlt`)
	ErrDuplicate            = errors.New("veranstalter already exists")
)

// MapHTTPStatus maps organizer domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidSearch):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidMimeType),
		errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrVersionInvalid), errors.Is(err, ErrVersionOutdated):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrPreconditionRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNotAcceptable):
		return http.StatusNotAcceptable
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
