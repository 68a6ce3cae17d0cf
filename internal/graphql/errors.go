package graphql

import (
	"errors"
	"log/slog"

	"github.com/JaimeStill/veranstalter/internal/veranstalter"
	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/validation"
)

// Error codes reported in extensions.code.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeVersionInvalid  = "VERSION_INVALID"
	CodeVersionOutdated = "VERSION_OUTDATED"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternal        = "INTERNAL"
)

var errInternal = errors.New("internal server error")

// Error is a resolver error carrying a machine-readable code.
type Error struct {
	Code     string
	Err      error
	Messages []string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions is read by graphql-go when rendering the error.
func (e *Error) Extensions() map[string]any {
	ext := map[string]any{"code": e.Code}
	if len(e.Messages) > 0 {
		ext["messages"] = e.Messages
	}
	return ext
}

// Code maps a domain error to its GraphQL error code.
func Code(err error) string {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return CodeUnauthenticated
	case errors.Is(err, auth.ErrForbidden):
		return CodeForbidden
	case errors.Is(err, veranstalter.ErrNotFound), errors.Is(err, veranstalter.ErrInvalidSearch):
		return CodeNotFound
	case errors.Is(err, veranstalter.ErrValidation):
		return CodeBadUserInput
	case errors.Is(err, veranstalter.ErrVersionInvalid):
		return CodeVersionInvalid
	case errors.Is(err, veranstalter.ErrVersionOutdated):
		return CodeVersionOutdated
	default:
		return CodeInternal
	}
}

// wrap converts err into an *Error. Internal failures are logged and masked.
func wrap(logger *slog.Logger, err error) error {
	code := Code(err)
	if code == CodeInternal {
		logger.Error("resolver failed", "error", err)
		return &Error{Code: code, Err: errInternal}
	}

	logger.Debug("resolver rejected", "code", code, "error", err)

	out := &Error{Code: code, Err: err}
	var verr *validation.Error
	if errors.As(err, &verr) {
		out.Messages = verr.Messages()
	}
	return out
}
