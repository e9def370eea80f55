package graph

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/service"
)

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeUpstreamFailure = "UPSTREAM_FAILURE"
	CodeInternal        = "INTERNAL"
)

// Error is what clients see: a readable message plus extensions.code.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

var errBadCredentials = &Error{Message: "Invalid email or password!", Code: CodeUnauthenticated}

// publicError maps service errors to client errors. Anything unrecognised is
// logged and reported as a bare internal error.
func publicError(ctx context.Context, op string, err error) error {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, service.ErrNotAuthenticated):
		e = &Error{"You must be logged in!", CodeUnauthenticated}
	case errors.Is(err, service.ErrForbidden):
		e = &Error{"You don't have permission to do that!", CodeForbidden}
	case errors.Is(err, service.ErrNoSuchUser):
		e = &Error{"No such user found for that email", CodeNotFound}
	case errors.Is(err, service.ErrNotFound):
		e = &Error{"Not found", CodeNotFound}
	case errors.Is(err, service.ErrPasswordMismatch):
		e = &Error{"Your passwords don't match!", CodeBadUserInput}
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		e = &Error{"This token is either invalid or expired!", CodeBadUserInput}
	case errors.Is(err, service.ErrEmailTaken):
		e = &Error{"That email is already registered", CodeBadUserInput}
	case errors.Is(err, service.ErrValidation):
		e = &Error{err.Error(), CodeBadUserInput}
	case errors.Is(err, payment.ErrDeclined):
		e = &Error{"Your card was declined", CodeUpstreamFailure}
	case errors.Is(err, service.ErrUpstream):
		e = &Error{"An upstream service failed, please try again", CodeUpstreamFailure}
	default:
		logging.FromContext(ctx).Error("graphql_internal_error", "op", op, "error", err)
		return &Error{"Internal server error", CodeInternal}
	}
	logging.FromContext(ctx).Warn("graphql_operation_failed", "op", op, "code", e.Code, "error", err)
	return e
}
