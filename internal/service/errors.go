package service

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy shared by every handler. Specific errors wrap one of these so
// callers can branch with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRateLimited     = errors.New("rate limited")
	ErrUpstream        = errors.New("upstream failure")
	ErrNotFound        = errors.New("not found")
)

var (
	ErrInvalidCredentials   = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	ErrInvalidAdminPassword = fmt.Errorf("%w: invalid admin password", ErrUnauthenticated)

	ErrDeletionFieldsRequired = fmt.Errorf("%w: user id and admin password are required", ErrInvalidInput)
	ErrSelfDeletion           = fmt.Errorf("%w: cannot delete own account", ErrInvalidInput)
	ErrAdminTarget            = fmt.Errorf("%w: target holds the admin role", ErrForbidden)
	ErrRoleLookup             = fmt.Errorf("%w: role lookup failed", ErrUpstream)
	ErrDeleteFailed           = fmt.Errorf("%w: delete user", ErrUpstream)

	ErrEmailMismatch           = fmt.Errorf("%w: email mismatch", ErrForbidden)
	ErrStatusFieldsRequired    = fmt.Errorf("%w: missing required fields: bookId, bookTitle, status, userId", ErrInvalidInput)
	ErrInvalidBookStatus       = fmt.Errorf("%w: status must be approved or rejected", ErrInvalidInput)
	ErrContactNotFound         = fmt.Errorf("%w: contact email", ErrNotFound)
	ErrBookNotFound            = fmt.Errorf("%w: book", ErrNotFound)
	ErrEmailDelivery           = fmt.Errorf("%w: email delivery", ErrUpstream)
	ErrUnsupportedEmailAddress = fmt.Errorf("%w: recipient email is required", ErrInvalidInput)
)

// RateLimitedError is returned when a policy denies the call. It matches
// ErrRateLimited.
type RateLimitedError struct {
	Operation  string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %s", e.Operation, e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }
