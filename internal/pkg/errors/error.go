package xerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common reusable application errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthorized    = errors.New("unauthorized access")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict: resource already exists")
	ErrInternal        = errors.New("internal server error")
	ErrRateLimited     = errors.New("too many requests")
	ErrSessionExpired  = errors.New("session expired or invalid")
	ErrBadRequest      = errors.New("bad request")
	ErrNoSession       = errors.New("no active session")
	ErrLoginInProgress = errors.New("login already in progress")
	ErrTokenMissing    = errors.New("no token in response")
	ErrInvalidToken    = errors.New("invalid token")
	ErrRoleMismatch    = errors.New("token role does not match requested role")
)

// APIError is the single failure kind produced by the backend client.
// Status is 0 when the request never got a response.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is maps well-known statuses onto the sentinel errors so callers can use
// errors.Is without inspecting the status code.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusUnauthorized:
		return target == ErrUnauthorized
	case http.StatusForbidden:
		return target == ErrForbidden
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusConflict:
		return target == ErrConflict
	case http.StatusTooManyRequests:
		return target == ErrRateLimited
	case http.StatusBadRequest:
		return target == ErrBadRequest
	}
	return false
}

// Transport reports whether the request failed before any response arrived.
func (e *APIError) Transport() bool {
	return e.Status == 0
}

// NewAPIError builds an APIError for op.
func NewAPIError(op string, status int, message string, cause error) *APIError {
	return &APIError{Op: op, Status: status, Message: message, Err: cause}
}

// AsAPIError extracts an APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HTTPStatus picks the status a local surface should answer with for err.
func HTTPStatus(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		if apiErr.Transport() || apiErr.Status < 400 {
			return http.StatusBadGateway
		}
		return apiErr.Status
	}
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrLoginInProgress), errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
