package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// UpstreamErrorMessage is shown in place of a reply when generation fails.
	UpstreamErrorMessage = "Sorry, I'm having trouble generating a response right now. Please try again."
	// TimeoutErrorMessage is shown when generation exceeds its deadline.
	TimeoutErrorMessage = "The coach took too long to answer. Please try again."
	// RateLimitedErrorMessage is shown when the model provider throttles us.
	RateLimitedErrorMessage = "The coach is busy right now. Please wait a moment and try again."
)

// Kind categorises an AppError independently of its HTTP status.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindTimeout     Kind = "timeout"
	KindUpstream    Kind = "upstream"
	KindRateLimited Kind = "rate_limited"
	KindRedis       Kind = "redis"
	KindSystem      Kind = "system"
)

// ErrEmptyMessage rejects a chat turn before any state is touched.
var ErrEmptyMessage = &AppError{
	Kind:    KindValidation,
	Status:  http.StatusBadRequest,
	Message: "Message cannot be empty",
}

// AppError wraps an underlying error with a kind, an HTTP status and a safe message.
type AppError struct {
	Kind    Kind
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(kind Kind, err error, status int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// System wraps an unexpected internal failure.
func System(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(KindSystem, err, http.StatusInternalServerError, SystemErrorMessage)
}

// Is reports whether the target matches the underlying error.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// From extracts an AppError from err, falling back to a system error.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return System(err)
}

// KindOf returns the kind of err, or KindSystem for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}
