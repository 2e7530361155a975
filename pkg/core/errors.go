// Package core holds the shared error taxonomy for the practice engine.
package core

import (
	"errors"
	"fmt"
)

// Error represents a stage-level engine error.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorKind categorizes errors.
type ErrorKind string

const (
	// ErrMicDenied means the user refused microphone access.
	ErrMicDenied ErrorKind = "mic_denied"
	// ErrMicUnavailable means capture could not start for any other reason.
	ErrMicUnavailable ErrorKind = "mic_unavailable"
	// ErrUploadFailed means the turn submission did not complete (network
	// failure or non-2xx response).
	ErrUploadFailed ErrorKind = "upload_failed"
	// ErrPromptUnavailable means a prompt asset never became playable.
	ErrPromptUnavailable ErrorKind = "prompt_unavailable"
	// ErrMalformedResponse means the server response is missing required fields.
	ErrMalformedResponse ErrorKind = "malformed_response"
)

// NewMicDeniedError creates a microphone permission error.
func NewMicDeniedError(cause error) *Error {
	return &Error{
		Kind:    ErrMicDenied,
		Message: "microphone access denied",
		Cause:   cause,
	}
}

// NewMicUnavailableError creates a generic capture failure error.
func NewMicUnavailableError(message string, cause error) *Error {
	return &Error{
		Kind:    ErrMicUnavailable,
		Message: message,
		Cause:   cause,
	}
}

// NewUploadFailedError creates an upload error carrying the server's message.
func NewUploadFailedError(message string, cause error) *Error {
	return &Error{
		Kind:    ErrUploadFailed,
		Message: message,
		Cause:   cause,
	}
}

// NewPromptUnavailableError creates a prompt readiness error.
func NewPromptUnavailableError(message string) *Error {
	return &Error{
		Kind:    ErrPromptUnavailable,
		Message: message,
	}
}

// NewMalformedResponseError creates an error for a response that violates the
// turn contract.
func NewMalformedResponseError(message string) *Error {
	return &Error{
		Kind:    ErrMalformedResponse,
		Message: message,
	}
}

// Retryable reports whether the current target may be retried without further
// user intervention. Malformed responses halt automatic progression; every
// other stage error leaves the retry affordances available.
func (e *Error) Retryable() bool {
	return e.Kind != ErrMalformedResponse
}

// Coerce converts err to *Error, wrapping unknown errors under the given
// fallback kind so the controller always surfaces a classified error.
func Coerce(err error, fallback ErrorKind) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Kind: fallback, Message: err.Error(), Cause: err}
}
