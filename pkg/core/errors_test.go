package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{
		Kind:    ErrUploadFailed,
		Message: "turn submission rejected",
	}

	expected := "upload_failed: turn submission rejected"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestError_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUploadFailedError("submit turn", cause)

	expected := "upload_failed: submit turn: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestNewMicDeniedError(t *testing.T) {
	err := NewMicDeniedError(nil)
	if err.Kind != ErrMicDenied {
		t.Errorf("Kind = %v, want %v", err.Kind, ErrMicDenied)
	}
}

func TestError_Retryable(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{ErrMicDenied, true},
		{ErrMicUnavailable, true},
		{ErrUploadFailed, true},
		{ErrPromptUnavailable, true},
		{ErrMalformedResponse, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := &Error{Kind: tt.kind, Message: "test"}
			if got := err.Retryable(); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoerce_PassesThroughTypedErrors(t *testing.T) {
	orig := NewMalformedResponseError("missing next_target")
	wrapped := fmt.Errorf("interpret turn: %w", orig)

	got := Coerce(wrapped, ErrUploadFailed)
	if got != orig {
		t.Errorf("Coerce should unwrap to the original typed error, got %v", got)
	}
}

func TestCoerce_WrapsUnknownErrors(t *testing.T) {
	plain := errors.New("boom")
	got := Coerce(plain, ErrMicUnavailable)

	if got.Kind != ErrMicUnavailable {
		t.Errorf("Kind = %v, want %v", got.Kind, ErrMicUnavailable)
	}
	if !errors.Is(got, plain) {
		t.Error("coerced error should wrap the original")
	}
}
