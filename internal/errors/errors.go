package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the link tracking application

// ErrMissingParameters is returned when a callback request omits required fields
var ErrMissingParameters = errors.New("missing parameters")

// ErrInvalidURL is returned when a submitted URL fails validation
var ErrInvalidURL = errors.New("invalid URL format")

// ErrBotTokenMissing is returned when no bot credential is configured
var ErrBotTokenMissing = errors.New("bot token is required")

// DecodeError is returned when an identifier or URL token cannot be decoded.
// It wraps the underlying parse error so callers can inspect the cause.
type DecodeError struct {
	Token  string
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode token %q: %s", e.Token, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// IsDecodeError reports whether err is a token decode failure.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// ShortenError is returned when the external shortening service fails.
// Composition never propagates it; it is logged and the long link is kept.
type ShortenError struct {
	URL    string
	Reason string
}

func (e *ShortenError) Error() string {
	return fmt.Sprintf("failed to shorten %s: %s", e.URL, e.Reason)
}
