package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArtifact indicates the model artifact is malformed.
	ErrInvalidArtifact = errors.New("invalid model artifact")

	// ErrModelUnavailable indicates the remote model server is unreachable.
	ErrModelUnavailable = errors.New("model server unavailable")

	// ErrTimeout indicates a prediction exceeded the configured timeout.
	ErrTimeout = errors.New("prediction request timed out")

	// ErrInvalidResponse indicates the model server replied with something
	// that is not a prediction.
	ErrInvalidResponse = errors.New("invalid model server response")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("prediction retry attempts exhausted")
)

// UnknownCategoryError is returned when a categorical feature holds a value
// the model's encoder never saw during training.
type UnknownCategoryError struct {
	Column string
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for column %s", e.Value, e.Column)
}

// IsUnknownCategory reports whether err wraps an UnknownCategoryError.
func IsUnknownCategory(err error) bool {
	var uce *UnknownCategoryError
	return errors.As(err, &uce)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUnknownCategory(err):
		return "UNKNOWN_CATEGORY"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrModelUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidResponse):
		return "INVALID_RESPONSE"
	case errors.Is(err, ErrInvalidArtifact):
		return "INVALID_ARTIFACT"
	default:
		return "UNKNOWN"
	}
}
