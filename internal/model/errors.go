package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCredentialRequired means the generation provider rejected the call
	// because no billable API credential is selected. Callers should prompt
	// for a credential and retry.
	ErrCredentialRequired = errors.New("api credential required")

	// ErrGenerationTimeout means a long-running generation was still pending
	// after the last allowed poll. It is retryable.
	ErrGenerationTimeout = errors.New("generation took too long")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the requester may not perform an action.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError lists the fields of a submission that failed validation.
type ValidationError struct {
	Fields map[string]string // field name -> message
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %d field(s) rejected", len(e.Fields))
}

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
