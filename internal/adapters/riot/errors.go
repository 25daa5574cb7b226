package riot

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an upstream failure so callers can decide whether to
// degrade, skip, or surface it.
type Kind string

// Failure kinds.
const (
	KindNotFound    Kind = "not_found"
	KindRateLimited Kind = "rate_limited"
	KindTransient   Kind = "transient"
	KindMalformed   Kind = "malformed_response"
	KindClient      Kind = "client"
)

// Sentinel errors for errors.Is checks.
var (
	ErrNotFound    = errors.New("upstream resource not found")
	ErrNoAPIKey    = errors.New("riot api key not configured")
	ErrSlotAborted = errors.New("rate limit wait aborted")
)

// APIError is a classified upstream failure.
type APIError struct {
	Kind     Kind
	Endpoint string
	Status   int
	// RetryAfter is the upstream-advised wait before the next attempt,
	// zero when the response carried no advice.
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("riot %s: %s (status %d): %v", e.Endpoint, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("riot %s: %s: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNotFound) work on classified errors.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
