package geocode

import (
	"errors"
	"fmt"

	"github.com/sells-group/storegeo/internal/resilience"
)

// Reason classifies why a lookup produced no coordinate.
type Reason string

// Lookup failure reasons.
const (
	ReasonNoResult  Reason = "no_result"
	ReasonTransport Reason = "transport"
	ReasonStatus    Reason = "status"
	ReasonDecode    Reason = "decode"
	ReasonInvalid   Reason = "invalid"
	ReasonUnknown   Reason = "unknown"
)

// LookupError is the failure side of a geocode attempt.
type LookupError struct {
	Provider   string
	Query      string
	Reason     Reason
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("geocode: %s %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("geocode: %s %s: %v", e.Provider, e.Reason, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Transient reports whether repeating the same query later may succeed.
func (e *LookupError) Transient() bool {
	switch e.Reason {
	case ReasonTransport:
		return true
	case ReasonStatus:
		return resilience.IsTransientHTTPStatus(e.StatusCode)
	default:
		return false
	}
}

// ReasonOf extracts the failure reason from err, or ReasonUnknown when err
// is not a *LookupError.
func ReasonOf(err error) Reason {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Reason
	}
	return ReasonUnknown
}

// IsTransient reports whether err is a retryable lookup failure.
func IsTransient(err error) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Transient()
	}
	return false
}
