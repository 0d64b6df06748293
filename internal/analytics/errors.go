package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials indicates the service account JSON could not be parsed
var ErrInvalidCredentials = errors.New("invalid service account credentials")

// UpstreamError wraps a failed reporting API call
type UpstreamError struct {
	Cause      error
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("analytics query failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("analytics query failed: %v", e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// IsUpstreamError reports whether err came from the reporting API call
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
