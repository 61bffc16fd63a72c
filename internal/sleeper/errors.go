package sleeper

import (
	"errors"
	"fmt"
)

// UpstreamError is returned when the Sleeper API is unreachable or answers
// with a non-200 status. It is never retried.
type UpstreamError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sleeper %s: %v", e.URL, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("sleeper %s: status %d body=%q", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("sleeper %s: status %d", e.URL, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// AsUpstreamError unwraps err into an UpstreamError.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
