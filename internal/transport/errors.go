package transport

import (
	"errors"
	"fmt"
)

// RequestError describes a failed upstream request after all retry
// attempts were spent. StatusCode is zero when the failure was a
// network or timeout error rather than an HTTP response.
type RequestError struct {
	URL        string
	StatusCode int
	Attempts   int
	Timeout    bool
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("request to %s timed out after %d attempts", e.URL, e.Attempts)
	case e.StatusCode != 0:
		return fmt.Sprintf("request to %s failed with status %d after %d attempts", e.URL, e.StatusCode, e.Attempts)
	default:
		return fmt.Sprintf("request to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is a RequestError carrying the given
// HTTP status code.
func IsStatus(err error, code int) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == code
	}
	return false
}
