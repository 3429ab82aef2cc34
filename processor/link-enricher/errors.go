package linkenricher

import (
	"errors"
	"fmt"
)

// Fetch failure classes.
var (
	// ErrRedirectLimitExceeded is returned when a page redirects more often
	// than the configured limit allows.
	ErrRedirectLimitExceeded = errors.New("redirect limit exceeded")

	// ErrContentTooLarge is returned when a body exceeds MaxContentSize.
	ErrContentTooLarge = errors.New("content too large")
)

// NetworkError wraps a transport-level failure: DNS, connect, TLS, timeout,
// connection reset, or an unreadable body.
type NetworkError struct {
	URL string
	err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.err)
}

func (e *NetworkError) Unwrap() error {
	return e.err
}

// NewNetworkError wraps err as a network failure for url.
func NewNetworkError(url string, err error) error {
	return &NetworkError{URL: url, err: err}
}

// IsNetworkError returns true if err is, or wraps, a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsRedirectLimit returns true if err reports an exceeded redirect limit.
func IsRedirectLimit(err error) bool {
	return errors.Is(err, ErrRedirectLimitExceeded)
}
