package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ErrBlocked means the body matched the block/CAPTCHA heuristic even
// though the request may have returned 200; the content, not the status
// code, signals failure.
var ErrBlocked = errors.New("fetch: blocked page detected")

// BadStatusError covers retryable HTTP statuses (403, 429, 5xx).
type BadStatusError struct {
	Code int
	URL  string
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("fetch: status %d for %s", e.Code, e.URL)
}

// Retryable reports whether the external retry mechanism should get
// another attempt at the task: network failures, retryable statuses and
// detected blocks. Anything else (malformed payloads in particular) is
// dropped by the caller instead.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var bs *BadStatusError
	return errors.Is(err, ErrBlocked) || errors.As(err, &bs) || isNetworkError(err)
}

func retryableStatus(code int) bool {
	return code == 403 || code == 429 || code >= 500
}

// isNetworkError covers dial/read/timeout failures wrapped by the HTTP
// client; those always warrant another attempt.
func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
