package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// NetworkError reports a transport-level failure: DNS, refused connection,
// timeout or caller cancellation. It is retryable.
type NetworkError struct {
	URL   string
	Cause error
}

// Error implements error.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("membox: network error: %s: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *NetworkError) Unwrap() error { return e.Cause }

// HTTPError reports a non-2xx response not otherwise classified. It is
// retryable (5xx typical); callers inspecting StatusCode decide for
// themselves whether a 4xx is worth retrying before the scheduler does.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
	Body       []byte
}

// Error implements error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("membox: http %d: %s: %s", e.StatusCode, e.Message, e.URL)
}

// AuthorizationError reports a 401 or 403 response. It is never retried.
type AuthorizationError struct {
	StatusCode int
	Reason     string
	URL        string
}

// Error implements error.
func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("membox: authorization failed (%d): %s: %s", e.StatusCode, e.Reason, e.URL)
}

// RateLimitError reports a 429 response. RetryAfter carries the parsed
// Retry-After hint; RetryAfterSet distinguishes a zero hint ("Retry-After: 0")
// from an absent or unparseable header.
type RateLimitError struct {
	URL           string
	RetryAfter    time.Duration
	RetryAfterSet bool
}

// Error implements error.
func (e *RateLimitError) Error() string {
	if e.RetryAfterSet {
		return fmt.Sprintf("membox: rate limited (retry after %s): %s", e.RetryAfter, e.URL)
	}
	return fmt.Sprintf("membox: rate limited: %s", e.URL)
}

// RequestError reports a local failure building or serializing a request, or
// decoding a successful response body. It is never retried.
type RequestError struct {
	Cause   error
	Details string
}

// Error implements error.
func (e *RequestError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("membox: request error: %s: %v", e.Details, e.Cause)
	}
	return fmt.Sprintf("membox: request error: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error { return e.Cause }

// Retryable reports whether err is one of the transient variants the retry
// scheduler may replay: NetworkError, HTTPError or RateLimitError.
func Retryable(err error) bool {
	var (
		ne  *NetworkError
		he  *HTTPError
		rle *RateLimitError
	)
	return errors.As(err, &ne) || errors.As(err, &he) || errors.As(err, &rle)
}

// translate classifies a non-2xx response into exactly one error variant.
// Evaluated in priority order: 401/403, then 429, then everything >= 400.
func (c *Client) translate(status int, header http.Header, body []byte, url string) error {
	statusText := http.StatusText(status)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthorizationError{
			StatusCode: status,
			Reason:     "Unauthorized: " + statusText,
			URL:        url,
		}
	case status == http.StatusTooManyRequests:
		e := &RateLimitError{URL: url}
		if d, ok := parseRetryAfter(header.Get("Retry-After"), time.Now()); ok {
			e.RetryAfter = d
			e.RetryAfterSet = true
		}
		return e
	default:
		return &HTTPError{
			StatusCode: status,
			Message:    c.errorMessage(statusText, body),
			URL:        url,
			Body:       body,
		}
	}
}

// errorMessage extracts a human readable message from a JSON error body,
// checking the conventional "error" / "error.message" / "message" fields.
// Malformed bodies never mask the real HTTP failure: the status text is used
// instead. An extracted empty string also falls back to the status text
// unless the client was built with WithVerbatimErrorMessages.
func (c *Client) errorMessage(statusText string, body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return statusText
	}
	for _, field := range []string{"error", "error.message", "message"} {
		r := gjson.GetBytes(body, field)
		if r.Type != gjson.String {
			continue
		}
		if r.Str == "" && !c.verbatimMessages {
			return statusText
		}
		return r.Str
	}
	return statusText
}

// parseRetryAfter interprets a Retry-After header value per RFC 7231: an
// all-digit value is delta-seconds; anything else is tried as an HTTP date
// and clamped at zero. Absent, empty or unparseable values (including
// negative delta-seconds, which fail the all-digit check) yield no hint
// rather than an error.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if isDigits(v) {
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// asNetworkError wraps a transport-level failure, normalizing context
// cancellation and deadline expiry to a stable cause so callers can log a
// single message for both.
func asNetworkError(url string, err error) *NetworkError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &NetworkError{URL: url, Cause: errors.New("timed out or aborted")}
	}
	return &NetworkError{URL: url, Cause: err}
}
