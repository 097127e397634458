// Package transport implements the typed HTTP client substrate every membox
// resource service is built on: request construction, execution through an
// injectable transport function with timeout and cancellation, classification
// of failures into a closed set of error variants, and a bounded retry
// scheduler that honors server Retry-After hints.
//
// All failures surface as exactly one of *NetworkError, *HTTPError,
// *AuthorizationError, *RateLimitError or *RequestError; callers branch with
// errors.As rather than string matching. NetworkError, HTTPError and
// RateLimitError are retryable; the other two fail immediately.
package transport
