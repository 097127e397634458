package core

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// APIKey is a validated MemBox API key. Construct via NewAPIKey; the zero
// value is unusable. String() renders a redacted form so keys never leak
// through logging or error formatting; use Value() only where the raw key is
// actually sent (the Authorization header).
type APIKey struct {
	raw string
}

// NewAPIKey validates and wraps a raw API key string.
func NewAPIKey(raw string) (APIKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return APIKey{}, fmt.Errorf("api key must not be empty")
	}
	for _, r := range raw {
		if unicode.IsSpace(r) {
			return APIKey{}, fmt.Errorf("api key must not contain whitespace")
		}
	}
	return APIKey{raw: raw}, nil
}

// Value returns the raw key for use in the Authorization header.
func (k APIKey) Value() string { return k.raw }

// IsZero reports whether the key is unset.
func (k APIKey) IsZero() bool { return k.raw == "" }

// String returns a redacted representation safe for logs.
func (k APIKey) String() string {
	if k.raw == "" {
		return "<unset>"
	}
	if len(k.raw) <= 4 {
		return "****"
	}
	return "****" + k.raw[len(k.raw)-4:]
}

// Namespace is a validated memory namespace. Namespaces partition keys on the
// server side; every request carries one.
type Namespace string

// DefaultNamespace is used when the caller does not configure one.
const DefaultNamespace Namespace = "default"

// NewNamespace validates a namespace: 1-64 characters, lowercase letters,
// digits, dash and underscore.
func NewNamespace(s string) (Namespace, error) {
	if len(s) == 0 || len(s) > 64 {
		return "", fmt.Errorf("namespace must be 1-64 characters, got %d", len(s))
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return "", fmt.Errorf("namespace contains invalid character %q", r)
		}
	}
	return Namespace(s), nil
}

// String returns the namespace as a plain string.
func (n Namespace) String() string { return string(n) }

// BaseURL is a validated absolute http(s) endpoint for the MemBox API.
type BaseURL string

// NewBaseURL validates that s is an absolute http or https URL.
func NewBaseURL(s string) (BaseURL, error) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url must be absolute")
	}
	return BaseURL(s), nil
}

// String returns the base URL as a plain string.
func (b BaseURL) String() string { return string(b) }
