// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when scripting transport round trips (canned JSON and
// NDJSON responses, failure injection, close-counting readers). These helpers
// are intentionally minimal and avoid adding third-party dependencies. They
// are not intended for production usage.
package testutil
