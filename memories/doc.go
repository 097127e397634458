// Package memories wraps the /v1/memories resource: keyed put/get/delete,
// streaming key listings, and batch variants with per-item outcomes. The
// package is a declarative endpoint mapper; all transport concerns (retries,
// timeouts, error classification) live in the transport core.
package memories
