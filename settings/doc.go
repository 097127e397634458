// Package settings wraps the /v1/settings resource. Updates are partial: the
// patch body carries only the fields the caller actually set, so concurrent
// updaters of different fields do not clobber each other.
package settings
