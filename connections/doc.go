// Package connections wraps the /v1/connections resource: attaching,
// listing and detaching external data-source providers for a namespace.
package connections
