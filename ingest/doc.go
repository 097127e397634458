// Package ingest wraps the /v1/ingest resource: submitting documents and URLs
// for asynchronous processing into memories, and polling their status.
package ingest
