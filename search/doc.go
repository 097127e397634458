// Package search wraps the /v1/search resource: ranked semantic queries over
// a namespace, either as one aggregated response or as a lazy NDJSON stream
// of scored matches.
package search
