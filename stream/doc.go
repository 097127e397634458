// Package stream decodes NDJSON (newline-delimited JSON) response bodies into
// a lazy, finite, non-restartable sequence of typed records.
//
// The decoder is pull-based: the underlying reader only advances when the
// consumer calls Next, so backpressure is determined entirely by consumption
// speed. A consumer that stops early must call Close, which releases the
// underlying reader exactly once; abandoning a stream without closing it
// leaks the connection.
package stream
