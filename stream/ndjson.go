package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// DecodeError reports a complete line that failed to parse as JSON. Raw
// carries the offending text verbatim; a dropped record would silently
// corrupt the logical stream, so mid-stream decoding never skips and
// continues. An unterminated tail at end of input is a different situation —
// see Decoder.Discarded.
type DecodeError struct {
	Raw   string
	Cause error
}

// Error implements error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("stream: malformed record %q: %v", e.Raw, e.Cause)
}

// Unwrap returns the underlying JSON error.
func (e *DecodeError) Unwrap() error { return e.Cause }

// Decoder turns a byte stream into typed NDJSON records, one per Next call.
// It is not safe for concurrent use. After Next returns io.EOF or any other
// error the decoder is terminal and the underlying reader has been released.
type Decoder[T any] struct {
	r         *bufio.Reader
	rc        io.ReadCloser
	err       error  // sticky terminal state
	done      bool   // final record emitted, next call finishes
	discarded string // unterminated tail salvaged away at end of input

	closeOnce sync.Once
	closeErr  error
}

// NewDecoder wraps rc. The decoder owns rc: it closes it when the stream
// finishes, fails, or the consumer calls Close early.
func NewDecoder[T any](rc io.ReadCloser) *Decoder[T] {
	return &Decoder[T]{r: bufio.NewReaderSize(rc, 32*1024), rc: rc}
}

// Next returns the next decoded record. It returns io.EOF on clean end of
// input and a *DecodeError (or the upstream read error wrapped) on failure;
// both are terminal and release the reader.
func (d *Decoder[T]) Next() (T, error) {
	var zero T
	if d.err != nil {
		return zero, d.err
	}
	if d.done {
		return zero, d.finish()
	}

	for {
		line, rerr := d.r.ReadBytes('\n')
		if rerr != nil && rerr != io.EOF {
			d.err = fmt.Errorf("stream: reading body: %w", rerr)
			_ = d.Close()
			return zero, d.err
		}
		atEOF := rerr == io.EOF

		line = bytes.TrimRight(line, "\r\n")
		if len(bytes.TrimSpace(line)) == 0 {
			// Blank lines are skipped silently; a blank tail at EOF means
			// there is nothing left to flush.
			if atEOF {
				return zero, d.finish()
			}
			continue
		}

		var v T
		if uerr := json.Unmarshal(line, &v); uerr != nil {
			if atEOF {
				// The line never got its terminator: the stream was cut
				// mid-record. The truncated tail is salvaged away rather
				// than reported as corruption; only complete lines count.
				d.discarded = string(line)
				return zero, d.finish()
			}
			d.err = &DecodeError{Raw: string(line), Cause: uerr}
			_ = d.Close()
			return zero, d.err
		}
		if atEOF {
			// The buffer is flushed exactly once: this record is emitted now
			// and the next call reports clean end of input.
			d.done = true
		}
		return v, nil
	}
}

// Discarded returns the raw unterminated tail dropped at end of input, empty
// when the stream ended cleanly. Callers that treat truncation as an error
// can check it after draining.
func (d *Decoder[T]) Discarded() string { return d.discarded }

func (d *Decoder[T]) finish() error {
	d.err = io.EOF
	_ = d.Close()
	return io.EOF
}

// Close releases the underlying reader. It is idempotent and safe to call
// from a consumer that abandons the stream before exhaustion; the reader's
// own Close is invoked exactly once.
func (d *Decoder[T]) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.rc.Close()
	})
	return d.closeErr
}

// Collect drains the decoder into a slice. On failure the records decoded so
// far are returned alongside the error. The reader is always released.
func Collect[T any](d *Decoder[T]) ([]T, error) {
	defer d.Close()
	var out []T
	for {
		v, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}
