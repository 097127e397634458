package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Operation is one keyed unit of work.
type Operation[T any] struct {
	Key string
	Run func(ctx context.Context) (T, error)
}

// Outcome is the result of one operation: Value on success, Err on failure.
type Outcome[T any] struct {
	Key   string
	Value T
	Err   error
}

// Failure pairs a key with the error that felled it.
type Failure struct {
	Key string
	Err error
}

// Result aggregates a whole batch. Outcomes preserves input order and always
// holds one entry per input operation.
type Result[T any] struct {
	CorrelationID string
	Outcomes      []Outcome[T]
	Failures      []Failure
	Successes     int
}

// OK reports whether every operation succeeded.
func (r *Result[T]) OK() bool { return len(r.Failures) == 0 }

// Value returns the success value for key. The second return is false when
// the key failed or was never part of the batch.
func (r *Result[T]) Value(key string) (T, bool) {
	for _, o := range r.Outcomes {
		if o.Key == key && o.Err == nil {
			return o.Value, true
		}
	}
	var zero T
	return zero, false
}

// Config tunes a batch run.
type Config struct {
	// MaxParallel bounds concurrent operations. 0 or less means no explicit
	// limit (all operations in flight at once).
	MaxParallel int

	// CorrelationID ties the batch's log lines together. Generated (uuid)
	// when empty.
	CorrelationID string
}

// WithMaxParallel bounds concurrency.
func WithMaxParallel(n int) func(*Config) {
	return func(c *Config) { c.MaxParallel = n }
}

// WithCorrelationID pins the batch correlation id instead of generating one.
func WithCorrelationID(id string) func(*Config) {
	return func(c *Config) { c.CorrelationID = id }
}

// Run executes all operations, soft-failing per item. Operations not started
// because ctx was already cancelled still get an outcome carrying the context
// error, so no key is ever lost. A panicking operation is recovered and
// recorded as that item's failure.
func Run[T any](ctx context.Context, ops []Operation[T], optFns ...func(*Config)) *Result[T] {
	cfg := Config{}
	for _, fn := range optFns {
		fn(&cfg)
	}
	if cfg.CorrelationID == "" {
		cfg.CorrelationID = uuid.NewString()
	}

	n := len(ops)
	result := &Result[T]{CorrelationID: cfg.CorrelationID}
	if n == 0 {
		return result
	}

	maxPar := cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	outcomes := make([]Outcome[T], n)
	sem := make(chan struct{}, maxPar)
	var wg sync.WaitGroup

	for i := range ops {
		op := ops[i]
		outcomes[i].Key = op.Key

		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, op Operation[T]) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				outcomes[idx].Err = err
				return
			}

			func() { // panic safety
				defer func() {
					if r := recover(); r != nil {
						outcomes[idx].Err = fmt.Errorf("batch: operation %q panicked: %v", op.Key, r)
					}
				}()
				outcomes[idx].Value, outcomes[idx].Err = op.Run(ctx)
			}()
		}(i, op)
	}
	wg.Wait()

	result.Outcomes = outcomes
	for _, o := range outcomes {
		if o.Err != nil {
			result.Failures = append(result.Failures, Failure{Key: o.Key, Err: o.Err})
		} else {
			result.Successes++
		}
	}
	return result
}
