// Package batch runs keyed sub-operations with bounded concurrency and
// aggregates per-item success or failure into one typed result. Partial
// failure is a first-class outcome, not an exception path: one item's error
// never aborts its siblings, and every input key maps to exactly one outcome
// in input order regardless of completion order.
package batch
