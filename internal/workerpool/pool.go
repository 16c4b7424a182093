// Package workerpool implements the bounded-concurrency pool every
// multi-repo stage (scan, bundle) runs items through (spec §4.1, §5).
package workerpool

import (
	"context"
	"sync/atomic"
)

// DefaultConcurrency is used when a caller passes a non-positive value.
const DefaultConcurrency = 4

// MaxConcurrency caps the clamp range from spec §4.1.
const MaxConcurrency = 32

// Worker processes one item at its original index and returns a result.
type Worker[T any, R any] func(ctx context.Context, item T, index int) R

// Run dispatches items across clamp(concurrency, 1, 32) goroutines (a
// non-positive concurrency uses DefaultConcurrency instead). A
// shared cursor is advanced atomically so each goroutine pulls the next
// unclaimed item; completion order is nondeterministic but results are
// written back by original index, so the returned slice is always in
// input order regardless of which goroutine finished first.
//
// ctx is checked before claiming each item so long scans stay responsive
// to external cancellation between items (spec §5 "suspension points").
func Run[T any, R any](ctx context.Context, items []T, concurrency int, worker Worker[T, R]) []R {
	n := len(items)
	results := make([]R, n)
	if n == 0 {
		return results
	}

	concurrency = clamp(concurrency)
	if concurrency > n {
		concurrency = n
	}

	var cursor int64
	done := make(chan struct{}, concurrency)
	for w := 0; w < concurrency; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for {
				if ctx.Err() != nil {
					return
				}
				idx := int(atomic.AddInt64(&cursor, 1)) - 1
				if idx >= n {
					return
				}
				results[idx] = worker(ctx, items[idx], idx)
			}
		}()
	}
	for w := 0; w < concurrency; w++ {
		<-done
	}
	return results
}

func clamp(concurrency int) int {
	if concurrency <= 0 {
		return DefaultConcurrency
	}
	if concurrency > MaxConcurrency {
		return MaxConcurrency
	}
	return concurrency
}
