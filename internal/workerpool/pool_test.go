package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunPreservesOrderDespiteNondeterministicCompletion(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	results := Run(context.Background(), items, 4, func(_ context.Context, item int, index int) int {
		if index%2 == 0 {
			time.Sleep(2 * time.Millisecond)
		}
		return item * 10
	})
	for i, v := range results {
		if v != i*10 {
			t.Fatalf("results[%d] = %d, want %d", i, v, i*10)
		}
	}
}

func TestRunClampsConcurrency(t *testing.T) {
	items := make([]int, 5)
	_ = Run(context.Background(), items, 999, func(_ context.Context, item int, index int) int { return item })
	_ = Run(context.Background(), items, -1, func(_ context.Context, item int, index int) int { return item })
	_ = Run(context.Background(), items, 0, func(_ context.Context, item int, index int) int { return item })
}

func TestRunEmptyItems(t *testing.T) {
	results := Run[int, int](context.Background(), nil, 4, func(_ context.Context, item int, index int) int { return item })
	if len(results) != 0 {
		t.Fatalf("expected empty result slice, got %v", results)
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items := []int{1, 2, 3}
	var calls int32
	_ = Run(ctx, items, 2, func(_ context.Context, item int, index int) int {
		atomic.AddInt32(&calls, 1)
		return item
	})
	if calls == int32(len(items)) {
		t.Fatalf("expected cancellation to short-circuit at least some work")
	}
}
