package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestPoolPreservesInputOrder(t *testing.T) {
	pool := NewPool[int, int](4, func(ctx context.Context, n int) (int, error) {
		return n * n, nil
	})

	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}
	results := pool.Execute(context.Background(), inputs)

	if len(results) != len(inputs) {
		t.Fatalf("got %d results, want %d", len(results), len(inputs))
	}
	for i, task := range results {
		if task.Err != nil {
			t.Errorf("task %d failed: %v", i, task.Err)
		}
		if task.Input != inputs[i] {
			t.Errorf("task %d input = %d, want %d", i, task.Input, inputs[i])
		}
		if task.Result != inputs[i]*inputs[i] {
			t.Errorf("task %d result = %d, want %d", i, task.Result, inputs[i]*inputs[i])
		}
	}
}

func TestPoolCapturesErrors(t *testing.T) {
	boom := errors.New("boom")
	pool := NewPool[int, string](2, func(ctx context.Context, n int) (string, error) {
		if n%2 == 0 {
			return "", fmt.Errorf("process %d: %w", n, boom)
		}
		return fmt.Sprint(n), nil
	})

	results := pool.Execute(context.Background(), []int{1, 2, 3, 4})

	for _, task := range results {
		if task.Input%2 == 0 {
			if !errors.Is(task.Err, boom) {
				t.Errorf("input %d err = %v, want boom", task.Input, task.Err)
			}
		} else if task.Err != nil {
			t.Errorf("input %d unexpected err: %v", task.Input, task.Err)
		}
	}
}

func TestPoolMinimumWorkers(t *testing.T) {
	pool := NewPool[int, int](0, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})

	results := pool.Execute(context.Background(), []int{42})
	if len(results) != 1 || results[0].Result != 42 {
		t.Errorf("results = %+v", results)
	}
}

func TestPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool[int, int](2, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})

	// Cancellation stops dispatch; no result slot is guaranteed to be filled,
	// but Execute must return without hanging.
	results := pool.Execute(ctx, []int{1, 2, 3})
	if len(results) != 3 {
		t.Fatalf("got %d result slots, want 3", len(results))
	}
}
