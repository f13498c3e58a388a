// Package worker runs independent jobs on a bounded number of goroutines.
package worker

import (
	"context"
	"sync"
)

// Func processes one item
type Func[T, R any] func(ctx context.Context, item T) (R, error)

type job[T any] struct {
	index int
	item  T
}

type result[R any] struct {
	index int
	value R
	err   error
}

// Pool applies a Func to items using a fixed number of workers
type Pool[T, R any] struct {
	workers int
	fn      Func[T, R]
}

// NewPool creates a pool with the specified number of workers
func NewPool[T, R any](workers int, fn Func[T, R]) *Pool[T, R] {
	if workers <= 0 {
		workers = 1
	}
	return &Pool[T, R]{workers: workers, fn: fn}
}

// Workers returns the number of workers
func (p *Pool[T, R]) Workers() int {
	return p.workers
}

// Run processes every item and returns the values in item order. The first
// error cancels the jobs not yet started and is returned.
func (p *Pool[T, R]) Run(ctx context.Context, items []T) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(p.workers, len(items))
	jobQueue := make(chan job[T], workers*2)
	results := make(chan result[R], workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobQueue {
				if ctx.Err() != nil {
					results <- result[R]{index: j.index, err: ctx.Err()}
					continue
				}
				v, err := p.fn(ctx, j.item)
				results <- result[R]{index: j.index, value: v, err: err}
			}
		}()
	}

	go func() {
		defer close(jobQueue)
		for i, item := range items {
			select {
			case <-ctx.Done():
				return
			case jobQueue <- job[T]{index: i, item: item}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	values := make([]R, len(items))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		values[r.index] = r.value
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
