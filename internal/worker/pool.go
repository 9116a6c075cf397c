package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

// Task represents a unit of work to be processed by the pool.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc processes a single input. workerID identifies the calling
// worker in [0, workers), so callers can keep per-worker state in a slice.
type ProcessFunc[T any, R any] func(ctx context.Context, workerID int, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a new worker pool.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Workers returns the number of workers.
func (p *Pool[T, R]) Workers() int { return p.workers }

// Execute runs all inputs through the pool and returns one Task per input,
// in input order. With a single worker, inputs are processed strictly in
// order. Inputs not started before ctx is cancelled are returned with
// ctx.Err().
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) ([]Task[T, R], error) {
	results := make([]Task[T, R], len(inputs))
	started := make([]bool, len(inputs))
	inputCh := make(chan int)

	gp, err := ants.NewPool(p.workers)
	if err != nil {
		return nil, fmt.Errorf("create goroutine pool: %w", err)
	}
	defer gp.Release()

	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		workerID := w
		if err := gp.Submit(func() {
			defer wg.Done()
			for idx := range inputCh {
				started[idx] = true
				result, err := p.process(ctx, workerID, inputs[idx])
				results[idx] = Task[T, R]{
					Input:  inputs[idx],
					Result: result,
					Err:    err,
				}
				if err != nil {
					log.Debug().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
				}
			}
		}); err != nil {
			wg.Done()
			close(inputCh)
			wg.Wait()
			return nil, fmt.Errorf("start worker %d: %w", w, err)
		}
	}

send:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break send
		case inputCh <- i:
		}
	}
	close(inputCh)

	wg.Wait()

	for i := range results {
		if !started[i] {
			results[i] = Task[T, R]{Input: inputs[i], Err: ctx.Err()}
		}
	}
	return results, nil
}
