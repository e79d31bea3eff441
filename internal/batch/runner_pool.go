package batch

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
)

// Runner executes one batch run of the given size.
type Runner interface {
	Run(ctx context.Context, count int) (Result, error)
}

// Pool funnels batch runs through a bounded worker pool so only a fixed
// number of operator-triggered runs execute at once. Each run remains
// strictly sequential internally; the pool only bounds runs across sessions.
type Pool struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// NewPool creates a run pool with the specified size.
func NewPool(logger *slog.Logger, size int) (*Pool, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	return &Pool{
		pool:   pool,
		logger: logger,
	}, nil
}

// Run submits the batch run to the pool and waits for its outcome. Runners
// are passed per call because each run is bound to its session's credentials.
func (p *Pool) Run(ctx context.Context, runner Runner, count int) (Result, error) {
	type outcome struct {
		result Result
		err    error
	}

	resultChan := make(chan outcome, 1)
	err := p.pool.Submit(func() {
		result, err := runner.Run(ctx, count)
		resultChan <- outcome{result: result, err: err}
	})
	if err != nil {
		p.logger.Error("failed to submit batch run to worker pool", "error", err)
		return Result{}, err
	}

	out := <-resultChan
	return out.result, out.err
}

// Shutdown gracefully releases the worker pool.
func (p *Pool) Shutdown() {
	p.logger.Info("shutting down batch run pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

// Running returns the number of batch runs currently executing.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Capacity returns the maximum number of concurrent batch runs.
func (p *Pool) Capacity() int {
	return p.pool.Cap()
}
