// Package worker runs claim analyses concurrently against one shared engine.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers.
// Results are drained as they arrive, so Submit never deadlocks on a full
// result buffer however many jobs are queued.
type Pool struct {
	workers  int
	jobQueue chan Job
	results  chan Result
	ctx      context.Context
	cancel   context.CancelFunc

	wg        sync.WaitGroup
	collected []Result
	collector sync.WaitGroup
	closeOnce sync.Once
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, workers*2),
		results:  make(chan Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	p.collector.Add(1)
	go func() {
		defer p.collector.Done()
		for r := range p.results {
			p.collected = append(p.collected, r)
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- job.Execute(p.ctx)
		}
	}
}

// Submit queues a job; it returns false once the pool is cancelled
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Wait closes the queue, lets queued jobs finish and returns their results
// in completion order
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.finish()
	p.cancel()
	return p.collected
}

// Shutdown stops the workers without running queued jobs
func (p *Pool) Shutdown() []Result {
	p.cancel()
	p.finish()
	return p.collected
}

func (p *Pool) finish() {
	p.wg.Wait()
	p.closeOnce.Do(func() {
		close(p.results)
	})
	p.collector.Wait()
}
