// Package worker runs batches of URL scans across a bounded set of
// goroutines, pacing requests per registrable domain so deep-scan probes do
// not hammer a single host.
package worker

import (
	"context"
	"sort"
	"sync"

	"github.com/phisheye/phisheye/internal/model"
)

// URLScanner is the scanning collaborator. *pipeline.Scanner satisfies it.
type URLScanner interface {
	Scan(ctx context.Context, req model.ScanRequest) model.Verdict
}

// Task is one scan request with its position in the submitted batch.
type Task struct {
	Index   int
	Request model.ScanRequest
}

// Outcome pairs a task with its verdict.
type Outcome struct {
	Index   int
	Request model.ScanRequest
	Verdict model.Verdict
}

// Pool executes scan tasks concurrently. Submit all tasks, then call Wait
// exactly once; the pool is not reusable after Wait or Shutdown.
type Pool struct {
	scanner   URLScanner
	limiter   *Limiter // nil disables pacing
	workers   int
	tasks     chan Task
	outcomes  chan Outcome
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool of the given width. A nil limiter disables
// per-domain pacing. Cancelling ctx stops the workers and drops any tasks
// still queued.
func NewPool(ctx context.Context, scanner URLScanner, limiter *Limiter, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		scanner:  scanner,
		limiter:  limiter,
		workers:  workers,
		tasks:    make(chan Task, workers*2),
		outcomes: make(chan Outcome, workers*2),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
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
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			if p.limiter != nil {
				if err := p.limiter.Wait(p.ctx, task.Request.URL); err != nil {
					return
				}
			}
			outcome := Outcome{
				Index:   task.Index,
				Request: task.Request,
				Verdict: p.scanner.Scan(p.ctx, task.Request),
			}
			select {
			case p.outcomes <- outcome:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues one task. Submissions after Wait has closed the queue are
// dropped.
func (p *Pool) Submit(task Task) {
	select {
	case <-p.ctx.Done():
		return
	case p.tasks <- task:
	}
}

// Wait closes the queue, waits for the workers to drain it, and returns all
// outcomes in submission order.
func (p *Pool) Wait() []Outcome {
	close(p.tasks)

	go func() {
		p.wg.Wait()
		p.closeOutcomes()
	}()

	var outcomes []Outcome
	for outcome := range p.outcomes {
		outcomes = append(outcomes, outcome)
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })
	return outcomes
}

// Shutdown abandons queued tasks and stops the workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeOutcomes()
}

func (p *Pool) closeOutcomes() {
	p.closeOnce.Do(func() {
		close(p.outcomes)
	})
}
