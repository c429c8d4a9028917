package pipeline

import (
	"context"
	"runtime"
	"sync"

	"decisiongov/platform/shared/logger"
)

// Job is one unit of pipeline work: a decision submission waiting to be
// processed.
type Job struct {
	TenantID         string
	DecisionID       string
	RawText          string
	UseDeepReasoning bool
}

// WorkerPool runs Jobs against an Orchestrator using a bounded number of
// goroutines, replacing an ad hoc background-task-per-request model with
// a fixed worker count so load on the tenant's LLM provider and rule
// engine is predictable under bursts of submissions.
type WorkerPool struct {
	orchestrator *Orchestrator
	log          *logger.Logger
	jobs         chan Job
	size         int

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWorkerPool constructs a WorkerPool of size goroutines reading from a
// queue of depth queueDepth. size <= 0 defaults to runtime.NumCPU().
func NewWorkerPool(o *Orchestrator, log *logger.Logger, size, queueDepth int) *WorkerPool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if queueDepth <= 0 {
		queueDepth = size * 4
	}
	return &WorkerPool{
		orchestrator: o,
		log:          log,
		jobs:         make(chan Job, queueDepth),
		size:         size,
	}
}

// Start launches the pool's worker goroutines. ctx cancellation stops
// workers from picking up new jobs; in-flight jobs still run to
// completion since Orchestrator.Process itself respects ctx.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.orchestrator.Process(ctx, job.TenantID, job.DecisionID, job.RawText, job.UseDeepReasoning)
		}
	}
}

// Enqueue submits a job for processing. It blocks if the queue is full,
// applying backpressure to the HTTP handler that called it rather than
// growing memory unboundedly.
func (p *WorkerPool) Enqueue(job Job) {
	p.jobs <- job
}

// Stop closes the job queue and waits for in-flight workers to drain. Safe
// to call multiple times.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
