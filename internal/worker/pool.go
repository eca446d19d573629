// Package worker runs pipeline jobs on a fixed-size goroutine pool.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/core"
)

// Job is one inbound message plus its delivery acknowledgement. Ack is
// called after the pipeline reaches a terminal outcome, whatever that
// outcome is, so the broker never redelivers a settled message.
type Job struct {
	Message *core.InboundMessage
	Ack     func(ctx context.Context) error
}

// Pool processes jobs concurrently with a bounded number of workers.
type Pool struct {
	pipeline *core.Pipeline
	logger   *zap.Logger
	count    int
	jobs     chan Job
	wg       sync.WaitGroup
}

// NewPool creates a pool with the given worker count.
func NewPool(pipeline *core.Pipeline, logger *zap.Logger, count int) *Pool {
	if count <= 0 {
		count = 1
	}
	return &Pool{
		pipeline: pipeline,
		logger:   logger,
		count:    count,
		jobs:     make(chan Job),
	}
}

// Start launches the workers. They drain the job channel until Stop is
// called, finishing in-flight messages before returning.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Submit enqueues a job, blocking if all workers are busy. Returns the
// context error if ctx is done before a worker picks the job up.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the job channel and waits for workers to drain.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	logger := p.logger.With(zap.Int("worker", id))

	for job := range p.jobs {
		result, err := p.pipeline.ProcessMessage(ctx, job.Message)
		if err != nil {
			logger.Warn("message settled without a lead",
				zap.String("email_id", job.Message.EmailID),
				zap.String("status", string(result.Status)),
				zap.Error(err))
		}

		if job.Ack != nil {
			if err := job.Ack(ctx); err != nil {
				logger.Error("failed to ack message",
					zap.String("email_id", job.Message.EmailID),
					zap.Error(err))
			}
		}
	}
}
