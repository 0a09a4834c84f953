package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"agent-dispatch-service/internal/service"
)

// Pool runs N matching workers against the match queue. Claimed job ids are
// always Acked: the matcher either finished (in any direction) or failed with
// the job in a safe state, and the reaper re-delivers anything a dead worker
// left in processing.
type Pool struct {
	queue      service.MatchQueue
	processor  *Processor
	workers    int
	claimDelay time.Duration
}

func NewPool(queue service.MatchQueue, processor *Processor, workers int) *Pool {
	if workers <= 0 {
		workers = 3
	}
	return &Pool{
		queue:      queue,
		processor:  processor,
		workers:    workers,
		claimDelay: 5 * time.Second,
	}
}

func (p *Pool) Run(ctx context.Context) {
	log.Info().Int("workers", p.workers).Msg("matching worker pool started")

	jobCh := make(chan string)

	for i := 0; i < p.workers; i++ {
		go func(n int) {
			for jobID := range jobCh {
				if err := p.processor.Process(ctx, jobID); err != nil {
					log.Error().Err(err).Int("worker", n).Str("job_id", jobID).Msg("match processing failed")
				}
				if ackErr := p.queue.Ack(ctx, jobID); ackErr != nil {
					log.Error().Err(ackErr).Int("worker", n).Str("job_id", jobID).Msg("ack failed")
				}
			}
		}(i + 1)
	}

	// Listener: atomically claim from queue -> processing, then hand off.
	for {
		select {
		case <-ctx.Done():
			close(jobCh)
			log.Info().Msg("matching worker pool stopped")
			return
		default:
			jobID, err := p.queue.ClaimBlocking(ctx, p.claimDelay)
			if err != nil {
				// timeout / redis.Nil / ctx cancel: not fatal
				continue
			}
			select {
			case jobCh <- jobID:
			case <-ctx.Done():
				close(jobCh)
				return
			}
		}
	}
}
