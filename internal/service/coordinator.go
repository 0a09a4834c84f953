package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"agent-dispatch-service/internal/entity"
)

const (
	// DefaultMatchInterval is how often the coordinator scans for open jobs.
	DefaultMatchInterval = 30 * time.Second

	// matchBatchSize caps how many jobs one scan tick matches concurrently.
	matchBatchSize = 3

	// executeBatchSize caps how many matched jobs one (manual) execution pass
	// dispatches.
	executeBatchSize = 2
)

// QueueStatus is the coordinator's snapshot of outstanding work.
type QueueStatus struct {
	PendingMatchingCount  int       `json:"pendingMatchingCount"`
	PendingExecutionCount int       `json:"pendingExecutionCount"`
	LastUpdate            time.Time `json:"lastUpdate"`
}

// PassStats summarizes one matching pass.
type PassStats struct {
	Pending   int `json:"pending"`
	Attempted int `json:"attempted"`
	Matched   int `json:"matched"`
}

// Coordinator periodically scans for open jobs and fans them out to the
// matcher with bounded concurrency. It also hosts the manual trigger and the
// retry path. Execution is never auto-triggered: RunExecutionPass exists for
// explicit callers only.
type Coordinator struct {
	jobs     JobStore
	dist     DistributionStore
	matcher  *Matcher
	executor *Executor
	interval time.Duration
}

func NewCoordinator(jobs JobStore, dist DistributionStore, matcher *Matcher, executor *Executor, interval time.Duration) *Coordinator {
	if interval <= 0 {
		interval = DefaultMatchInterval
	}
	return &Coordinator{jobs: jobs, dist: dist, matcher: matcher, executor: executor, interval: interval}
}

// Run drives the periodic matching scan until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	log.Info().Dur("interval", c.interval).Msg("queue coordinator started")
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("queue coordinator stopped")
			return
		case <-ticker.C:
			stats, err := c.RunMatchingPass(ctx)
			if err != nil {
				log.Error().Err(err).Msg("matching pass failed")
				continue
			}
			if stats.Attempted > 0 {
				log.Info().
					Int("pending", stats.Pending).
					Int("attempted", stats.Attempted).
					Int("matched", stats.Matched).
					Msg("matching pass done")
			}
		}
	}
}

// RunMatchingPass matches up to matchBatchSize open jobs, oldest first, all
// concurrently. A failing job is logged and counted, never aborts the batch.
func (c *Coordinator) RunMatchingPass(ctx context.Context) (PassStats, error) {
	pending, err := c.jobs.ListOpenJobsFIFO(ctx)
	if err != nil {
		return PassStats{}, err
	}
	stats := PassStats{Pending: len(pending)}
	if len(pending) == 0 {
		return stats, nil
	}

	batch := pending[:min(matchBatchSize, len(pending))]
	stats.Attempted = len(batch)

	var matched atomic.Int64
	var g errgroup.Group
	for _, job := range batch {
		jobID := job.ID
		g.Go(func() error {
			result, err := c.matcher.Match(ctx, jobID)
			if err != nil {
				log.Error().Err(err).Str("job_id", jobID.String()).Msg("matching failed")
				return nil // isolate failures per job
			}
			if result != nil {
				matched.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Matched = int(matched.Load())
	return stats, nil
}

// RunExecutionPass dispatches up to executeBatchSize matched jobs to their
// first assigned agent. It is intentionally not scheduled anywhere: execution
// is manual-only in the current contract, so only explicit callers reach this.
func (c *Coordinator) RunExecutionPass(ctx context.Context) (int, error) {
	records, err := c.dist.ListPendingExecution(ctx, executeBatchSize)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	var succeeded atomic.Int64
	var g errgroup.Group
	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			res, err := c.executor.Dispatch(ctx, rec.JobID, rec.AssignedAgentID, nil)
			if err != nil {
				log.Error().Err(err).Str("job_id", rec.JobID.String()).Msg("execution failed")
				return nil
			}
			if res.Success {
				succeeded.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(succeeded.Load()), nil
}

// ManualTrigger runs one matching pass synchronously on behalf of the caller.
func (c *Coordinator) ManualTrigger(ctx context.Context) (PassStats, error) {
	log.Info().Msg("queue processing triggered manually")
	return c.RunMatchingPass(ctx)
}

// Status reports how many jobs await matching and how many assignments await
// execution.
func (c *Coordinator) Status(ctx context.Context) (*QueueStatus, error) {
	pending, err := c.jobs.ListOpenJobsFIFO(ctx)
	if err != nil {
		return nil, err
	}
	execCount, err := c.dist.CountPendingExecution(ctx)
	if err != nil {
		return nil, err
	}
	return &QueueStatus{
		PendingMatchingCount:  len(pending),
		PendingExecutionCount: execCount,
		LastUpdate:            time.Now().UTC(),
	}, nil
}

// RetryJob re-matches a job. A Failed job first has its distribution records
// deleted and its status reset to Open in one transaction (the only legal
// Failed -> Open path), so no orphaned records survive the retry.
func (c *Coordinator) RetryJob(ctx context.Context, jobID uuid.UUID) (*MatchResult, error) {
	job, err := c.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status == entity.StatusFailed {
		log.Info().Str("job_id", jobID.String()).Msg("resetting failed job for retry")
		if err := c.jobs.ReopenFailedJob(ctx, jobID); err != nil {
			// A concurrent retry may have reopened it already.
			if !errors.Is(err, entity.ErrInvalidState) {
				return nil, err
			}
		}
	}

	return c.matcher.Match(ctx, jobID)
}
