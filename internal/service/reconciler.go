package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agent-dispatch-service/internal/entity"
)

// ReconcileResult reports a completed reconciliation. SettlementError is a
// warning: settlement runs after the Completed transition and its failure
// never reverts the job.
type ReconcileResult struct {
	Job             *entity.Job   `json:"job"`
	SelectedAgent   *entity.Agent `json:"selectedAgent"`
	CompletedAt     time.Time     `json:"completedAt"`
	SettlementError string        `json:"settlementError,omitempty"`
}

// Reconciler accepts the requester's choice of winning agent and moves the job
// to its terminal Completed state.
type Reconciler struct {
	jobs    JobStore
	agents  AgentStore
	settler Settler
}

func NewReconciler(jobs JobStore, agents AgentStore, settler Settler) *Reconciler {
	return &Reconciler{jobs: jobs, agents: agents, settler: settler}
}

// Complete finalizes the job with the selected agent. The job must be
// In Progress and the agent must have a Completed entry in the job's
// execution-result map; stamping executedAt and clearing executionError
// happens atomically with the status transition. Settlement (pay the agent its
// price, refund the remainder) is triggered afterwards as an opaque external
// call.
func (r *Reconciler) Complete(ctx context.Context, jobID, agentID uuid.UUID) (*ReconcileResult, error) {
	job, err := r.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	agent, err := r.agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if job.Status != entity.StatusInProgress {
		return nil, fmt.Errorf("job %s is %q, want In Progress: %w", jobID, job.Status, entity.ErrInvalidState)
	}
	outcome, ok := job.ExecutionResult[agentID.String()]
	if !ok || outcome.Status != entity.OutcomeCompleted {
		return nil, fmt.Errorf("job %s, agent %s: %w", jobID, agentID, entity.ErrNoCompletedOutcome)
	}

	completedAt := time.Now().UTC()
	if err := r.jobs.CompleteJob(ctx, jobID, completedAt); err != nil {
		return nil, err
	}
	job.Status = entity.StatusCompleted
	job.ExecutedAt = &completedAt
	job.ExecutionError = nil

	log.Info().
		Str("job_id", jobID.String()).
		Str("agent_id", agentID.String()).
		Msg("job completed")

	result := &ReconcileResult{Job: job, SelectedAgent: agent, CompletedAt: completedAt}

	refund := job.MaxBudget - agent.Price
	if refund < 0 {
		refund = 0
	}
	if err := r.settler.Settle(ctx, SettlementRequest{
		JobID:           jobID,
		AgentID:         agentID,
		AgentWallet:     agent.WalletAddress,
		RequesterWallet: job.WalletAddress,
		Amount:          agent.Price,
		Refund:          refund,
	}); err != nil {
		// Reported separately, never a hard error: the job stays Completed.
		log.Warn().Err(err).Str("job_id", jobID.String()).Msg("settlement failed")
		result.SettlementError = err.Error()
	}

	return result, nil
}
