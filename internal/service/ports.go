package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"agent-dispatch-service/internal/entity"
)

// JobStore is the persistence port for jobs (implementation:
// postgresql.JobRepository). Missing rows surface entity.ErrNotFound; illegal
// status transitions surface entity.ErrInvalidState without touching the row.
type JobStore interface {
	CreateJob(ctx context.Context, job *entity.Job) (*entity.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	ListJobs(ctx context.Context) ([]entity.Job, error)
	ListOpenJobsFIFO(ctx context.Context) ([]entity.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, to entity.JobStatus) error
	CompleteJob(ctx context.Context, id uuid.UUID, executedAt time.Time) error
	// MergeExecutionResult upserts one agent's outcome into the job's
	// execution-result map as a single atomic store operation. This is the
	// serialization point for concurrent dispatchers of the same job.
	MergeExecutionResult(ctx context.Context, jobID uuid.UUID, agentID string, outcome entity.AgentOutcome) error
	// ReopenFailedJob deletes the job's distribution records and moves
	// Failed -> Open in one transaction.
	ReopenFailedJob(ctx context.Context, id uuid.UUID) error
	// DeleteJob removes the job and its distribution records in one
	// transaction.
	DeleteJob(ctx context.Context, id uuid.UUID) error
}

// AgentStore is the persistence port for agents.
type AgentStore interface {
	CreateAgent(ctx context.Context, agent *entity.Agent) (*entity.Agent, error)
	GetAgent(ctx context.Context, id uuid.UUID) (*entity.Agent, error)
	ListAgents(ctx context.Context) ([]entity.Agent, error)
	// ListEligibleAgents returns active, public agents of the given
	// classification priced at or under maxPrice.
	ListEligibleAgents(ctx context.Context, classification string, maxPrice float64) ([]entity.Agent, error)
	// IncrementAgentCompleted bumps the completed-jobs counter atomically at
	// the store layer, never read-then-write in application code.
	IncrementAgentCompleted(ctx context.Context, id uuid.UUID) error
	DeleteAgent(ctx context.Context, id uuid.UUID) error
}

// DistributionStore is the persistence port for job-to-agent assignment
// records.
type DistributionStore interface {
	CreateDistributionRecords(ctx context.Context, records []entity.DistributionRecord) error
	ListDistributionRecords(ctx context.Context, jobID uuid.UUID) ([]entity.DistributionRecord, error)
	IncrementResponseCount(ctx context.Context, jobID, agentID uuid.UUID) error
	// ListPendingExecution returns records whose job is still Matched, oldest
	// first.
	ListPendingExecution(ctx context.Context, limit int) ([]entity.DistributionRecord, error)
	CountPendingExecution(ctx context.Context) (int, error)
}

// InvocationPayload is the message posted to an agent's address.
type InvocationPayload struct {
	Message string          `json:"message"`
	Context json.RawMessage `json:"context"`
}

// AgentInvoker performs one bounded HTTP-style call against an agent. The
// deadline comes from ctx; the invoker never retries on its own.
type AgentInvoker interface {
	Invoke(ctx context.Context, address string, payload InvocationPayload) (json.RawMessage, error)
}

// SettlementRequest asks the external settlement collaborator to pay the
// winning agent and refund the remainder of the job budget.
type SettlementRequest struct {
	JobID           uuid.UUID `json:"jobId"`
	AgentID         uuid.UUID `json:"agentId"`
	AgentWallet     *string   `json:"agentWallet,omitempty"`
	RequesterWallet *string   `json:"requesterWallet,omitempty"`
	Amount          float64   `json:"amount"`
	Refund          float64   `json:"refund"`
}

// Settler triggers settlement after a job completes. A settlement failure is
// reported to the caller as a warning and never reverts the completion.
type Settler interface {
	Settle(ctx context.Context, req SettlementRequest) error
}
