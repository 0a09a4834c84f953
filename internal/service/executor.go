package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agent-dispatch-service/internal/entity"
)

// DefaultAgentTimeout bounds a single agent invocation. An agent that blows
// the deadline gets a Failed outcome; siblings keep running.
const DefaultAgentTimeout = 60 * time.Second

// DispatchOverride lets the caller replace the default invocation message
// and/or context object.
type DispatchOverride struct {
	Message string          `json:"message,omitempty"`
	Context json.RawMessage `json:"context,omitempty"`
}

// DispatchResult reports one dispatch attempt. Agent-level failures (timeouts,
// network errors, non-success responses) land here as Success=false rather
// than as Go errors: partial failure across agents is normal operation.
type DispatchResult struct {
	AgentID       uuid.UUID       `json:"agentId"`
	Success       bool            `json:"success"`
	Result        json.RawMessage `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
	ExecutionTime time.Time       `json:"executionTime"`
}

// AgentMatchInfo is an agent enriched with its match snapshot and any stored
// execution outcome, as returned by GetMatchDetails.
type AgentMatchInfo struct {
	entity.Agent
	MatchScore      float64              `json:"matchScore"`
	Rank            int                  `json:"rank"`
	ExecutionResult *entity.AgentOutcome `json:"executionResult,omitempty"`
}

// MatchDetails describes a job's assignments and their progress.
type MatchDetails struct {
	Job        *entity.Job                 `json:"job"`
	Agents     []AgentMatchInfo            `json:"agents"`
	Records    []entity.DistributionRecord `json:"matchRecords"`
	CanExecute bool                        `json:"canExecute"`
}

// ExecutionReport is the requester-facing view of a job's result map.
type ExecutionReport struct {
	JobID           uuid.UUID                      `json:"jobId"`
	JobTitle        string                         `json:"jobTitle"`
	Status          entity.JobStatus               `json:"status"`
	ExecutionResult map[string]entity.AgentOutcome `json:"executionResult,omitempty"`
	ExecutedAt      *time.Time                     `json:"executedAt,omitempty"`
	ExecutionError  *string                        `json:"executionError,omitempty"`
	HasResult       bool                           `json:"hasResult"`
}

// Executor invokes assigned agents and records per-agent outcomes into the
// job's execution-result map.
type Executor struct {
	jobs    JobStore
	agents  AgentStore
	dist    DistributionStore
	invoker AgentInvoker
	timeout time.Duration
}

func NewExecutor(jobs JobStore, agents AgentStore, dist DistributionStore, invoker AgentInvoker, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultAgentTimeout
	}
	return &Executor{jobs: jobs, agents: agents, dist: dist, invoker: invoker, timeout: timeout}
}

// Dispatch runs one (job, agent) invocation. Preconditions (job and agent
// exist, job is Matched or In Progress) surface as errors; the invocation
// itself never does: its failure is merged into the result map and reported
// in the DispatchResult. Re-dispatching the same pair overwrites only that
// agent's outcome entry.
func (e *Executor) Dispatch(ctx context.Context, jobID, agentID uuid.UUID, override *DispatchOverride) (*DispatchResult, error) {
	job, err := e.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	agent, err := e.agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if job.Status != entity.StatusMatched && job.Status != entity.StatusInProgress {
		return nil, fmt.Errorf("job %s is %q, want Matched or In Progress: %w", jobID, job.Status, entity.ErrInvalidState)
	}

	if job.Status == entity.StatusMatched {
		// First dispatcher in moves the job to In Progress. When two sibling
		// dispatchers both saw Matched, the loser's conditional update fails
		// with ErrInvalidState; the end state is identical, so carry on.
		if err := e.jobs.UpdateJobStatus(ctx, jobID, entity.StatusInProgress); err != nil && !errors.Is(err, entity.ErrInvalidState) {
			return nil, err
		}
	}

	payload := e.buildPayload(job, override)

	log.Info().
		Str("job_id", jobID.String()).
		Str("agent_id", agentID.String()).
		Str("address", agent.Address).
		Msg("invoking agent")

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	raw, invokeErr := e.invoker.Invoke(callCtx, agent.Address, payload)
	cancel()

	now := time.Now().UTC()
	if invokeErr != nil {
		msg := invokeErr.Error()
		outcome := entity.AgentOutcome{
			AgentID:      agentID.String(),
			AgentName:    agent.Name,
			AgentAddress: agent.Address,
			Status:       entity.OutcomeFailed,
			ExecutedAt:   now,
			Error:        &msg,
		}
		// Best effort: losing the outcome write must not mask the agent error.
		if mergeErr := e.jobs.MergeExecutionResult(ctx, jobID, agentID.String(), outcome); mergeErr != nil {
			log.Error().Err(mergeErr).Str("job_id", jobID.String()).Str("agent_id", agentID.String()).
				Msg("could not record failed outcome")
		}
		log.Warn().Err(invokeErr).
			Str("job_id", jobID.String()).
			Str("agent_id", agentID.String()).
			Dur("duration", time.Since(start)).
			Msg("agent invocation failed")
		return &DispatchResult{AgentID: agentID, Success: false, Error: msg, ExecutionTime: now}, nil
	}

	if err := e.agents.IncrementAgentCompleted(ctx, agentID); err != nil {
		return nil, fmt.Errorf("increment agent completed count: %w", err)
	}
	outcome := entity.AgentOutcome{
		AgentID:      agentID.String(),
		AgentName:    agent.Name,
		AgentAddress: agent.Address,
		Status:       entity.OutcomeCompleted,
		Result:       raw,
		ExecutedAt:   now,
	}
	if err := e.jobs.MergeExecutionResult(ctx, jobID, agentID.String(), outcome); err != nil {
		return nil, fmt.Errorf("merge execution result: %w", err)
	}
	if err := e.dist.IncrementResponseCount(ctx, jobID, agentID); err != nil {
		return nil, fmt.Errorf("increment response count: %w", err)
	}

	log.Info().
		Str("job_id", jobID.String()).
		Str("agent_id", agentID.String()).
		Dur("duration", time.Since(start)).
		Msg("agent completed")

	return &DispatchResult{AgentID: agentID, Success: true, Result: raw, ExecutionTime: now}, nil
}

func (e *Executor) buildPayload(job *entity.Job, override *DispatchOverride) InvocationPayload {
	message := job.Description
	if override != nil && override.Message != "" {
		message = override.Message
	}

	var invCtx json.RawMessage
	if override != nil && len(override.Context) > 0 {
		invCtx = override.Context
	} else {
		now := time.Now()
		invCtx, _ = json.Marshal(map[string]string{
			"sessionId": fmt.Sprintf("job_%s_%d", job.ID, now.UnixMilli()),
			"timestamp": now.UTC().Format(time.RFC3339),
		})
	}
	return InvocationPayload{Message: message, Context: invCtx}
}

// DispatchAll invokes every assigned agent of the job concurrently. One
// agent's failure never cancels its siblings; each attempt yields its own
// DispatchResult in record order.
func (e *Executor) DispatchAll(ctx context.Context, jobID uuid.UUID) ([]DispatchResult, error) {
	records, err := e.dist.ListDistributionRecords(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("job %s: %w", jobID, entity.ErrNoDistribution)
	}

	results := make([]DispatchResult, len(records))
	var wg sync.WaitGroup
	for i, rec := range records {
		wg.Add(1)
		go func(i int, agentID uuid.UUID) {
			defer wg.Done()
			res, err := e.Dispatch(ctx, jobID, agentID, nil)
			if err != nil {
				results[i] = DispatchResult{AgentID: agentID, Success: false, Error: err.Error(), ExecutionTime: time.Now().UTC()}
				return
			}
			results[i] = *res
		}(i, rec.AssignedAgentID)
	}
	wg.Wait()
	return results, nil
}

// TriggerExecution dispatches the first assigned agent of the job, the manual
// trigger variant used when the caller only knows the job id.
func (e *Executor) TriggerExecution(ctx context.Context, jobID uuid.UUID) (*DispatchResult, error) {
	records, err := e.dist.ListDistributionRecords(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("job %s: %w", jobID, entity.ErrNoDistribution)
	}
	return e.Dispatch(ctx, jobID, records[0].AssignedAgentID, nil)
}

// GetMatchDetails returns the job's assignments ranked, each with its stored
// outcome if the agent already responded.
func (e *Executor) GetMatchDetails(ctx context.Context, jobID uuid.UUID) (*MatchDetails, error) {
	job, err := e.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	records, err := e.dist.ListDistributionRecords(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("job %s: %w", jobID, entity.ErrNoDistribution)
	}

	agents := make([]AgentMatchInfo, 0, len(records))
	for _, rec := range records {
		agent, err := e.agents.GetAgent(ctx, rec.AssignedAgentID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				log.Warn().Str("agent_id", rec.AssignedAgentID.String()).Msg("assigned agent no longer exists")
				continue
			}
			return nil, err
		}
		info := AgentMatchInfo{
			Agent:      *agent,
			MatchScore: rec.MatchCriteria.MatchScore,
			Rank:       rec.MatchCriteria.Rank,
		}
		if outcome, ok := job.ExecutionResult[agent.ID.String()]; ok {
			o := outcome
			info.ExecutionResult = &o
		}
		agents = append(agents, info)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].Rank < agents[j].Rank })

	return &MatchDetails{
		Job:        job,
		Agents:     agents,
		Records:    records,
		CanExecute: job.Status == entity.StatusMatched || job.Status == entity.StatusInProgress,
	}, nil
}

// GetExecutionResult returns the requester-facing execution report.
func (e *Executor) GetExecutionResult(ctx context.Context, jobID uuid.UUID) (*ExecutionReport, error) {
	job, err := e.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &ExecutionReport{
		JobID:           job.ID,
		JobTitle:        job.Title,
		Status:          job.Status,
		ExecutionResult: job.ExecutionResult,
		ExecutedAt:      job.ExecutedAt,
		ExecutionError:  job.ExecutionError,
		HasResult:       job.Status == entity.StatusCompleted && len(job.ExecutionResult) > 0,
	}, nil
}
