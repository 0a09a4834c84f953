package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"agent-dispatch-service/internal/entity"
)

// In-memory stores mirroring the postgresql repositories' contracts, including
// conditional status transitions and atomic result merges.

type memJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.Job

	// dist, when set, receives the cascade deletes ReopenFailedJob and
	// DeleteJob perform transactionally in the real store.
	dist *memDistStore

	onUpdateStatus func(id uuid.UUID, to entity.JobStatus) error
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[uuid.UUID]*entity.Job)}
}

func (s *memJobStore) CreateJob(ctx context.Context, job *entity.Job) (*entity.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := *job
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	s.jobs[j.ID] = &j
	out := j
	return &out, nil
}

func (s *memJobStore) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	out := *j
	if j.ExecutionResult != nil {
		out.ExecutionResult = make(map[string]entity.AgentOutcome, len(j.ExecutionResult))
		for k, v := range j.ExecutionResult {
			out.ExecutionResult[k] = v
		}
	}
	return &out, nil
}

func (s *memJobStore) ListJobs(ctx context.Context) ([]entity.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memJobStore) ListOpenJobsFIFO(ctx context.Context) ([]entity.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Job
	for _, j := range s.jobs {
		if j.Status == entity.StatusOpen {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memJobStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, to entity.JobStatus) error {
	if s.onUpdateStatus != nil {
		if err := s.onUpdateStatus(id, to); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return entity.ErrNotFound
	}
	for _, from := range entity.AllowedPredecessors(to) {
		if j.Status == from {
			j.Status = to
			j.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("job %s: %s -> %s: %w", id, j.Status, to, entity.ErrInvalidState)
}

func (s *memJobStore) CompleteJob(ctx context.Context, id uuid.UUID, executedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return entity.ErrNotFound
	}
	if j.Status != entity.StatusInProgress {
		return fmt.Errorf("job %s: %s -> Completed: %w", id, j.Status, entity.ErrInvalidState)
	}
	j.Status = entity.StatusCompleted
	j.ExecutedAt = &executedAt
	j.ExecutionError = nil
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memJobStore) MergeExecutionResult(ctx context.Context, jobID uuid.UUID, agentID string, outcome entity.AgentOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return entity.ErrNotFound
	}
	if j.ExecutionResult == nil {
		j.ExecutionResult = make(map[string]entity.AgentOutcome)
	}
	j.ExecutionResult[agentID] = outcome
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memJobStore) ReopenFailedJob(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	j, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return entity.ErrNotFound
	}
	if j.Status != entity.StatusFailed {
		s.mu.Unlock()
		return fmt.Errorf("job %s: %s -> Open: %w", id, j.Status, entity.ErrInvalidState)
	}
	j.Status = entity.StatusOpen
	j.UpdatedAt = time.Now().UTC()
	s.mu.Unlock()

	if s.dist != nil {
		s.dist.deleteForJob(id)
	}
	return nil
}

func (s *memJobStore) DeleteJob(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.jobs[id]; !ok {
		s.mu.Unlock()
		return entity.ErrNotFound
	}
	delete(s.jobs, id)
	s.mu.Unlock()

	if s.dist != nil {
		s.dist.deleteForJob(id)
	}
	return nil
}

// mustStatus force-sets a status for test setup, bypassing transition checks.
func (s *memJobStore) mustStatus(id uuid.UUID, st entity.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id].Status = st
}

type memAgentStore struct {
	mu     sync.Mutex
	agents map[uuid.UUID]*entity.Agent

	listErr error
}

func newMemAgentStore() *memAgentStore {
	return &memAgentStore{agents: make(map[uuid.UUID]*entity.Agent)}
}

func (s *memAgentStore) CreateAgent(ctx context.Context, agent *entity.Agent) (*entity.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := *agent
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.agents[a.ID] = &a
	out := a
	return &out, nil
}

func (s *memAgentStore) GetAgent(ctx context.Context, id uuid.UUID) (*entity.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (s *memAgentStore) ListAgents(ctx context.Context) ([]entity.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memAgentStore) ListEligibleAgents(ctx context.Context, classification string, maxPrice float64) ([]entity.Agent, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Agent
	for _, a := range s.agents {
		if a.IsActive && !a.IsPrivate && a.Classification == classification && a.Price <= maxPrice {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memAgentStore) IncrementAgentCompleted(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.agents[id]
	if !ok {
		return entity.ErrNotFound
	}
	a.TotalJobsCompleted++
	return nil
}

func (s *memAgentStore) DeleteAgent(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[id]; !ok {
		return entity.ErrNotFound
	}
	delete(s.agents, id)
	return nil
}

type memDistStore struct {
	mu      sync.Mutex
	records []entity.DistributionRecord

	// jobs, when set, backs ListPendingExecution's join on job status.
	jobs *memJobStore

	createErr error
}

func newMemDistStore() *memDistStore {
	return &memDistStore{}
}

func (s *memDistStore) CreateDistributionRecords(ctx context.Context, records []entity.DistributionRecord) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *memDistStore) ListDistributionRecords(ctx context.Context, jobID uuid.UUID) ([]entity.DistributionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.DistributionRecord
	for _, r := range s.records {
		if r.JobID == jobID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchCriteria.Rank < out[j].MatchCriteria.Rank })
	return out, nil
}

func (s *memDistStore) IncrementResponseCount(ctx context.Context, jobID, agentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].JobID == jobID && s.records[i].AssignedAgentID == agentID {
			s.records[i].ResponseCount++
			return nil
		}
	}
	return entity.ErrNotFound
}

func (s *memDistStore) ListPendingExecution(ctx context.Context, limit int) ([]entity.DistributionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.DistributionRecord
	for _, r := range s.records {
		if s.jobs != nil {
			j, err := s.jobs.GetJob(ctx, r.JobID)
			if err != nil || j.Status != entity.StatusMatched {
				continue
			}
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memDistStore) CountPendingExecution(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.records {
		if s.jobs != nil {
			j, err := s.jobs.GetJob(ctx, r.JobID)
			if err != nil || j.Status != entity.StatusMatched {
				continue
			}
		}
		n++
	}
	return n, nil
}

func (s *memDistStore) deleteForJob(jobID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		if r.JobID != jobID {
			kept = append(kept, r)
		}
	}
	s.records = kept
}

type fakeInvoker struct {
	mu    sync.Mutex
	calls []string // addresses in call order

	fn func(ctx context.Context, address string, payload InvocationPayload) (json.RawMessage, error)
}

func (f *fakeInvoker) Invoke(ctx context.Context, address string, payload InvocationPayload) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(ctx, address, payload)
	}
	return json.RawMessage(`{"ok":true}`), nil
}

type fakeSettler struct {
	mu   sync.Mutex
	reqs []SettlementRequest
	err  error
}

func (f *fakeSettler) Settle(ctx context.Context, req SettlementRequest) error {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.err
}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []string
	lanes    []int
	err      error
}

func (q *fakeQueue) Enqueue(ctx context.Context, jobID string, priority int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, jobID)
	q.lanes = append(q.lanes, priority)
	return nil
}
