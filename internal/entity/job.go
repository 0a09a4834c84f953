package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusOpen       JobStatus = "Open"
	StatusMatching   JobStatus = "Matching"
	StatusMatched    JobStatus = "Matched"
	StatusInProgress JobStatus = "In Progress"
	StatusCompleted  JobStatus = "Completed"
	StatusCancelled  JobStatus = "Cancelled"
	StatusFailed     JobStatus = "Failed"
)

// statusFlow lists the legal successors of each job status. Completed and
// Cancelled are terminal; Failed can only go back to Open through the explicit
// retry path.
var statusFlow = map[JobStatus][]JobStatus{
	StatusOpen:       {StatusMatching, StatusCancelled},
	StatusMatching:   {StatusMatched, StatusFailed, StatusCancelled},
	StatusMatched:    {StatusInProgress, StatusFailed, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusFailed:     {StatusOpen},
}

func (s JobStatus) Valid() bool {
	_, ok := statusFlow[s]
	return ok
}

func (s JobStatus) Terminal() bool {
	return s.Valid() && len(statusFlow[s]) == 0
}

// CanTransition reports whether s -> to is allowed by the status flow.
func (s JobStatus) CanTransition(to JobStatus) bool {
	for _, next := range statusFlow[s] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedPredecessors returns every status from which `to` is reachable. The
// store uses this set in conditional updates so an illegal transition never
// touches the row.
func AllowedPredecessors(to JobStatus) []JobStatus {
	var from []JobStatus
	for s, successors := range statusFlow {
		for _, next := range successors {
			if next == to {
				from = append(from, s)
			}
		}
	}
	return from
}

type OutcomeStatus string

const (
	OutcomeCompleted OutcomeStatus = "Completed"
	OutcomeFailed    OutcomeStatus = "Failed"
)

// AgentOutcome is one agent's result for one job, stored in the job's
// execution-result map keyed by agent id. It is the unit of truth the
// reconciler reads when the requester picks a winner.
type AgentOutcome struct {
	AgentID      string          `json:"agentId"`
	AgentName    string          `json:"agentName"`
	AgentAddress string          `json:"agentAddress"`
	Status       OutcomeStatus   `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	ExecutedAt   time.Time       `json:"executedAt"`
	Error        *string         `json:"error,omitempty"`
}

type Job struct {
	ID              uuid.UUID               `json:"id"`
	Title           string                  `json:"jobTitle"`
	Category        string                  `json:"category"`
	Description     string                  `json:"description"`
	Deliverables    string                  `json:"deliverables,omitempty"`
	Tags            string                  `json:"tags"`
	MaxBudget       float64                 `json:"maxBudget"`
	Priority        string                  `json:"priority,omitempty"`
	SkillLevel      string                  `json:"skillLevel,omitempty"`
	WalletAddress   *string                 `json:"walletAddress,omitempty"`
	Status          JobStatus               `json:"status"`
	ExecutionResult map[string]AgentOutcome `json:"executionResult,omitempty"`
	ExecutedAt      *time.Time              `json:"executedAt,omitempty"`
	ExecutionError  *string                 `json:"executionError,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}
