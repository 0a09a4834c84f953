package entity

import (
	"time"

	"github.com/google/uuid"
)

// MatchCriteria is the snapshot persisted with each distribution record:
// what the job asked for, what the agent cost, and how the agent ranked.
type MatchCriteria struct {
	Category      string  `json:"category"`
	Tags          string  `json:"tags"`
	JobMaxBudget  float64 `json:"jobMaxBudget"`
	StakeAmount   float64 `json:"stakeAmount"`
	AgentPrice    float64 `json:"agentPrice"`
	MatchScore    float64 `json:"matchScore"`
	CategoryMatch int     `json:"categoryMatch"`
	Rank          int     `json:"rank"`
	Algorithm     string  `json:"algorithm"`
}

// DistributionRecord is one job-to-agent assignment made by the matcher.
// Exactly one record exists per (job, agent) pair.
type DistributionRecord struct {
	ID                uuid.UUID     `json:"id"`
	JobID             uuid.UUID     `json:"jobId"`
	JobName           string        `json:"jobName"`
	AssignedAgentID   uuid.UUID     `json:"assignedAgentId"`
	AssignedAgentName string        `json:"assignedAgentName"`
	MatchCriteria     MatchCriteria `json:"matchCriteria"`
	TotalAgents       int           `json:"totalAgents"`
	AssignedCount     int           `json:"assignedCount"`
	ResponseCount     int           `json:"responseCount"`
	CreatedAt         time.Time     `json:"createdAt"`
}
