package entity

import (
	"time"

	"github.com/google/uuid"
)

// Agent is an external HTTP-invocable worker. Eligibility for matching is
// decided by the matcher: active, public, classification equal to the job's
// category and price at or under the stake ceiling.
type Agent struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"agentName"`
	Address            string    `json:"agentAddress"`
	Description        string    `json:"description,omitempty"`
	Classification     string    `json:"agentClassification"`
	Tags               string    `json:"tags"`
	Price              float64   `json:"price"`
	IsActive           bool      `json:"isActive"`
	IsPrivate          bool      `json:"isPrivate"`
	Reputation         float64   `json:"reputation"`
	SuccessRate        float64   `json:"successRate"`
	TotalJobsCompleted int       `json:"totalJobsCompleted"`
	WalletAddress      *string   `json:"walletAddress,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
