package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"agent-dispatch-service/internal/entity"
)

// StakeCeiling is the fixed system-wide price cutoff for agent eligibility.
// It is deliberately independent of a job's declared maxBudget: the budget
// field is advisory, the stake is what agents actually lock up.
const StakeCeiling = 0.5

const (
	maxSelectedAgents = 3
	matchAlgorithm    = "shuffle_budget_category_tags"
)

// ScoredAgent is an eligible agent annotated with its match score and rank.
type ScoredAgent struct {
	entity.Agent
	MatchScore    float64 `json:"matchScore"`
	CategoryMatch int     `json:"categoryMatch"`
	Rank          int     `json:"rank"`
}

// MatchResult is what a successful matching pass produced.
type MatchResult struct {
	Job     *entity.Job                 `json:"job"`
	Agents  []ScoredAgent               `json:"agents"`
	Records []entity.DistributionRecord `json:"matchRecords"`
}

// Matcher selects up to three eligible agents for an open job and persists one
// distribution record per selection.
type Matcher struct {
	jobs   JobStore
	agents AgentStore
	dist   DistributionStore
}

func NewMatcher(jobs JobStore, agents AgentStore, dist DistributionStore) *Matcher {
	return &Matcher{jobs: jobs, agents: agents, dist: dist}
}

// Match runs the matching algorithm for one job. A missing job, a job that is
// not Open, or a job another matcher already claimed all yield (nil, nil):
// stale triggers are idempotent no-ops. Any failure after the job entered
// Matching forces it to Failed before the error propagates, so a job is never
// left stuck mid-match.
func (m *Matcher) Match(ctx context.Context, jobID uuid.UUID) (*MatchResult, error) {
	job, err := m.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			log.Warn().Str("job_id", jobID.String()).Msg("match skipped: job does not exist")
			return nil, nil
		}
		return nil, err
	}
	if job.Status != entity.StatusOpen {
		log.Warn().Str("job_id", jobID.String()).Str("status", string(job.Status)).Msg("match skipped: job not open")
		return nil, nil
	}

	// Persist the Matching transition first so concurrent triggers observe it.
	if err := m.jobs.UpdateJobStatus(ctx, jobID, entity.StatusMatching); err != nil {
		if errors.Is(err, entity.ErrInvalidState) {
			// A concurrent matcher claimed the job between the read and the
			// conditional update.
			return nil, nil
		}
		return nil, err
	}

	result, err := m.run(ctx, job)
	if err != nil {
		if failErr := m.jobs.UpdateJobStatus(ctx, jobID, entity.StatusFailed); failErr != nil {
			log.Error().Err(failErr).Str("job_id", jobID.String()).Msg("could not mark job failed after match error")
		}
		return nil, err
	}
	return result, nil
}

func (m *Matcher) run(ctx context.Context, job *entity.Job) (*MatchResult, error) {
	pool, err := m.agents.ListEligibleAgents(ctx, job.Category, StakeCeiling)
	if err != nil {
		return nil, fmt.Errorf("list eligible agents: %w", err)
	}
	if len(pool) == 0 {
		log.Warn().
			Str("job_id", job.ID.String()).
			Str("category", job.Category).
			Float64("stake_ceiling", StakeCeiling).
			Msg("no eligible agents")
		return nil, fmt.Errorf("job %s (category %q): %w", job.ID, job.Category, entity.ErrNoEligibleAgents)
	}

	// Shuffle before ranking so full ties resolve randomly instead of by
	// storage order; the sort below is stable with respect to this order.
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	scored := make([]ScoredAgent, 0, len(pool))
	for _, agent := range pool {
		categoryMatch := 0
		if agent.Classification == job.Category {
			categoryMatch = 1
		}
		scored = append(scored, ScoredAgent{
			Agent:         agent,
			MatchScore:    TagSimilarity(job.Tags, agent.Tags),
			CategoryMatch: categoryMatch,
		})
	}

	// Category match first, then tag similarity, then cheapest.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].CategoryMatch != scored[j].CategoryMatch {
			return scored[i].CategoryMatch > scored[j].CategoryMatch
		}
		if scored[i].MatchScore != scored[j].MatchScore {
			return scored[i].MatchScore > scored[j].MatchScore
		}
		return scored[i].Price < scored[j].Price
	})

	selected := scored[:min(maxSelectedAgents, len(scored))]

	now := time.Now().UTC()
	records := make([]entity.DistributionRecord, 0, len(selected))
	for i := range selected {
		selected[i].Rank = i + 1
		records = append(records, entity.DistributionRecord{
			ID:                uuid.New(),
			JobID:             job.ID,
			JobName:           job.Title,
			AssignedAgentID:   selected[i].ID,
			AssignedAgentName: selected[i].Name,
			MatchCriteria: entity.MatchCriteria{
				Category:      job.Category,
				Tags:          job.Tags,
				JobMaxBudget:  job.MaxBudget,
				StakeAmount:   StakeCeiling,
				AgentPrice:    selected[i].Price,
				MatchScore:    selected[i].MatchScore,
				CategoryMatch: selected[i].CategoryMatch,
				Rank:          i + 1,
				Algorithm:     matchAlgorithm,
			},
			TotalAgents:   len(pool),
			AssignedCount: len(selected),
			ResponseCount: 0,
			CreatedAt:     now,
		})
	}

	if err := m.dist.CreateDistributionRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("create distribution records: %w", err)
	}
	if err := m.jobs.UpdateJobStatus(ctx, job.ID, entity.StatusMatched); err != nil {
		return nil, err
	}
	job.Status = entity.StatusMatched

	log.Info().
		Str("job_id", job.ID.String()).
		Int("eligible", len(pool)).
		Int("selected", len(selected)).
		Msg("job matched")

	return &MatchResult{Job: job, Agents: selected, Records: records}, nil
}

// TagSimilarity is the Jaccard similarity of two comma-separated tag lists,
// case-insensitive and trimmed. Two empty tag sets score 0, not NaN.
func TagSimilarity(jobTags, agentTags string) float64 {
	a := splitTags(jobTags)
	b := splitTags(agentTags)

	union := lo.Union(a, b)
	if len(union) == 0 {
		return 0
	}
	return float64(len(lo.Intersect(a, b))) / float64(len(union))
}

func splitTags(s string) []string {
	parts := strings.Split(strings.ToLower(s), ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return lo.Uniq(tags)
}
