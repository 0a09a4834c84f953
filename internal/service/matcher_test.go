package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-dispatch-service/internal/entity"
)

func seedJob(t *testing.T, jobs *memJobStore, mutate func(*entity.Job)) *entity.Job {
	t.Helper()
	job := &entity.Job{
		Title:       "summarize dataset",
		Category:    "analysis",
		Description: "summarize the attached dataset",
		Tags:        "ml,nlp",
		MaxBudget:   10,
		Priority:    "Normal",
		Status:      entity.StatusOpen,
	}
	if mutate != nil {
		mutate(job)
	}
	created, err := jobs.CreateJob(context.Background(), job)
	require.NoError(t, err)
	return created
}

func seedAgent(t *testing.T, agents *memAgentStore, name, tags string, price float64) *entity.Agent {
	t.Helper()
	created, err := agents.CreateAgent(context.Background(), &entity.Agent{
		Name:           name,
		Address:        "http://" + name + ".local/invoke",
		Classification: "analysis",
		Tags:           tags,
		Price:          price,
		IsActive:       true,
	})
	require.NoError(t, err)
	return created
}

func TestMatcher_RanksByScoreThenPrice(t *testing.T) {
	jobs := newMemJobStore()
	agents := newMemAgentStore()
	dist := newMemDistStore()
	m := NewMatcher(jobs, agents, dist)

	job := seedJob(t, jobs, nil)
	best := seedAgent(t, agents, "best", "ml,nlp", 0.4)          // score 1.0
	second := seedAgent(t, agents, "second", "ml,vision", 0.2)   // score 1/3
	third := seedAgent(t, agents, "third", "ml,vision", 0.3)     // score 1/3, pricier
	fourth := seedAgent(t, agents, "fourth", "robotics", 0.1)    // score 0, cut by the cap

	result, err := m.Match(context.Background(), job.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, result.Agents, 3)
	assert.Equal(t, best.ID, result.Agents[0].ID)
	assert.Equal(t, second.ID, result.Agents[1].ID)
	assert.Equal(t, third.ID, result.Agents[2].ID)
	for i, a := range result.Agents {
		assert.Equal(t, i+1, a.Rank)
		assert.NotEqual(t, fourth.ID, a.ID)
	}

	records, err := dist.ListDistributionRecords(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 4, records[0].TotalAgents)
	assert.Equal(t, 3, records[0].AssignedCount)
	assert.Equal(t, StakeCeiling, records[0].MatchCriteria.StakeAmount)
	assert.Equal(t, job.Title, records[0].JobName)

	got, err := jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusMatched, got.Status)
}

func TestMatcher_SelectionStableAcrossRuns(t *testing.T) {
	// Distinct scores and prices pin the top three regardless of the shuffle.
	for run := 0; run < 10; run++ {
		jobs := newMemJobStore()
		agents := newMemAgentStore()
		dist := newMemDistStore()
		m := NewMatcher(jobs, agents, dist)

		job := seedJob(t, jobs, nil)
		want := make(map[uuid.UUID]bool)
		for i := 0; i < 3; i++ {
			a := seedAgent(t, agents, fmt.Sprintf("top-%d", i), "ml,nlp", 0.1+float64(i)*0.1)
			want[a.ID] = true
		}
		for i := 0; i < 5; i++ {
			seedAgent(t, agents, fmt.Sprintf("filler-%d", i), "robotics", 0.05)
		}

		result, err := m.Match(context.Background(), job.ID)
		require.NoError(t, err)
		require.Len(t, result.Agents, 3)
		for _, a := range result.Agents {
			assert.True(t, want[a.ID], "run %d selected unexpected agent %s", run, a.Name)
		}
	}
}

func TestMatcher_StakeCeilingIgnoresBudget(t *testing.T) {
	jobs := newMemJobStore()
	agents := newMemAgentStore()
	dist := newMemDistStore()
	m := NewMatcher(jobs, agents, dist)

	// A generous budget does not raise the price cutoff.
	job := seedJob(t, jobs, func(j *entity.Job) { j.MaxBudget = 100 })
	cheap := seedAgent(t, agents, "cheap", "ml", 0.5)
	seedAgent(t, agents, "pricey", "ml,nlp", 0.51)

	result, err := m.Match(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, result.Agents, 1)
	assert.Equal(t, cheap.ID, result.Agents[0].ID)
}

func TestMatcher_NoEligibleAgentsFailsJob(t *testing.T) {
	jobs := newMemJobStore()
	agents := newMemAgentStore()
	dist := newMemDistStore()
	m := NewMatcher(jobs, agents, dist)

	job := seedJob(t, jobs, nil)

	result, err := m.Match(context.Background(), job.ID)
	require.ErrorIs(t, err, entity.ErrNoEligibleAgents)
	assert.Nil(t, result)

	got, err := jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, got.Status)

	records, err := dist.ListDistributionRecords(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMatcher_RecordWriteFailureFailsJob(t *testing.T) {
	jobs := newMemJobStore()
	agents := newMemAgentStore()
	dist := newMemDistStore()
	dist.createErr = errors.New("insert blew up")
	m := NewMatcher(jobs, agents, dist)

	job := seedJob(t, jobs, nil)
	seedAgent(t, agents, "only", "ml", 0.1)

	_, err := m.Match(context.Background(), job.ID)
	require.Error(t, err)

	got, err := jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, got.Status)
}

func TestMatcher_SkipsNonOpenJob(t *testing.T) {
	jobs := newMemJobStore()
	m := NewMatcher(jobs, newMemAgentStore(), newMemDistStore())

	job := seedJob(t, jobs, nil)
	jobs.mustStatus(job.ID, entity.StatusMatched)

	result, err := m.Match(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestMatcher_SkipsMissingJob(t *testing.T) {
	m := NewMatcher(newMemJobStore(), newMemAgentStore(), newMemDistStore())

	result, err := m.Match(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestMatcher_ConcurrentClaimIsNoOp(t *testing.T) {
	jobs := newMemJobStore()
	m := NewMatcher(jobs, newMemAgentStore(), newMemDistStore())

	job := seedJob(t, jobs, nil)
	// Another matcher grabs the job between our read and our claim.
	jobs.onUpdateStatus = func(id uuid.UUID, to entity.JobStatus) error {
		if to == entity.StatusMatching {
			return entity.ErrInvalidState
		}
		return nil
	}

	result, err := m.Match(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestTagSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		want  float64
	}{
		{"half overlap", "a,b,c", "b,c,d", 0.5},
		{"identical", "ml,nlp", "ml,nlp", 1.0},
		{"disjoint", "a,b", "c,d", 0},
		{"both empty", "", "", 0},
		{"one empty", "a,b", "", 0},
		{"case and spacing", "ML, NLP", "ml,nlp", 1.0},
		{"duplicates collapse", "a,a,b", "a,b", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TagSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
