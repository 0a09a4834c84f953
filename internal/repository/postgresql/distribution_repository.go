package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agent-dispatch-service/internal/entity"
)

const distColumns = `
id, job_id, job_name, assigned_agent_id, assigned_agent_name, match_criteria,
total_agents, assigned_count, response_count, created_at`

type DistributionRepository struct {
	pool *pgxpool.Pool
}

func NewDistributionRepository(pool *pgxpool.Pool) *DistributionRepository {
	return &DistributionRepository{pool: pool}
}

// CreateDistributionRecords inserts the matcher's selections in one
// transaction: either every selected agent gets a record or none does.
func (r *DistributionRepository) CreateDistributionRecords(ctx context.Context, records []entity.DistributionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `
INSERT INTO job_distribution_records
  (id, job_id, job_name, assigned_agent_id, assigned_agent_name,
   match_criteria, total_agents, assigned_count, response_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
		for _, rec := range records {
			criteria, err := json.Marshal(rec.MatchCriteria)
			if err != nil {
				return fmt.Errorf("marshal match criteria: %w", err)
			}
			if _, err := tx.Exec(ctx, q,
				rec.ID, rec.JobID, rec.JobName, rec.AssignedAgentID, rec.AssignedAgentName,
				criteria, rec.TotalAgents, rec.AssignedCount, rec.ResponseCount, rec.CreatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListDistributionRecords returns the job's records in rank (creation) order.
func (r *DistributionRepository) ListDistributionRecords(ctx context.Context, jobID uuid.UUID) ([]entity.DistributionRecord, error) {
	q := `SELECT ` + distColumns + ` FROM job_distribution_records WHERE job_id = $1 ORDER BY created_at ASC, (match_criteria->>'rank')::int ASC;`
	return r.queryRecords(ctx, q, jobID)
}

// IncrementResponseCount bumps the record's response counter after its agent
// answered.
func (r *DistributionRepository) IncrementResponseCount(ctx context.Context, jobID, agentID uuid.UUID) error {
	const q = `
UPDATE job_distribution_records
SET response_count = response_count + 1
WHERE job_id = $1 AND assigned_agent_id = $2;
`
	tag, err := r.pool.Exec(ctx, q, jobID, agentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("distribution record for job %s agent %s: %w", jobID, agentID, entity.ErrNotFound)
	}
	return nil
}

// ListPendingExecution returns records whose job is still Matched, oldest
// first.
func (r *DistributionRepository) ListPendingExecution(ctx context.Context, limit int) ([]entity.DistributionRecord, error) {
	const q = `
SELECT r.id, r.job_id, r.job_name, r.assigned_agent_id, r.assigned_agent_name,
       r.match_criteria, r.total_agents, r.assigned_count, r.response_count, r.created_at
FROM job_distribution_records r
JOIN jobs j ON j.id = r.job_id
WHERE j.status = $1
ORDER BY r.created_at ASC
LIMIT $2;`
	return r.queryRecords(ctx, q, string(entity.StatusMatched), limit)
}

func (r *DistributionRepository) CountPendingExecution(ctx context.Context) (int, error) {
	const q = `
SELECT COUNT(*)
FROM job_distribution_records r
JOIN jobs j ON j.id = r.job_id
WHERE j.status = $1;
`
	var n int
	if err := r.pool.QueryRow(ctx, q, string(entity.StatusMatched)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *DistributionRepository) queryRecords(ctx context.Context, q string, args ...any) ([]entity.DistributionRecord, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []entity.DistributionRecord
	for rows.Next() {
		var (
			rec           entity.DistributionRecord
			criteriaBytes []byte
		)
		if err := rows.Scan(
			&rec.ID, &rec.JobID, &rec.JobName, &rec.AssignedAgentID,
			&rec.AssignedAgentName, &criteriaBytes, &rec.TotalAgents,
			&rec.AssignedCount, &rec.ResponseCount, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(criteriaBytes) > 0 {
			if err := json.Unmarshal(criteriaBytes, &rec.MatchCriteria); err != nil {
				return nil, fmt.Errorf("decode match criteria for record %s: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
