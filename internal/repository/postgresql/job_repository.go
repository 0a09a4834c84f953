package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agent-dispatch-service/internal/entity"
)

const jobColumns = `
id, title, category, description, deliverables, tags, max_budget, priority,
skill_level, wallet_address, status, execution_result, executed_at,
execution_error, created_at, updated_at`

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) CreateJob(ctx context.Context, job *entity.Job) (*entity.Job, error) {
	const q = `
INSERT INTO jobs (title, category, description, deliverables, tags, max_budget,
                  priority, skill_level, wallet_address, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at, updated_at;
`
	created := *job
	if err := r.pool.QueryRow(ctx, q,
		job.Title, job.Category, job.Description, job.Deliverables, job.Tags,
		job.MaxBudget, job.Priority, job.SkillLevel, job.WalletAddress, string(job.Status),
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *JobRepository) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1;`
	job, err := scanJob(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, entity.ErrNotFound)
		}
		return nil, err
	}
	return job, nil
}

func (r *JobRepository) ListJobs(ctx context.Context) ([]entity.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC;`
	return r.queryJobs(ctx, q)
}

// ListOpenJobsFIFO returns open jobs oldest first, the order the coordinator
// matches them in.
func (r *JobRepository) ListOpenJobsFIFO(ctx context.Context) ([]entity.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE status = $1 ORDER BY created_at ASC;`
	return r.queryJobs(ctx, q, string(entity.StatusOpen))
}

func (r *JobRepository) queryJobs(ctx context.Context, q string, args ...any) ([]entity.Job, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []entity.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// UpdateJobStatus moves the job to `to` only when its current status is a
// legal predecessor; the conditional UPDATE makes the check and the write one
// atomic statement. 0 affected rows means either a missing job or an illegal
// transition, told apart with a follow-up read.
func (r *JobRepository) UpdateJobStatus(ctx context.Context, id uuid.UUID, to entity.JobStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown status %q: %w", to, entity.ErrInvalidState)
	}
	preds := entity.AllowedPredecessors(to)
	from := make([]string, len(preds))
	for i, p := range preds {
		from[i] = string(p)
	}

	const q = `UPDATE jobs SET status = $2, updated_at = now() WHERE id = $1 AND status = ANY($3);`
	tag, err := r.pool.Exec(ctx, q, id, string(to), from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.explainStatusConflict(ctx, id, to)
}

// CompleteJob is the reconciler's terminal transition: In Progress ->
// Completed with executedAt stamped and executionError cleared, atomically.
func (r *JobRepository) CompleteJob(ctx context.Context, id uuid.UUID, executedAt time.Time) error {
	const q = `
UPDATE jobs
SET status = $2, executed_at = $3, execution_error = NULL, updated_at = now()
WHERE id = $1 AND status = $4;
`
	tag, err := r.pool.Exec(ctx, q, id, string(entity.StatusCompleted), executedAt, string(entity.StatusInProgress))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.explainStatusConflict(ctx, id, entity.StatusCompleted)
}

func (r *JobRepository) explainStatusConflict(ctx context.Context, id uuid.UUID, to entity.JobStatus) error {
	var current string
	err := r.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1;`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("job %s: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("job %s: %s -> %s: %w", id, current, to, entity.ErrInvalidState)
}

// MergeExecutionResult upserts one agent's outcome into the jsonb result map
// in a single statement. Concurrent dispatchers for sibling agents serialize
// on the row here, so no update is ever lost to a read-modify-write race.
func (r *JobRepository) MergeExecutionResult(ctx context.Context, jobID uuid.UUID, agentID string, outcome entity.AgentOutcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	const q = `
UPDATE jobs
SET execution_result = COALESCE(execution_result, '{}'::jsonb) || jsonb_build_object($2::text, $3::jsonb),
    updated_at = now()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, q, jobID, agentID, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", jobID, entity.ErrNotFound)
	}
	return nil
}

// ReopenFailedJob deletes the job's distribution records and resets
// Failed -> Open in one transaction, so a retried job never keeps orphaned
// records from the failed attempt.
func (r *JobRepository) ReopenFailedJob(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM job_distribution_records WHERE job_id = $1;`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE jobs SET status = $2, updated_at = now() WHERE id = $1 AND status = $3;`,
			id, string(entity.StatusOpen), string(entity.StatusFailed),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var current string
			err := tx.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1;`, id).Scan(&current)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("job %s: %w", id, entity.ErrNotFound)
			}
			if err != nil {
				return err
			}
			return fmt.Errorf("job %s: %s -> Open: %w", id, current, entity.ErrInvalidState)
		}
		return nil
	})
}

// DeleteJob removes the job and its distribution records transactionally.
func (r *JobRepository) DeleteJob(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM job_distribution_records WHERE job_id = $1;`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1;`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("job %s: %w", id, entity.ErrNotFound)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*entity.Job, error) {
	var (
		job         entity.Job
		statusText  string
		resultBytes []byte
	)
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Category,
		&job.Description,
		&job.Deliverables,
		&job.Tags,
		&job.MaxBudget,
		&job.Priority,
		&job.SkillLevel,
		&job.WalletAddress,
		&statusText,
		&resultBytes, // NULL => nil
		&job.ExecutedAt,
		&job.ExecutionError,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}

	job.Status = entity.JobStatus(statusText)
	if len(resultBytes) > 0 {
		if err := json.Unmarshal(resultBytes, &job.ExecutionResult); err != nil {
			return nil, fmt.Errorf("decode execution result for job %s: %w", job.ID, err)
		}
	}
	return &job, nil
}
