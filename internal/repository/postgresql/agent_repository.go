package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agent-dispatch-service/internal/entity"
)

const agentColumns = `
id, name, address, description, classification, tags, price, is_active,
is_private, reputation, success_rate, total_jobs_completed, wallet_address,
created_at, updated_at`

type AgentRepository struct {
	pool *pgxpool.Pool
}

func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{pool: pool}
}

func (r *AgentRepository) CreateAgent(ctx context.Context, agent *entity.Agent) (*entity.Agent, error) {
	const q = `
INSERT INTO agents (name, address, description, classification, tags, price,
                    is_active, is_private, wallet_address)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at, updated_at;
`
	created := *agent
	if err := r.pool.QueryRow(ctx, q,
		agent.Name, agent.Address, agent.Description, agent.Classification,
		agent.Tags, agent.Price, agent.IsActive, agent.IsPrivate, agent.WalletAddress,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *AgentRepository) GetAgent(ctx context.Context, id uuid.UUID) (*entity.Agent, error) {
	q := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1;`

	var agent entity.Agent
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&agent.ID, &agent.Name, &agent.Address, &agent.Description,
		&agent.Classification, &agent.Tags, &agent.Price, &agent.IsActive,
		&agent.IsPrivate, &agent.Reputation, &agent.SuccessRate,
		&agent.TotalJobsCompleted, &agent.WalletAddress,
		&agent.CreatedAt, &agent.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("agent %s: %w", id, entity.ErrNotFound)
		}
		return nil, err
	}
	return &agent, nil
}

func (r *AgentRepository) ListAgents(ctx context.Context) ([]entity.Agent, error) {
	q := `SELECT ` + agentColumns + ` FROM agents ORDER BY created_at DESC;`
	return r.queryAgents(ctx, q)
}

// ListEligibleAgents is the matcher's eligibility gate: active, public,
// matching classification, priced at or under maxPrice (the stake ceiling,
// not the job budget).
func (r *AgentRepository) ListEligibleAgents(ctx context.Context, classification string, maxPrice float64) ([]entity.Agent, error) {
	q := `SELECT ` + agentColumns + `
FROM agents
WHERE is_active = TRUE AND is_private = FALSE AND classification = $1 AND price <= $2
ORDER BY created_at ASC;`
	return r.queryAgents(ctx, q, classification, maxPrice)
}

// IncrementAgentCompleted is an atomic counter bump at the store layer; safe
// under concurrent successful dispatches targeting the same agent.
func (r *AgentRepository) IncrementAgentCompleted(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE agents SET total_jobs_completed = total_jobs_completed + 1, updated_at = now() WHERE id = $1;`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agent %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (r *AgentRepository) DeleteAgent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("agent %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (r *AgentRepository) queryAgents(ctx context.Context, q string, args ...any) ([]entity.Agent, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []entity.Agent
	for rows.Next() {
		var agent entity.Agent
		if err := rows.Scan(
			&agent.ID, &agent.Name, &agent.Address, &agent.Description,
			&agent.Classification, &agent.Tags, &agent.Price, &agent.IsActive,
			&agent.IsPrivate, &agent.Reputation, &agent.SuccessRate,
			&agent.TotalJobsCompleted, &agent.WalletAddress,
			&agent.CreatedAt, &agent.UpdatedAt,
		); err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}
