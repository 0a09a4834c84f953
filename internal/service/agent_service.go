package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"agent-dispatch-service/internal/entity"
)

// CreateAgentRequest is the validated agent registration payload.
type CreateAgentRequest struct {
	Name           string  `json:"agentName" validate:"required"`
	Address        string  `json:"agentAddress" validate:"required,url"`
	Description    string  `json:"description"`
	Classification string  `json:"agentClassification" validate:"required"`
	Tags           string  `json:"tags"`
	Price          float64 `json:"price" validate:"gte=0"`
	IsActive       bool    `json:"isActive"`
	IsPrivate      bool    `json:"isPrivate"`
	WalletAddress  *string `json:"walletAddress"`
}

// AgentService is the thin registration/CRUD surface for agents.
type AgentService struct {
	repo     AgentStore
	validate *validator.Validate
}

func NewAgentService(repo AgentStore) *AgentService {
	return &AgentService{repo: repo, validate: validator.New()}
}

func (s *AgentService) CreateAgent(ctx context.Context, req CreateAgentRequest) (*entity.Agent, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid agent: %w", err)
	}
	return s.repo.CreateAgent(ctx, &entity.Agent{
		Name:           req.Name,
		Address:        req.Address,
		Description:    req.Description,
		Classification: req.Classification,
		Tags:           req.Tags,
		Price:          req.Price,
		IsActive:       req.IsActive,
		IsPrivate:      req.IsPrivate,
		WalletAddress:  req.WalletAddress,
	})
}

func (s *AgentService) GetAgent(ctx context.Context, id uuid.UUID) (*entity.Agent, error) {
	return s.repo.GetAgent(ctx, id)
}

func (s *AgentService) ListAgents(ctx context.Context) ([]entity.Agent, error) {
	return s.repo.ListAgents(ctx)
}

func (s *AgentService) DeleteAgent(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAgent(ctx, id)
}
