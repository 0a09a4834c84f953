package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agent-dispatch-service/internal/entity"
)

// Queue lane priorities, mapped from the job's priority label.
const (
	PriorityLow    = 0
	PriorityNormal = 1
	PriorityHigh   = 2
)

// JobQueue is the small enqueue-only port job creation needs.
type JobQueue interface {
	Enqueue(ctx context.Context, jobID string, priority int) error
}

// CreateJobRequest is the validated submission payload.
type CreateJobRequest struct {
	Title         string  `json:"jobTitle" validate:"required"`
	Category      string  `json:"category" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	Deliverables  string  `json:"deliverables"`
	Tags          string  `json:"tags"`
	MaxBudget     float64 `json:"maxBudget" validate:"gte=0"`
	Priority      string  `json:"priority" validate:"omitempty,oneof=Low Normal High"`
	SkillLevel    string  `json:"skillLevel"`
	WalletAddress *string `json:"walletAddress"`
}

// JobService owns job submission and the thin CRUD surface around it. New
// jobs enter Open and are enqueued for matching on the lane their priority
// label selects.
type JobService struct {
	repo     JobStore
	queue    JobQueue
	validate *validator.Validate
}

func NewJobService(repo JobStore, queue JobQueue) *JobService {
	return &JobService{repo: repo, queue: queue, validate: validator.New()}
}

func (s *JobService) CreateJob(ctx context.Context, req CreateJobRequest) (*entity.Job, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	if req.Priority == "" {
		req.Priority = "Normal"
	}

	job, err := s.repo.CreateJob(ctx, &entity.Job{
		Title:         req.Title,
		Category:      req.Category,
		Description:   req.Description,
		Deliverables:  req.Deliverables,
		Tags:          req.Tags,
		MaxBudget:     req.MaxBudget,
		Priority:      req.Priority,
		SkillLevel:    req.SkillLevel,
		WalletAddress: req.WalletAddress,
		Status:        entity.StatusOpen,
	})
	if err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(ctx, job.ID.String(), LaneFor(req.Priority)); err != nil {
		// The periodic scan will still pick the job up; losing the enqueue
		// only costs latency.
		log.Warn().Err(err).Str("job_id", job.ID.String()).Msg("could not enqueue job for matching")
	}

	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return s.repo.GetJob(ctx, id)
}

func (s *JobService) ListJobs(ctx context.Context) ([]entity.Job, error) {
	return s.repo.ListJobs(ctx)
}

// CancelJob moves the job to Cancelled if its current status allows that.
func (s *JobService) CancelJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	if err := s.repo.UpdateJobStatus(ctx, id, entity.StatusCancelled); err != nil {
		return nil, err
	}
	return s.repo.GetJob(ctx, id)
}

// DeleteJob removes the job together with its distribution records.
func (s *JobService) DeleteJob(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteJob(ctx, id)
}

// LaneFor maps a job priority label onto a queue lane. Unknown labels land on
// the normal lane.
func LaneFor(priority string) int {
	switch priority {
	case "High":
		return PriorityHigh
	case "Low":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// IsValidationError reports whether err came from request validation, so the
// transport can answer 400 instead of 500.
func IsValidationError(err error) bool {
	var verr validator.ValidationErrors
	return errors.As(err, &verr)
}
