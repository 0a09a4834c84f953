package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agent-dispatch-service/internal/entity"
	"agent-dispatch-service/internal/service"
)

// MatchRunner is the slice of the matcher the processor needs.
type MatchRunner interface {
	Match(ctx context.Context, jobID uuid.UUID) (*service.MatchResult, error)
}

// Processor turns one claimed queue entry into one matcher run.
type Processor struct {
	matcher MatchRunner
}

func NewProcessor(matcher MatchRunner) *Processor {
	return &Processor{matcher: matcher}
}

// Process matches the job named by the queue entry. Business outcomes (stale
// triggers, empty eligible pools) are not worker errors: the job is
// already in the state the matcher left it, so the entry can be Acked.
func (p *Processor) Process(ctx context.Context, jobID string) error {
	start := time.Now()

	id, err := uuid.Parse(jobID)
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("bad job id on queue")
		return err
	}

	result, err := p.matcher.Match(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNoEligibleAgents) {
			log.Warn().Str("job_id", jobID).Msg("no eligible agents; job failed")
			return nil
		}
		return err
	}

	if result == nil {
		// Stale or duplicate delivery; the matcher no-oped.
		return nil
	}

	log.Info().
		Str("job_id", jobID).
		Int("agents", len(result.Agents)).
		Dur("duration", time.Since(start)).
		Msg("job matched from queue")
	return nil
}
