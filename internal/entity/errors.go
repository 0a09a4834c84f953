package entity

import "errors"

// Domain error taxonomy. Services and stores wrap these with context; the HTTP
// layer maps them to response codes with errors.Is.
var (
	// ErrNotFound: a job or agent id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: an operation's status precondition does not hold; the
	// job row is left untouched.
	ErrInvalidState = errors.New("invalid job state")

	// ErrNoEligibleAgents: the matcher found zero candidates. The job has been
	// moved to Failed and can only be recovered through the retry path.
	ErrNoEligibleAgents = errors.New("no eligible agents")

	// ErrNoDistribution: no distribution records exist for the job.
	ErrNoDistribution = errors.New("no distribution records")

	// ErrNoCompletedOutcome: the selected agent has no Completed entry in the
	// job's execution-result map.
	ErrNoCompletedOutcome = errors.New("selected agent has no completed result")
)
