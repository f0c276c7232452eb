package services

import (
	"context"

	"github.com/ogforum/excovote/internal/errors"
	"github.com/ogforum/excovote/internal/logger"
	"github.com/ogforum/excovote/internal/repository"
)

// GuardServiceRepository defines the repository methods needed by GuardService
type GuardServiceRepository interface {
	VoterOnActiveRoster(ctx context.Context, fullName string) (bool, error)
	HasSubmission(ctx context.Context, voterName string) (bool, error)
}

// GuardService decides whether a voter may submit nominations. It fails
// closed: when roster or submission state cannot be read, the answer is
// no. The unique index on voter_submissions remains the authoritative
// defense; this check exists to reject early with a clear message.
type GuardService struct {
	log  logger.Logger
	repo GuardServiceRepository
}

// NewGuardService creates a new GuardService
func NewGuardService(log logger.Logger, repo GuardServiceRepository) *GuardService {
	return &GuardService{log: log, repo: repo}
}

// Check returns nil when voterName is on the active roster and has not
// yet submitted. Any storage failure blocks the submission.
func (s *GuardService) Check(ctx context.Context, voterName string) error {
	eligible, err := s.repo.VoterOnActiveRoster(ctx, voterName)
	if err != nil {
		s.log.Error("Roster check failed", "voter_name", voterName, "error", err)
		if repository.IsAccessDenied(err) {
			return errors.AccessDenied("submission system is not authorized to read the roster")
		}
		return errors.Unavailable(ErrGuardUnavailable.Message, err)
	}
	if !eligible {
		return errors.ValidationField("voter_name", ErrNotOnRoster.Message)
	}

	submitted, err := s.repo.HasSubmission(ctx, voterName)
	if err != nil {
		s.log.Error("Submission check failed", "voter_name", voterName, "error", err)
		if repository.IsAccessDenied(err) {
			return errors.AccessDenied("submission system is not authorized to read submissions")
		}
		return errors.Unavailable(ErrGuardUnavailable.Message, err)
	}
	if submitted {
		return errors.Conflict(ErrAlreadyVoted.Message)
	}

	return nil
}
