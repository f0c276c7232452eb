package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ogforum/excovote/internal/errors"
	"github.com/ogforum/excovote/internal/logger"
	"github.com/ogforum/excovote/internal/models"
	"github.com/ogforum/excovote/internal/repository"
)

// MaxStatementLength caps the optional free-text statement, in runes
const MaxStatementLength = 300

// Submit result statuses
const (
	StatusAccepted          = "accepted"
	StatusNeedsConfirmation = "needs_confirmation"
)

// NominationServiceRepository defines the repository methods needed by NominationService
type NominationServiceRepository interface {
	repository.SubmissionRepository
	repository.NominationRepository
}

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastSubmissionReceived(submissions int)
}

// SubmitResult is the outcome of a submission attempt
type SubmitResult struct {
	Status    string        `json:"status"`
	Conflicts []*Resolution `json:"conflicts,omitempty"`
}

// NominationService orchestrates a nomination submission from form
// payload to committed rows. The commit runs in two phases with no
// compensation: first the submission marker, then the nomination row.
// A failure after phase one leaves a marker without picks; those are
// cleared by Reconcile rather than rolled back inline, so the
// already-voted guarantee never weakens.
type NominationService struct {
	log         logger.Logger
	repo        NominationServiceRepository
	guard       *GuardService
	dedup       *DedupService
	broadcaster Broadcaster
}

// NewNominationService creates a new NominationService
func NewNominationService(log logger.Logger, repo NominationServiceRepository, guard *GuardService, dedup *DedupService) *NominationService {
	return &NominationService{
		log:   log,
		repo:  repo,
		guard: guard,
		dedup: dedup,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *NominationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit validates and commits a nomination set. When similar candidate
// names exist for any pick the submission is returned unconfirmed with
// the conflicts; nothing is written until every conflict has a decision.
func (s *NominationService) Submit(ctx context.Context, sub models.NominationSubmission) (*SubmitResult, error) {
	return s.submit(ctx, sub, nil)
}

// Resolve commits a previously flagged submission using the submitter's
// decisions, keyed by position
func (s *NominationService) Resolve(ctx context.Context, sub models.NominationSubmission, decisions map[string]*Decision) (*SubmitResult, error) {
	return s.submit(ctx, sub, decisions)
}

func (s *NominationService) submit(ctx context.Context, sub models.NominationSubmission, decisions map[string]*Decision) (*SubmitResult, error) {
	normalize(&sub)

	if err := validate(sub); err != nil {
		return nil, err
	}

	if err := s.guard.Check(ctx, sub.VoterName); err != nil {
		return nil, err
	}

	// Resolve every pick before writing anything
	resolutions := make([]*Resolution, 0, len(models.Positions))
	var conflicts []*Resolution
	for _, pos := range models.Positions {
		res, err := s.dedup.Resolve(ctx, sub.Nominee(pos.Key), pos.Key)
		if err != nil {
			return nil, err
		}
		if res.Status == ResolutionAmbiguous && decisions[pos.Key] == nil {
			conflicts = append(conflicts, res)
			continue
		}
		resolved, err := ApplyDecision(res, decisions[pos.Key])
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, resolved)
	}
	if len(conflicts) > 0 {
		return &SubmitResult{Status: StatusNeedsConfirmation, Conflicts: conflicts}, nil
	}

	// Phase one: submission marker. The unique index is the backstop
	// against a concurrent submit under the same name.
	subID, err := s.repo.CreateSubmission(ctx, sub.VoterName)
	if err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.Conflict(ErrAlreadyVoted.Message)
		}
		s.log.Error("Submission marker write failed", "voter_name", sub.VoterName, "error", err)
		if repository.IsAccessDenied(err) {
			return nil, errors.AccessDenied("submission system is not authorized to write submissions")
		}
		return nil, errors.Unavailable("submission could not be recorded, please try again", err)
	}

	// Phase two: the nomination row. Past this point the voter has
	// spent their one submission; a failure here is a partial commit
	// that Reconcile cleans up later.
	if _, err := s.repo.CreateNomination(ctx, sub); err != nil {
		s.log.Error("Partial commit: submission marker without nomination",
			"submission_id", subID, "voter_name", sub.VoterName, "error", err)
		return nil, errors.Wrap(err, errors.ErrInternal, "nomination could not be saved")
	}

	// Tally updates are derived from the committed nomination; a
	// failure here is repairable and must not fail the submission.
	for _, res := range resolutions {
		if err := s.dedup.RecordCandidate(ctx, res); err != nil {
			s.log.Error("Candidate tally update failed",
				"position", res.Position, "name", res.Name, "error", err)
		}
	}

	s.log.Info("Nomination accepted", "voter_name", sub.VoterName)

	if s.broadcaster != nil {
		if count, err := s.repo.CountSubmissions(ctx); err == nil {
			s.broadcaster.BroadcastSubmissionReceived(count)
		}
	}

	return &SubmitResult{Status: StatusAccepted}, nil
}

func normalize(sub *models.NominationSubmission) {
	sub.VoterName = strings.TrimSpace(sub.VoterName)
	for _, pos := range models.Positions {
		sub.SetNominee(pos.Key, strings.Join(strings.Fields(sub.Nominee(pos.Key)), " "))
	}
	sub.Statement = strings.TrimSpace(sub.Statement)
}

func validate(sub models.NominationSubmission) error {
	if sub.VoterName == "" {
		return errors.ValidationField("voter_name", "voter name is required")
	}
	for _, pos := range models.Positions {
		if sub.Nominee(pos.Key) == "" {
			return errors.ValidationField(pos.Key, "a nominee is required for "+pos.Label)
		}
	}
	if utf8.RuneCountInString(sub.Statement) > MaxStatementLength {
		return errors.ValidationField("statement", "statement must be 300 characters or fewer")
	}
	return nil
}

// ListNominations returns every committed nomination for admin review
func (s *NominationService) ListNominations(ctx context.Context) ([]models.Nomination, error) {
	nominations, err := s.repo.ListNominations(ctx)
	if err != nil {
		return nil, mapStorageErr(err, "read nominations")
	}
	return nominations, nil
}
