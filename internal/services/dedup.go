package services

import (
	"context"

	"github.com/ogforum/excovote/internal/errors"
	"github.com/ogforum/excovote/internal/logger"
	"github.com/ogforum/excovote/internal/repository"
	"github.com/ogforum/excovote/pkg/matchsvc"
)

// Resolution statuses
const (
	ResolutionNew       = "new"       // no stored name is close, a new candidate will be created
	ResolutionMatched   = "matched"   // an exact or confirmed match to a stored candidate
	ResolutionAmbiguous = "ambiguous" // similar names exist, a human must decide
)

// Decision actions
const (
	DecisionUseExisting = "use_existing"
	DecisionCreateNew   = "create_new"
)

// Resolution is the dedup outcome for one nominated name
type Resolution struct {
	Position      string                `json:"position"`
	Name          string                `json:"name"`
	Status        string                `json:"status"`
	CandidateID   string                `json:"candidate_id,omitempty"`
	CanonicalName string                `json:"canonical_name,omitempty"`
	Suggestions   []matchsvc.Suggestion `json:"suggestions,omitempty"`
}

// Decision is a human's answer to an ambiguous resolution
type Decision struct {
	Action      string `json:"action"`
	CandidateID string `json:"candidate_id,omitempty"`
}

// DedupServiceRepository defines the repository methods needed by DedupService
type DedupServiceRepository interface {
	repository.CandidateRepository
}

// DedupService matches nominated names against stored candidates so
// spelling variations of one person are counted together. Similar but
// not identical names are never merged automatically; they are flagged
// for the submitter to confirm.
type DedupService struct {
	log     logger.Logger
	repo    DedupServiceRepository
	matcher matchsvc.Client
}

// NewDedupService creates a new DedupService
func NewDedupService(log logger.Logger, repo DedupServiceRepository, matcher matchsvc.Client) *DedupService {
	return &DedupService{log: log, repo: repo, matcher: matcher}
}

// Resolve classifies one nominated name. A matcher failure blocks the
// submission rather than risking a silent duplicate candidate.
func (s *DedupService) Resolve(ctx context.Context, name, position string) (*Resolution, error) {
	suggestions, err := s.matcher.FindSimilar(ctx, name, position)
	if err != nil {
		s.log.Error("Name matcher failed", "name", name, "position", position, "error", err)
		return nil, errors.Unavailable(ErrMatcherUnavailable.Message, err)
	}

	res := &Resolution{Position: position, Name: name}

	if len(suggestions) > 0 && suggestions[0].Distance == 0 {
		res.Status = ResolutionMatched
		res.CandidateID = suggestions[0].CandidateID
		res.CanonicalName = suggestions[0].CanonicalName
		return res, nil
	}

	if len(suggestions) > 0 {
		res.Status = ResolutionAmbiguous
		res.Suggestions = suggestions
		return res, nil
	}

	res.Status = ResolutionNew
	return res, nil
}

// ApplyDecision converts an ambiguous resolution into a definite one
// using the submitter's answer. It is pure: no storage access, no
// side effects. Resolutions that are already definite pass through
// unchanged and the decision is ignored.
func ApplyDecision(res *Resolution, decision *Decision) (*Resolution, error) {
	if res.Status != ResolutionAmbiguous {
		return res, nil
	}
	if decision == nil {
		return nil, errors.ValidationField(res.Position, ErrUnresolvedDecision.Message)
	}

	switch decision.Action {
	case DecisionUseExisting:
		for _, sug := range res.Suggestions {
			if sug.CandidateID == decision.CandidateID {
				return &Resolution{
					Position:      res.Position,
					Name:          res.Name,
					Status:        ResolutionMatched,
					CandidateID:   sug.CandidateID,
					CanonicalName: sug.CanonicalName,
				}, nil
			}
		}
		return nil, errors.ValidationField(res.Position, "decision candidate is not one of the suggested matches")
	case DecisionCreateNew:
		return &Resolution{
			Position: res.Position,
			Name:     res.Name,
			Status:   ResolutionNew,
		}, nil
	default:
		return nil, errors.ValidationField(res.Position, "decision action must be use_existing or create_new")
	}
}

// RecordCandidate applies a definite resolution to the candidate store:
// matched resolutions increment the existing candidate and remember the
// submitted spelling, new resolutions create a candidate with one vote.
func (s *DedupService) RecordCandidate(ctx context.Context, res *Resolution) error {
	switch res.Status {
	case ResolutionMatched:
		if err := s.repo.IncrementCandidateVotes(ctx, res.CandidateID); err != nil {
			return err
		}
		if res.Name != res.CanonicalName {
			if err := s.repo.AddNameVariation(ctx, res.CandidateID, res.Name); err != nil {
				// The vote is already counted; losing the variation
				// record is not worth failing the submission over.
				s.log.Warn("Failed to record name variation",
					"candidate_id", res.CandidateID, "variation", res.Name, "error", err)
			}
		}
		return nil

	case ResolutionNew:
		id, err := s.repo.CreateCandidate(ctx, res.Position, res.Name)
		if err == repository.ErrDuplicate {
			// Another submission created this candidate between our
			// match lookup and now. Count the vote against it.
			existing, getErr := s.repo.GetCandidate(ctx, res.Position, res.Name)
			if getErr != nil {
				return getErr
			}
			id = existing.ID
		} else if err != nil {
			return err
		}
		return s.repo.IncrementCandidateVotes(ctx, id)

	default:
		return errors.ValidationField(res.Position, ErrUnresolvedDecision.Message)
	}
}
