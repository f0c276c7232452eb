package mock

import (
	"context"
	"time"

	"github.com/ogforum/excovote/internal/models"
	"github.com/ogforum/excovote/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CreateNominationError = errors.New("database error")
//	svc := services.NewNominationService(log, mockRepo, guard, dedup, nil)
//	_, err := svc.Submit(ctx, sub)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Roster Errors =====
	ListActiveVotersError    error
	ListAllVotersError       error
	CreateEligibleVoterError error
	SetVoterActiveError      error
	DeleteEligibleVoterError error
	VoterOnActiveRosterError error
	CountActiveVotersError   error

	// ===== Submission Errors =====
	HasSubmissionError           error
	CreateSubmissionError        error
	ListSubmissionsError         error
	CountSubmissionsError        error
	DeleteOrphanSubmissionsError error

	// ===== Nomination Errors =====
	CreateNominationError error
	ListNominationsError  error
	CountNominationsError error

	// ===== Candidate Errors =====
	GetCandidateError            error
	CreateCandidateError         error
	IncrementCandidateVotesError error
	ListCandidatesError          error
	AddNameVariationError        error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Roster Methods =====

func (m *Repository) ListActiveVoters(ctx context.Context) ([]models.EligibleVoter, error) {
	if m.ListActiveVotersError != nil {
		return nil, m.ListActiveVotersError
	}
	return m.FullRepository.ListActiveVoters(ctx)
}

func (m *Repository) ListAllVoters(ctx context.Context) ([]models.EligibleVoter, error) {
	if m.ListAllVotersError != nil {
		return nil, m.ListAllVotersError
	}
	return m.FullRepository.ListAllVoters(ctx)
}

func (m *Repository) CreateEligibleVoter(ctx context.Context, fullName, memberID string) (string, error) {
	if m.CreateEligibleVoterError != nil {
		return "", m.CreateEligibleVoterError
	}
	return m.FullRepository.CreateEligibleVoter(ctx, fullName, memberID)
}

func (m *Repository) SetVoterActive(ctx context.Context, id string, active bool) error {
	if m.SetVoterActiveError != nil {
		return m.SetVoterActiveError
	}
	return m.FullRepository.SetVoterActive(ctx, id, active)
}

func (m *Repository) DeleteEligibleVoter(ctx context.Context, id string) error {
	if m.DeleteEligibleVoterError != nil {
		return m.DeleteEligibleVoterError
	}
	return m.FullRepository.DeleteEligibleVoter(ctx, id)
}

func (m *Repository) VoterOnActiveRoster(ctx context.Context, fullName string) (bool, error) {
	if m.VoterOnActiveRosterError != nil {
		return false, m.VoterOnActiveRosterError
	}
	return m.FullRepository.VoterOnActiveRoster(ctx, fullName)
}

func (m *Repository) CountActiveVoters(ctx context.Context) (int, error) {
	if m.CountActiveVotersError != nil {
		return 0, m.CountActiveVotersError
	}
	return m.FullRepository.CountActiveVoters(ctx)
}

// ===== Submission Methods =====

func (m *Repository) HasSubmission(ctx context.Context, voterName string) (bool, error) {
	if m.HasSubmissionError != nil {
		return false, m.HasSubmissionError
	}
	return m.FullRepository.HasSubmission(ctx, voterName)
}

func (m *Repository) CreateSubmission(ctx context.Context, voterName string) (string, error) {
	if m.CreateSubmissionError != nil {
		return "", m.CreateSubmissionError
	}
	return m.FullRepository.CreateSubmission(ctx, voterName)
}

func (m *Repository) ListSubmissions(ctx context.Context) ([]models.VoterSubmission, error) {
	if m.ListSubmissionsError != nil {
		return nil, m.ListSubmissionsError
	}
	return m.FullRepository.ListSubmissions(ctx)
}

func (m *Repository) CountSubmissions(ctx context.Context) (int, error) {
	if m.CountSubmissionsError != nil {
		return 0, m.CountSubmissionsError
	}
	return m.FullRepository.CountSubmissions(ctx)
}

func (m *Repository) DeleteOrphanSubmissions(ctx context.Context, olderThan time.Time) (int, error) {
	if m.DeleteOrphanSubmissionsError != nil {
		return 0, m.DeleteOrphanSubmissionsError
	}
	return m.FullRepository.DeleteOrphanSubmissions(ctx, olderThan)
}

// ===== Nomination Methods =====

func (m *Repository) CreateNomination(ctx context.Context, sub models.NominationSubmission) (string, error) {
	if m.CreateNominationError != nil {
		return "", m.CreateNominationError
	}
	return m.FullRepository.CreateNomination(ctx, sub)
}

func (m *Repository) ListNominations(ctx context.Context) ([]models.Nomination, error) {
	if m.ListNominationsError != nil {
		return nil, m.ListNominationsError
	}
	return m.FullRepository.ListNominations(ctx)
}

func (m *Repository) CountNominations(ctx context.Context) (int, error) {
	if m.CountNominationsError != nil {
		return 0, m.CountNominationsError
	}
	return m.FullRepository.CountNominations(ctx)
}

// ===== Candidate Methods =====

func (m *Repository) GetCandidate(ctx context.Context, position, canonicalName string) (*models.Candidate, error) {
	if m.GetCandidateError != nil {
		return nil, m.GetCandidateError
	}
	return m.FullRepository.GetCandidate(ctx, position, canonicalName)
}

func (m *Repository) CreateCandidate(ctx context.Context, position, canonicalName string) (string, error) {
	if m.CreateCandidateError != nil {
		return "", m.CreateCandidateError
	}
	return m.FullRepository.CreateCandidate(ctx, position, canonicalName)
}

func (m *Repository) IncrementCandidateVotes(ctx context.Context, id string) error {
	if m.IncrementCandidateVotesError != nil {
		return m.IncrementCandidateVotesError
	}
	return m.FullRepository.IncrementCandidateVotes(ctx, id)
}

func (m *Repository) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	if m.ListCandidatesError != nil {
		return nil, m.ListCandidatesError
	}
	return m.FullRepository.ListCandidates(ctx)
}

func (m *Repository) AddNameVariation(ctx context.Context, candidateID, variationName string) error {
	if m.AddNameVariationError != nil {
		return m.AddNameVariationError
	}
	return m.FullRepository.AddNameVariation(ctx, candidateID, variationName)
}
