package repository

import (
	"context"
	"time"

	"github.com/ogforum/excovote/internal/models"
)

// RosterRepository defines eligible-voter data operations
type RosterRepository interface {
	ListActiveVoters(ctx context.Context) ([]models.EligibleVoter, error)
	ListAllVoters(ctx context.Context) ([]models.EligibleVoter, error)
	CreateEligibleVoter(ctx context.Context, fullName, memberID string) (string, error)
	SetVoterActive(ctx context.Context, id string, active bool) error
	DeleteEligibleVoter(ctx context.Context, id string) error
	VoterOnActiveRoster(ctx context.Context, fullName string) (bool, error)
	CountActiveVoters(ctx context.Context) (int, error)
}

// SubmissionRepository defines submission-tracking data operations
type SubmissionRepository interface {
	HasSubmission(ctx context.Context, voterName string) (bool, error)
	CreateSubmission(ctx context.Context, voterName string) (string, error)
	ListSubmissions(ctx context.Context) ([]models.VoterSubmission, error)
	CountSubmissions(ctx context.Context) (int, error)
	DeleteOrphanSubmissions(ctx context.Context, olderThan time.Time) (int, error)
}

// NominationRepository defines nomination data operations
type NominationRepository interface {
	CreateNomination(ctx context.Context, sub models.NominationSubmission) (string, error)
	ListNominations(ctx context.Context) ([]models.Nomination, error)
	CountNominations(ctx context.Context) (int, error)
}

// CandidateRepository defines deduplicated-candidate data operations
type CandidateRepository interface {
	GetCandidate(ctx context.Context, position, canonicalName string) (*models.Candidate, error)
	CreateCandidate(ctx context.Context, position, canonicalName string) (string, error)
	IncrementCandidateVotes(ctx context.Context, id string) error
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	AddNameVariation(ctx context.Context, candidateID, variationName string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	RosterRepository
	SubmissionRepository
	NominationRepository
	CandidateRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
