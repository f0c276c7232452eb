package services

import (
	"context"
	"strings"

	"github.com/ogforum/excovote/internal/errors"
	"github.com/ogforum/excovote/internal/logger"
	"github.com/ogforum/excovote/internal/models"
	"github.com/ogforum/excovote/internal/repository"
)

// RosterServiceRepository defines the repository methods needed by RosterService
type RosterServiceRepository interface {
	repository.RosterRepository
	HasSubmission(ctx context.Context, voterName string) (bool, error)
}

// RosterService handles eligible voter roster business logic
type RosterService struct {
	log  logger.Logger
	repo RosterServiceRepository
}

// NewRosterService creates a new RosterService
func NewRosterService(log logger.Logger, repo RosterServiceRepository) *RosterService {
	return &RosterService{log: log, repo: repo}
}

// VoterStatus describes a voter's standing for the nomination form
type VoterStatus struct {
	Eligible  bool `json:"eligible"`
	Submitted bool `json:"submitted"`
}

// ListVoterNames returns the full names of active roster entries for
// the form's name picker
func (s *RosterService) ListVoterNames(ctx context.Context) ([]string, error) {
	voters, err := s.repo.ListActiveVoters(ctx)
	if err != nil {
		s.log.Error("Roster read failed", "error", err)
		return nil, mapStorageErr(err, "read the roster")
	}
	names := make([]string, 0, len(voters))
	for _, v := range voters {
		names = append(names, v.FullName)
	}
	return names, nil
}

// GetVoterStatus reports whether fullName is on the active roster and
// whether it has already submitted
func (s *RosterService) GetVoterStatus(ctx context.Context, fullName string) (*VoterStatus, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, errors.ValidationField("voter_name", "voter name is required")
	}

	eligible, err := s.repo.VoterOnActiveRoster(ctx, fullName)
	if err != nil {
		s.log.Error("Roster check failed", "voter_name", fullName, "error", err)
		return nil, mapStorageErr(err, "read the roster")
	}

	status := &VoterStatus{Eligible: eligible}
	if !eligible {
		return status, nil
	}

	submitted, err := s.repo.HasSubmission(ctx, fullName)
	if err != nil {
		s.log.Error("Submission check failed", "voter_name", fullName, "error", err)
		return nil, mapStorageErr(err, "read submissions")
	}
	status.Submitted = submitted
	return status, nil
}

// ListAllVoters returns every roster entry for admin management
func (s *RosterService) ListAllVoters(ctx context.Context) ([]models.EligibleVoter, error) {
	voters, err := s.repo.ListAllVoters(ctx)
	if err != nil {
		s.log.Error("Roster read failed", "error", err)
		return nil, mapStorageErr(err, "read the roster")
	}
	return voters, nil
}

// AddVoter adds a name to the roster and returns the new entry id
func (s *RosterService) AddVoter(ctx context.Context, fullName, memberID string) (string, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return "", errors.ValidationField("full_name", "full name is required")
	}

	id, err := s.repo.CreateEligibleVoter(ctx, fullName, strings.TrimSpace(memberID))
	if err != nil {
		return "", mapStorageErr(err, "create the voter")
	}

	s.log.Info("Voter added to roster", "full_name", fullName)
	return id, nil
}

// SetVoterActive activates or deactivates a roster entry
func (s *RosterService) SetVoterActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetVoterActive(ctx, id, active); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("voter not found")
		}
		return mapStorageErr(err, "update the voter")
	}
	s.log.Info("Voter active flag changed", "voter_id", id, "active", active)
	return nil
}

// RemoveVoter permanently deletes a roster entry
func (s *RosterService) RemoveVoter(ctx context.Context, id string) error {
	if err := s.repo.DeleteEligibleVoter(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("voter not found")
		}
		return mapStorageErr(err, "delete the voter")
	}
	s.log.Info("Voter removed from roster", "voter_id", id)
	return nil
}
