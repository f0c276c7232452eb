package handlers

import (
	"github.com/ogforum/excovote/internal/models"
	"github.com/ogforum/excovote/internal/services"
)

// NominationRequest is the nomination form payload
type NominationRequest struct {
	VoterName          string `json:"voter_name"`
	President          string `json:"president"`
	TournamentDirector string `json:"tournament_director"`
	HonLegalAdviser    string `json:"hon_legal_adviser"`
	Secretary          string `json:"secretary"`
	HonSocialSecretary string `json:"hon_social_secretary"`
	Statement          string `json:"statement,omitempty"`
}

// Submission converts the request into the service payload
func (r NominationRequest) Submission() models.NominationSubmission {
	return models.NominationSubmission{
		VoterName:          r.VoterName,
		President:          r.President,
		TournamentDirector: r.TournamentDirector,
		HonLegalAdviser:    r.HonLegalAdviser,
		Secretary:          r.Secretary,
		HonSocialSecretary: r.HonSocialSecretary,
		Statement:          r.Statement,
	}
}

// ResolveRequest re-submits a flagged nomination with decisions for
// each flagged position
type ResolveRequest struct {
	NominationRequest
	Decisions map[string]*services.Decision `json:"decisions"`
}

// LoginRequest is the admin login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// VoterCreateRequest adds a name to the eligible roster
type VoterCreateRequest struct {
	FullName string `json:"full_name"`
	MemberID string `json:"member_id,omitempty"`
}

// VoterActiveRequest toggles a roster entry's active flag
type VoterActiveRequest struct {
	Active bool `json:"active"`
}

// ReconcileRequest clears stale orphaned submission markers
type ReconcileRequest struct {
	MaxAgeMinutes int `json:"max_age_minutes"`
}
