package models

import "time"

// Position keys for the fixed set of elected offices. The election form
// requires a nominee for every one of these.
const (
	PositionPresident          = "president"
	PositionTournamentDirector = "tournament_director"
	PositionLegalAdviser       = "hon_legal_adviser"
	PositionSecretary          = "secretary"
	PositionSocialSecretary    = "hon_social_secretary"
)

// Position pairs a stable key with its display label.
type Position struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Positions is the closed set of offices, in ballot order.
var Positions = []Position{
	{Key: PositionPresident, Label: "President"},
	{Key: PositionTournamentDirector, Label: "Tournament Director"},
	{Key: PositionLegalAdviser, Label: "Hon. Legal Adviser"},
	{Key: PositionSecretary, Label: "Secretary"},
	{Key: PositionSocialSecretary, Label: "Hon. Social Secretary"},
}

// PositionLabel returns the display label for a position key, or the key
// itself if it is not a known position.
func PositionLabel(key string) string {
	for _, p := range Positions {
		if p.Key == key {
			return p.Label
		}
	}
	return key
}

// EligibleVoter is a roster entry authorized to submit one nomination set
type EligibleVoter struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	MemberID  string    `json:"member_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoterSubmission records that a voter has submitted. Its existence is the
// sole source of truth for "has this voter already voted"; the voter_name
// column carries a unique index so a duplicate insert fails at the store.
type VoterSubmission struct {
	ID          string    `json:"id"`
	VoterName   string    `json:"voter_name"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Nomination is a voter's complete set of position picks for one cycle.
// One wide row per voter, immutable once written.
type Nomination struct {
	ID                 string    `json:"id"`
	VoterName          string    `json:"voter_name"`
	President          string    `json:"president"`
	TournamentDirector string    `json:"tournament_director"`
	HonLegalAdviser    string    `json:"hon_legal_adviser"`
	Secretary          string    `json:"secretary"`
	HonSocialSecretary string    `json:"hon_social_secretary"`
	Statement          string    `json:"statement,omitempty"`
	SubmittedAt        time.Time `json:"submitted_at"`
}

// Nominee returns the nominee for a position key, or "" for an unknown key.
func (n Nomination) Nominee(positionKey string) string {
	switch positionKey {
	case PositionPresident:
		return n.President
	case PositionTournamentDirector:
		return n.TournamentDirector
	case PositionLegalAdviser:
		return n.HonLegalAdviser
	case PositionSecretary:
		return n.Secretary
	case PositionSocialSecretary:
		return n.HonSocialSecretary
	}
	return ""
}

// NominationSubmission is the incoming form payload before it is committed.
type NominationSubmission struct {
	VoterName          string `json:"voter_name"`
	President          string `json:"president"`
	TournamentDirector string `json:"tournament_director"`
	HonLegalAdviser    string `json:"hon_legal_adviser"`
	Secretary          string `json:"secretary"`
	HonSocialSecretary string `json:"hon_social_secretary"`
	// Statement is optional free text carried by nomination-letter variants.
	Statement string `json:"statement,omitempty"`
}

// Nominee returns the nominee for a position key, or "" for an unknown key.
func (s NominationSubmission) Nominee(positionKey string) string {
	switch positionKey {
	case PositionPresident:
		return s.President
	case PositionTournamentDirector:
		return s.TournamentDirector
	case PositionLegalAdviser:
		return s.HonLegalAdviser
	case PositionSecretary:
		return s.Secretary
	case PositionSocialSecretary:
		return s.HonSocialSecretary
	}
	return ""
}

// SetNominee replaces the nominee for a position key. Unknown keys are ignored.
func (s *NominationSubmission) SetNominee(positionKey, name string) {
	switch positionKey {
	case PositionPresident:
		s.President = name
	case PositionTournamentDirector:
		s.TournamentDirector = name
	case PositionLegalAdviser:
		s.HonLegalAdviser = name
	case PositionSecretary:
		s.Secretary = name
	case PositionSocialSecretary:
		s.HonSocialSecretary = name
	}
}

// Candidate is a deduplicated nominee identity for one position.
type Candidate struct {
	ID            string    `json:"id"`
	CanonicalName string    `json:"canonical_name"`
	Position      string    `json:"position"`
	VoteCount     int       `json:"vote_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NameVariation records a spelling that was merged into a candidate.
type NameVariation struct {
	ID            string    `json:"id"`
	CandidateID   string    `json:"candidate_id"`
	VariationName string    `json:"variation_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
