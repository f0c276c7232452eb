package handlers

import "github.com/ogforum/excovote/internal/models"

// VotersResponse is the response for the public name picker
type VotersResponse struct {
	Voters    []string          `json:"voters"`
	Positions []models.Position `json:"positions"`
}

// LoginResponse is the response for a successful admin login
type LoginResponse struct {
	Username string `json:"username"`
	Super    bool   `json:"super"`
}

// VoterCreateResponse is the response for adding a roster entry
type VoterCreateResponse struct {
	ID string `json:"id"`
}

// ReconcileResponse reports how many orphaned markers were cleared
type ReconcileResponse struct {
	Removed int `json:"removed"`
}
