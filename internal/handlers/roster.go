package handlers

import (
	"net/http"

	"github.com/ogforum/excovote/internal/models"
)

// handleRoot describes the service for anyone landing on the base URL
// without the frontend
func (h *Handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{
		"service":     "excovote",
		"voters":      "/api/voters",
		"nominations": "/api/nominations",
	})
}

// handleGetVoters returns the active roster names plus the ballot's
// position list for the public nomination form
func (h *Handlers) handleGetVoters(w http.ResponseWriter, r *http.Request) {
	names, err := h.Roster.ListVoterNames(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	respondOK(w, VotersResponse{Voters: names, Positions: models.Positions})
}

// handleGetVoterStatus reports whether a name may still submit
func (h *Handlers) handleGetVoterStatus(w http.ResponseWriter, r *http.Request) {
	name, err := stringParam(r, "name")
	if err != nil {
		respondError(w, err)
		return
	}

	status, err := h.Roster.GetVoterStatus(r.Context(), name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, status)
}
