package handlers

import (
	"net/http"
)

// handleSubmitNomination accepts a nomination form submission. A 200
// response carries either an accepted result or a needs_confirmation
// result listing the flagged names.
func (h *Handlers) handleSubmitNomination(w http.ResponseWriter, r *http.Request) {
	var req NominationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Nomination.Submit(r.Context(), req.Submission())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleResolveNomination commits a flagged submission using the
// submitter's confirmation decisions
func (h *Handlers) handleResolveNomination(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if len(req.Decisions) == 0 {
		respondError(w, BadRequest("At least one decision is required"))
		return
	}

	result, err := h.Nomination.Resolve(r.Context(), req.Submission(), req.Decisions)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}
