package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/skip2/go-qrcode"
)

// defaultReconcileAge is how old an orphaned submission marker must be
// before reconcile clears it, when the request does not say
const defaultReconcileAge = 15 * time.Minute

// handleGetStats returns the turnout summary
func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.GetStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

// handleGetTallies returns the ranked candidates per position
func (h *Handlers) handleGetTallies(w http.ResponseWriter, r *http.Request) {
	tallies, err := h.Stats.GetTallies(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, tallies)
}

// handleGetNominations returns the raw nomination rows
func (h *Handlers) handleGetNominations(w http.ResponseWriter, r *http.Request) {
	nominations, err := h.Nomination.ListNominations(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, nominations)
}

// handleGetTopNominees returns the cross-position ranking (super only,
// enforced by the route group)
func (h *Handlers) handleGetTopNominees(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respondError(w, BadRequest("Invalid n parameter"))
			return
		}
		n = parsed
	}

	top, err := h.Stats.TopNominees(r.Context(), n)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, top)
}

// handleExportCSV streams every nomination as a CSV download
func (h *Handlers) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("nominations-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.Stats.ExportCSV(r.Context(), w); err != nil {
		// Headers may already be gone; all we can do is log via the
		// error path without rewriting the status
		respondError(w, err)
	}
}

// handleFormQR returns a QR code PNG pointing at the configured
// nomination form URL
func (h *Handlers) handleFormQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(h.BaseURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, InternalError(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleGetAllVoters returns every roster entry, active or not
func (h *Handlers) handleGetAllVoters(w http.ResponseWriter, r *http.Request) {
	voters, err := h.Roster.ListAllVoters(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, voters)
}

// handleCreateVoter adds a roster entry
func (h *Handlers) handleCreateVoter(w http.ResponseWriter, r *http.Request) {
	var req VoterCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.Roster.AddVoter(r.Context(), req.FullName, req.MemberID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, VoterCreateResponse{ID: id})
}

// handleSetVoterActive toggles a roster entry's active flag
func (h *Handlers) handleSetVoterActive(w http.ResponseWriter, r *http.Request) {
	id, err := stringParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req VoterActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Roster.SetVoterActive(r.Context(), id, req.Active); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Voter updated")
}

// handleDeleteVoter removes a roster entry
func (h *Handlers) handleDeleteVoter(w http.ResponseWriter, r *http.Request) {
	id, err := stringParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Roster.RemoveVoter(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleReconcile clears orphaned submission markers left by partial
// commits, so the affected voters can submit again
func (h *Handlers) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := decodeJSON(r, &req); err != nil {
		// An empty body means the default age window
		req.MaxAgeMinutes = 0
	}

	maxAge := defaultReconcileAge
	if req.MaxAgeMinutes > 0 {
		maxAge = time.Duration(req.MaxAgeMinutes) * time.Minute
	}

	removed, err := h.Stats.Reconcile(r.Context(), maxAge)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, ReconcileResponse{Removed: removed})
}
