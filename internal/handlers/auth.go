package handlers

import (
	"net/http"

	"github.com/ogforum/excovote/internal/auth"
)

// handleLogin processes an admin login request
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Username, req.Password)
	if !ok {
		respondError(w, NewAPIError(http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid username or password"))
		return
	}

	session, _ := h.Auth.ValidateSession(token)
	auth.SetSessionCookie(w, token)
	respondOK(w, LoginResponse{Username: session.Username, Super: session.Super})
}

// handleLogout clears the admin session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}
	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}

// handleSession reports the current session, for the admin UI to decide
// what to show
func (h *Handlers) handleSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.Auth.SessionFromRequest(r)
	if !ok {
		respondError(w, ErrUnauthorized)
		return
	}
	respondOK(w, LoginResponse{Username: session.Username, Super: session.Super})
}
