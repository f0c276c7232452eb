package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket
	r.Get("/ws", h.Hub.ServeWs)

	// Landing route, also the default QR target when no frontend URL
	// is configured
	r.Get("/", h.handleRoot)

	// Nomination form API (public)
	r.Get("/api/voters", h.handleGetVoters)
	r.Get("/api/voters/{name}/status", h.handleGetVoterStatus)
	r.Post("/api/nominations", h.handleSubmitNomination)
	r.Post("/api/nominations/resolve", h.handleResolveNomination)

	// Auth routes (public)
	r.Post("/api/admin/login", h.handleLogin)
	r.Post("/api/admin/logout", h.handleLogout)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		r.Get("/api/admin/session", h.handleSession)
		r.Get("/api/admin/stats", h.handleGetStats)
		r.Get("/api/admin/tallies", h.handleGetTallies)
		r.Get("/api/admin/nominations", h.handleGetNominations)
		r.Get("/api/admin/form-qr", h.handleFormQR)
		r.Post("/api/admin/reconcile", h.handleReconcile)
	})

	// Super admin API (protected, super tier)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireSuperAPI)

		r.Get("/api/admin/top-nominees", h.handleGetTopNominees)
		r.Get("/api/admin/export", h.handleExportCSV)

		r.Get("/api/admin/voters", h.handleGetAllVoters)
		r.Post("/api/admin/voters", h.handleCreateVoter)
		r.Put("/api/admin/voters/{id}/active", h.handleSetVoterActive)
		r.Delete("/api/admin/voters/{id}", h.handleDeleteVoter)
	})

	return r
}
