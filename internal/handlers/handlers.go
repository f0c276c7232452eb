package handlers

import (
	"github.com/ogforum/excovote/internal/auth"
	"github.com/ogforum/excovote/internal/services"
	"github.com/ogforum/excovote/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Roster     services.RosterServicer
	Nomination services.NominationServicer
	Stats      services.StatsServicer
	Auth       *auth.Auth
	Hub        *websocket.Hub
	Log        HTTPLogger
	BaseURL    string
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// NoopHTTPLogger never enables HTTP logging; used in tests
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// New creates a new Handlers instance with all dependencies
func New(
	roster services.RosterServicer,
	nomination services.NominationServicer,
	stats services.StatsServicer,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
	baseURL string,
) *Handlers {
	return &Handlers{
		Roster:     roster,
		Nomination: nomination,
		Stats:      stats,
		Auth:       adminAuth,
		Hub:        hub,
		Log:        log,
		BaseURL:    baseURL,
	}
}
