package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ogforum/excovote/internal/auth"
	"github.com/ogforum/excovote/internal/handlers"
	"github.com/ogforum/excovote/internal/logger"
	"github.com/ogforum/excovote/internal/repository"
	"github.com/ogforum/excovote/internal/services"
	"github.com/ogforum/excovote/internal/websocket"
	"github.com/ogforum/excovote/pkg/matchsvc"
)

// reconcileInterval is how often orphaned submission markers are swept
const reconcileInterval = 5 * time.Minute

// reconcileMaxAge is how old a marker must be before the sweep clears it
const reconcileMaxAge = 15 * time.Minute

// App holds all application dependencies
type App struct {
	log             logger.Logger
	handlers        *handlers.Handlers
	repo            *repository.Repository
	stats           *services.StatsService
	cancelReconcile context.CancelFunc
}

// New creates and initializes a new application instance. A nil matcher
// means name matching runs in-process against the candidate store.
func New(log logger.Logger, dbPath string, matcher matchsvc.Client, adminAuth *auth.Auth, baseURL string) (*App, error) {
	repo, err := repository.New(dbPath)
	if err != nil {
		return nil, err
	}

	if matcher == nil {
		matcher = matchsvc.NewLocalClient(repo)
	}

	// Initialize services
	rosterService := services.NewRosterService(log, repo)
	guardService := services.NewGuardService(log, repo)
	dedupService := services.NewDedupService(log, repo, matcher)
	nominationService := services.NewNominationService(log, repo, guardService, dedupService)
	statsService := services.NewStatsService(log, repo)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, statsService)
	hub.Start()
	nominationService.SetBroadcaster(hub)

	// Background sweep for markers stranded by partial commits
	ctx, cancel := context.WithCancel(context.Background())
	go runReconcileLoop(ctx, log, statsService)

	h := handlers.New(
		rosterService,
		nominationService,
		statsService,
		adminAuth,
		hub,
		log,
		baseURL,
	)

	return &App{
		log:             log,
		handlers:        h,
		repo:            repo,
		stats:           statsService,
		cancelReconcile: cancel,
	}, nil
}

// runReconcileLoop periodically clears stale orphaned submission markers
func runReconcileLoop(ctx context.Context, log logger.Logger, stats *services.StatsService) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := stats.Reconcile(ctx, reconcileMaxAge); err != nil {
				log.Warn("Reconcile sweep failed", "error", err)
			}
		}
	}
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelReconcile != nil {
		a.cancelReconcile()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	ip := getPreferredIP(realNetworkProvider{})
	lanURL := fmt.Sprintf("http://%s%s", ip, addr)

	a.log.Info("Server starting", "url", lanURL)
	a.log.Info("Nomination form", "url", a.handlers.BaseURL)
	return http.ListenAndServe(addr, a.Router())
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
