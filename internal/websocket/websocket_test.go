package websocket

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ogforum/excovote/internal/logger"
	"github.com/ogforum/excovote/internal/models"
	"github.com/ogforum/excovote/internal/services"
)

// mockStatsService implements services.StatsServicer for testing
type mockStatsService struct {
	mu       sync.Mutex
	stats    services.NominationStats
	getCalls int
}

func newMockStatsService() *mockStatsService {
	return &mockStatsService{
		stats: services.NominationStats{
			EligibleVoters:    10,
			Submissions:       4,
			Nominations:       4,
			ParticipationRate: 40,
		},
	}
}

func (m *mockStatsService) GetStats(ctx context.Context) (*services.NominationStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	stats := m.stats
	return &stats, nil
}

// Unused interface methods
func (m *mockStatsService) GetTallies(ctx context.Context) ([]services.PositionTally, error) {
	return nil, nil
}
func (m *mockStatsService) TopNominees(ctx context.Context, n int) ([]services.TopNominee, error) {
	return nil, nil
}
func (m *mockStatsService) ExportCSV(ctx context.Context, w io.Writer) error { return nil }
func (m *mockStatsService) Reconcile(ctx context.Context, maxAge time.Duration) (int, error) {
	return 0, nil
}

func TestNew_CreatesHubWithDependencies(t *testing.T) {
	log := logger.New()
	stats := newMockStatsService()

	hub := New(log, stats)

	if hub == nil {
		t.Fatal("expected hub to be created")
	}
	if hub.log == nil {
		t.Error("expected logger to be set")
	}
	if hub.stats == nil {
		t.Error("expected stats service to be set")
	}
	if hub.clients == nil {
		t.Error("expected clients map to be initialized")
	}
	if hub.broadcast == nil {
		t.Error("expected broadcast channel to be initialized")
	}
	if hub.register == nil {
		t.Error("expected register channel to be initialized")
	}
	if hub.unregister == nil {
		t.Error("expected unregister channel to be initialized")
	}
}

func TestHub_Start_RunsInBackground(t *testing.T) {
	hub := New(logger.New(), newMockStatsService())

	done := make(chan bool)
	go func() {
		hub.Start()
		done <- true
	}()

	select {
	case <-done:
		// Start returned immediately
	case <-time.After(100 * time.Millisecond):
		t.Error("Start() blocked instead of running in background")
	}
}

func TestHub_BroadcastMessage(t *testing.T) {
	hub := New(logger.New(), newMockStatsService())
	hub.Start()

	time.Sleep(10 * time.Millisecond)

	// BroadcastMessage should not block even with no clients
	done := make(chan bool)
	go func() {
		hub.BroadcastMessage("test", map[string]string{"key": "value"})
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("BroadcastMessage blocked with no clients")
	}
}

func TestHub_BroadcastSubmissionReceived_ImplementsBroadcaster(t *testing.T) {
	var _ services.Broadcaster = New(logger.New(), newMockStatsService())

	hub := New(logger.New(), newMockStatsService())
	hub.Start()

	time.Sleep(10 * time.Millisecond)

	done := make(chan bool)
	go func() {
		hub.BroadcastSubmissionReceived(5)
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("BroadcastSubmissionReceived blocked")
	}
}

func TestHub_ClientRegistration(t *testing.T) {
	stats := newMockStatsService()
	hub := New(logger.New(), stats)
	hub.Start()

	time.Sleep(10 * time.Millisecond)

	client := &Client{
		hub:  hub,
		send: make(chan models.WSMessage, 256),
	}

	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	hub.mutex.RLock()
	_, exists := hub.clients[client]
	hub.mutex.RUnlock()

	if !exists {
		t.Error("expected client to be registered")
	}
}

func TestHub_RegistrationSendsStatsSnapshot(t *testing.T) {
	stats := newMockStatsService()
	hub := New(logger.New(), stats)
	hub.Start()

	client := &Client{
		hub:  hub,
		send: make(chan models.WSMessage, 256),
	}

	hub.register <- client

	select {
	case msg := <-client.send:
		if msg.Type != "stats_update" {
			t.Errorf("expected stats_update message, got %q", msg.Type)
		}
		snapshot, ok := msg.Payload.(*services.NominationStats)
		if !ok {
			t.Fatalf("expected *services.NominationStats payload, got %T", msg.Payload)
		}
		if snapshot.ParticipationRate != 40 {
			t.Errorf("expected participation rate 40, got %d", snapshot.ParticipationRate)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected a stats snapshot on registration")
	}

	stats.mu.Lock()
	calls := stats.getCalls
	stats.mu.Unlock()
	if calls != 1 {
		t.Errorf("expected one GetStats call, got %d", calls)
	}
}

func TestHub_ClientUnregistration(t *testing.T) {
	hub := New(logger.New(), newMockStatsService())
	hub.Start()

	time.Sleep(10 * time.Millisecond)

	client := &Client{
		hub:  hub,
		send: make(chan models.WSMessage, 256),
	}

	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(50 * time.Millisecond)

	hub.mutex.RLock()
	_, exists := hub.clients[client]
	hub.mutex.RUnlock()

	if exists {
		t.Error("expected client to be unregistered")
	}

	// Send channel should be closed on unregister
	select {
	case _, ok := <-client.send:
		if ok {
			// A stats snapshot may still be buffered; drain and recheck
			if _, ok := <-client.send; ok {
				t.Error("expected send channel to be closed")
			}
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("expected send channel to be closed")
	}
}

func TestHub_BroadcastReachesRegisteredClient(t *testing.T) {
	hub := New(logger.New(), newMockStatsService())
	hub.Start()

	client := &Client{
		hub:  hub,
		send: make(chan models.WSMessage, 256),
	}
	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	// Drain the registration snapshot
	<-client.send

	hub.BroadcastSubmissionReceived(3)

	select {
	case msg := <-client.send:
		if msg.Type != "submission_received" {
			t.Errorf("expected submission_received, got %q", msg.Type)
		}
		payload, ok := msg.Payload.(map[string]interface{})
		if !ok {
			t.Fatalf("expected map payload, got %T", msg.Payload)
		}
		if payload["submissions"] != 3 {
			t.Errorf("expected 3 submissions in payload, got %v", payload["submissions"])
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("broadcast never reached registered client")
	}
}

func TestHub_MultipleInstances_NoGlobalState(t *testing.T) {
	hub1 := New(logger.New(), newMockStatsService())
	hub2 := New(logger.New(), newMockStatsService())

	if hub1 == hub2 {
		t.Error("expected different hub instances")
	}
	if hub1.stats == hub2.stats {
		t.Error("expected different stats instances")
	}
}
