package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ogforum/excovote/internal/auth"
	"github.com/ogforum/excovote/internal/handlers"
	"github.com/ogforum/excovote/internal/logger"
	"github.com/ogforum/excovote/internal/repository"
	"github.com/ogforum/excovote/internal/services"
	"github.com/ogforum/excovote/internal/testutil"
	"github.com/ogforum/excovote/internal/websocket"
	"github.com/ogforum/excovote/pkg/matchsvc"
)

// testServer bundles the router with the things tests poke at directly
type testServer struct {
	router http.Handler
	repo   *repository.Repository
	auth   *auth.Auth
}

func testAdmins() []auth.Admin {
	return []auth.Admin{
		{Username: "chair", PasswordHash: auth.HashPassword("gavel-2026"), Super: true},
		{Username: "teller", PasswordHash: auth.HashPassword("count-2026"), Super: false},
	}
}

func setupServer(t *testing.T, matcherOpts ...matchsvc.MockOption) *testServer {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	log := logger.New()

	rosterSvc := services.NewRosterService(log, repo)
	guard := services.NewGuardService(log, repo)
	dedup := services.NewDedupService(log, repo, matchsvc.NewMockClient(matcherOpts...))
	nominationSvc := services.NewNominationService(log, repo, guard, dedup)
	statsSvc := services.NewStatsService(log, repo)

	adminAuth := auth.New(testAdmins())
	hub := websocket.New(log, statsSvc)
	hub.Start()
	nominationSvc.SetBroadcaster(hub)

	h := handlers.New(rosterSvc, nominationSvc, statsSvc, adminAuth, hub,
		handlers.NoopHTTPLogger{}, "http://club.example")

	return &testServer{router: h.Router(), repo: repo, auth: adminAuth}
}

func (s *testServer) addVoter(t *testing.T, name string) {
	t.Helper()
	if _, err := s.repo.CreateEligibleVoter(context.Background(), name, ""); err != nil {
		t.Fatalf("CreateEligibleVoter failed: %v", err)
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) loginCookie(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	token, ok := s.auth.Login(username, password)
	if !ok {
		t.Fatalf("login failed for %s", username)
	}
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func nominationBody(voterName string) map[string]string {
	return map[string]string{
		"voter_name":           voterName,
		"president":            "Alice Chen",
		"tournament_director":  "Bob Okafor",
		"hon_legal_adviser":    "Carmen Diaz",
		"secretary":            "Dev Patel",
		"hon_social_secretary": "Erin Walsh",
	}
}

func TestGetVoters(t *testing.T) {
	s := setupServer(t)
	s.addVoter(t, "Jane Doe")
	s.addVoter(t, "Amy Brown")

	rec := s.do(t, http.MethodGet, "/api/voters", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Voters    []string `json:"voters"`
		Positions []struct {
			Key   string `json:"key"`
			Label string `json:"label"`
		} `json:"positions"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Voters) != 2 || resp.Voters[0] != "Amy Brown" {
		t.Errorf("unexpected voters: %v", resp.Voters)
	}
	if len(resp.Positions) != 5 || resp.Positions[0].Key != "president" {
		t.Errorf("unexpected positions: %v", resp.Positions)
	}
}

func TestGetVoterStatus(t *testing.T) {
	s := setupServer(t)
	s.addVoter(t, "Jane Doe")

	rec := s.do(t, http.MethodGet, "/api/voters/Jane%20Doe/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status struct {
		Eligible  bool `json:"eligible"`
		Submitted bool `json:"submitted"`
	}
	decodeBody(t, rec, &status)
	if !status.Eligible || status.Submitted {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestSubmitNomination_Accepted(t *testing.T) {
	s := setupServer(t)
	s.addVoter(t, "Jane Doe")

	rec := s.do(t, http.MethodPost, "/api/nominations", nominationBody("Jane Doe"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Status string `json:"status"`
	}
	decodeBody(t, rec, &result)
	if result.Status != "accepted" {
		t.Errorf("expected accepted, got %q", result.Status)
	}
}

func TestSubmitNomination_SecondAttemptConflicts(t *testing.T) {
	s := setupServer(t)
	s.addVoter(t, "Jane Doe")

	if rec := s.do(t, http.MethodPost, "/api/nominations", nominationBody("Jane Doe")); rec.Code != http.StatusOK {
		t.Fatalf("first submit: expected 200, got %d", rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/api/nominations", nominationBody("Jane Doe"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	var apiErr struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &apiErr)
	if apiErr.Code != "ALREADY_VOTED" {
		t.Errorf("expected ALREADY_VOTED code, got %q", apiErr.Code)
	}
}

func TestSubmitNomination_NotOnRoster(t *testing.T) {
	s := setupServer(t)

	rec := s.do(t, http.MethodPost, "/api/nominations", nominationBody("Nobody Special"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var apiErr struct {
		Code  string `json:"code"`
		Field string `json:"field"`
	}
	decodeBody(t, rec, &apiErr)
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Field != "voter_name" {
		t.Errorf("unexpected error payload: %+v", apiErr)
	}
}

func TestSubmitNomination_MissingPick(t *testing.T) {
	s := setupServer(t)
	s.addVoter(t, "Jane Doe")

	body := nominationBody("Jane Doe")
	body["secretary"] = ""
	rec := s.do(t, http.MethodPost, "/api/nominations", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitNomination_EmptyBody(t *testing.T) {
	s := setupServer(t)

	rec := s.do(t, http.MethodPost, "/api/nominations", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", rec.Code)
	}
}

func TestNominationConfirmationFlow(t *testing.T) {
	s := setupServer(t,
		matchsvc.WithSuggestions("Alice Chen", "president", []matchsvc.Suggestion{
			{CandidateID: "id-1", CanonicalName: "Alice Chan", Distance: 1},
		}),
	)
	s.addVoter(t, "Jane Doe")

	rec := s.do(t, http.MethodPost, "/api/nominations", nominationBody("Jane Doe"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Status    string `json:"status"`
		Conflicts []struct {
			Position    string `json:"position"`
			Suggestions []struct {
				CandidateID string `json:"candidate_id"`
			} `json:"suggestions"`
		} `json:"conflicts"`
	}
	decodeBody(t, rec, &result)
	if result.Status != "needs_confirmation" {
		t.Fatalf("expected needs_confirmation, got %q", result.Status)
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].Position != "president" {
		t.Fatalf("unexpected conflicts: %+v", result.Conflicts)
	}

	// Re-submit with a decision
	resolveBody := map[string]interface{}{}
	for k, v := range nominationBody("Jane Doe") {
		resolveBody[k] = v
	}
	resolveBody["decisions"] = map[string]interface{}{
		"president": map[string]string{"action": "create_new"},
	}
	rec = s.do(t, http.MethodPost, "/api/nominations/resolve", resolveBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resolved struct {
		Status string `json:"status"`
	}
	decodeBody(t, rec, &resolved)
	if resolved.Status != "accepted" {
		t.Errorf("expected accepted after resolve, got %q", resolved.Status)
	}
}

func TestResolve_RequiresDecisions(t *testing.T) {
	s := setupServer(t)
	s.addVoter(t, "Jane Doe")

	rec := s.do(t, http.MethodPost, "/api/nominations/resolve", nominationBody("Jane Doe"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without decisions, got %d", rec.Code)
	}
}

func TestAdminLoginFlow(t *testing.T) {
	s := setupServer(t)

	rec := s.do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "chair", "password": "gavel-2026",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Username string `json:"username"`
		Super    bool   `json:"super"`
	}
	decodeBody(t, rec, &resp)
	if resp.Username != "chair" || !resp.Super {
		t.Errorf("unexpected login response: %+v", resp)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected session cookie to be set")
	}
}

func TestAdminLogin_BadPassword(t *testing.T) {
	s := setupServer(t)

	rec := s.do(t, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "chair", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminStats_RequiresAuth(t *testing.T) {
	s := setupServer(t)

	rec := s.do(t, http.MethodGet, "/api/admin/stats", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
}

func TestAdminStats(t *testing.T) {
	s := setupServer(t)
	s.addVoter(t, "Jane Doe")
	s.addVoter(t, "John Roe")
	if rec := s.do(t, http.MethodPost, "/api/nominations", nominationBody("Jane Doe")); rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", rec.Code)
	}

	cookie := s.loginCookie(t, "teller", "count-2026")
	rec := s.do(t, http.MethodGet, "/api/admin/stats", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats struct {
		EligibleVoters    int `json:"eligible_voters"`
		Submissions       int `json:"submissions"`
		ParticipationRate int `json:"participation_rate"`
	}
	decodeBody(t, rec, &stats)
	if stats.EligibleVoters != 2 || stats.Submissions != 1 || stats.ParticipationRate != 50 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestAdminTallies(t *testing.T) {
	s := setupServer(t)
	s.addVoter(t, "Jane Doe")
	if rec := s.do(t, http.MethodPost, "/api/nominations", nominationBody("Jane Doe")); rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", rec.Code)
	}

	cookie := s.loginCookie(t, "teller", "count-2026")
	rec := s.do(t, http.MethodGet, "/api/admin/tallies", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var tallies []struct {
		Position   string `json:"position"`
		Candidates []struct {
			CanonicalName string `json:"canonical_name"`
			VoteCount     int    `json:"vote_count"`
		} `json:"candidates"`
	}
	decodeBody(t, rec, &tallies)
	if len(tallies) != 5 {
		t.Fatalf("expected 5 tallies, got %d", len(tallies))
	}
	if len(tallies[0].Candidates) != 1 || tallies[0].Candidates[0].CanonicalName != "Alice Chen" {
		t.Errorf("unexpected president tally: %+v", tallies[0])
	}
}

func TestTopNominees_SuperOnly(t *testing.T) {
	s := setupServer(t)

	// regular admin blocked
	cookie := s.loginCookie(t, "teller", "count-2026")
	rec := s.do(t, http.MethodGet, "/api/admin/top-nominees", nil, cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for regular admin, got %d", rec.Code)
	}

	// super admin allowed
	cookie = s.loginCookie(t, "chair", "gavel-2026")
	rec = s.do(t, http.MethodGet, "/api/admin/top-nominees", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for super admin, got %d", rec.Code)
	}
}

func TestExportCSV_SuperOnly(t *testing.T) {
	s := setupServer(t)
	s.addVoter(t, "Jane Doe")
	if rec := s.do(t, http.MethodPost, "/api/nominations", nominationBody("Jane Doe")); rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", rec.Code)
	}

	cookie := s.loginCookie(t, "teller", "count-2026")
	if rec := s.do(t, http.MethodGet, "/api/admin/export", nil, cookie); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for regular admin, got %d", rec.Code)
	}

	cookie = s.loginCookie(t, "chair", "gavel-2026")
	rec := s.do(t, http.MethodGet, "/api/admin/export", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("Voter Name,")) {
		t.Errorf("expected CSV header, got %q", rec.Body.String())
	}
}

func TestFormQR(t *testing.T) {
	s := setupServer(t)

	cookie := s.loginCookie(t, "teller", "count-2026")
	rec := s.do(t, http.MethodGet, "/api/admin/form-qr", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	// PNG signature
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("response is not a PNG")
	}
}

func TestVoterManagement_SuperOnly(t *testing.T) {
	s := setupServer(t)

	super := s.loginCookie(t, "chair", "gavel-2026")

	rec := s.do(t, http.MethodPost, "/api/admin/voters", map[string]string{
		"full_name": "New Member", "member_id": "M-31",
	}, super)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)
	if created.ID == "" {
		t.Fatal("expected new voter id")
	}

	rec = s.do(t, http.MethodPut, "/api/admin/voters/"+created.ID+"/active", map[string]bool{"active": false}, super)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: expected 200, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodDelete, "/api/admin/voters/"+created.ID, nil, super)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	// regular admin cannot manage the roster
	teller := s.loginCookie(t, "teller", "count-2026")
	rec = s.do(t, http.MethodPost, "/api/admin/voters", map[string]string{"full_name": "X"}, teller)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for regular admin, got %d", rec.Code)
	}
}

func TestReconcile(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()

	// Orphan: marker without nomination
	if _, err := s.repo.CreateSubmission(ctx, "Ghost Voter"); err != nil {
		t.Fatalf("CreateSubmission failed: %v", err)
	}

	cookie := s.loginCookie(t, "teller", "count-2026")
	rec := s.do(t, http.MethodPost, "/api/admin/reconcile", map[string]int{"max_age_minutes": -1}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogout(t *testing.T) {
	s := setupServer(t)

	cookie := s.loginCookie(t, "teller", "count-2026")
	rec := s.do(t, http.MethodPost, "/api/admin/logout", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Session is gone
	rec = s.do(t, http.MethodGet, "/api/admin/stats", nil, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestRoot_ServesLanding(t *testing.T) {
	s := setupServer(t)

	rec := s.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["service"] != "excovote" {
		t.Errorf("expected service landing payload, got %q", rec.Body.String())
	}
}

func TestTopNominees_AggregatesByName(t *testing.T) {
	s := setupServer(t)
	ctx := context.Background()

	for _, position := range []string{"president", "secretary"} {
		id, err := s.repo.CreateCandidate(ctx, position, "John Smith")
		if err != nil {
			t.Fatalf("CreateCandidate failed: %v", err)
		}
		if err := s.repo.IncrementCandidateVotes(ctx, id); err != nil {
			t.Fatalf("IncrementCandidateVotes failed: %v", err)
		}
	}

	cookie := s.loginCookie(t, "chair", "gavel-2026")
	rec := s.do(t, http.MethodGet, "/api/admin/top-nominees", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var top []services.TopNominee
	decodeBody(t, rec, &top)
	if len(top) != 1 {
		t.Fatalf("expected one aggregated entry, got %d: %+v", len(top), top)
	}
	if top[0].VoteCount != 2 {
		t.Errorf("expected 2 votes across positions, got %d", top[0].VoteCount)
	}
}
