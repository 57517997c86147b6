package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	appagent "fleet-monitor/internal/app/agent"
	appdashboard "fleet-monitor/internal/app/dashboard"
	apphealth "fleet-monitor/internal/app/health"
	appingest "fleet-monitor/internal/app/ingest"
	appsession "fleet-monitor/internal/app/session"
	"fleet-monitor/internal/civil"
	"fleet-monitor/internal/realtime"
	"fleet-monitor/internal/rollover"
	"fleet-monitor/internal/store"
)

// memStore satisfies every store-facing interface the router's services use.
type memStore struct {
	mu        sync.Mutex
	agents    map[string]*store.Agent
	logs      []store.ActivityLog
	stats     []store.CountedStat
	resets    []time.Time
	statErr   error
	beatErr   error
	resetErr  error
	resetRows int
}

func newMemStore() *memStore {
	return &memStore{agents: map[string]*store.Agent{}}
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) TouchHeartbeat(_ context.Context, hb store.Heartbeat) (store.AgentLabel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beatErr != nil {
		return store.AgentLabel{}, m.beatErr
	}
	a, ok := m.agents[hb.AgentID]
	if !ok {
		a = &store.Agent{ID: hb.AgentID}
		m.agents[hb.AgentID] = a
	}
	a.Status = store.StatusOnline
	return store.AgentLabel{ID: a.ID, Name: a.Name, ClientName: a.ClientName}, nil
}

func (m *memStore) SetAgentStatus(_ context.Context, agentID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[agentID]
	if !ok {
		a = &store.Agent{ID: agentID}
		m.agents[agentID] = a
	}
	a.Status = status
	return nil
}

func (m *memStore) ApplyCountedStat(_ context.Context, in store.CountedStat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statErr != nil {
		return m.statErr
	}
	m.stats = append(m.stats, in)
	return nil
}

func (m *memStore) InsertActivityLog(_ context.Context, entry store.ActivityLog) (store.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, entry)
	return entry, nil
}

func (m *memStore) GetAgent(_ context.Context, id string) (*store.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) UpdateAgentHealth(_ context.Context, agentID, status, apiStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[agentID]
	if !ok {
		return store.ErrNotFound
	}
	a.Status, a.APIStatus = status, apiStatus
	return nil
}

func (m *memStore) ListAgents(context.Context) ([]store.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Agent, 0, len(m.agents))
	for _, a := range m.agents {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memStore) ListBreakdowns(context.Context, string) ([]store.ApiBreakdown, error) {
	return nil, nil
}

func (m *memStore) ListHourlyStats(context.Context, string, time.Time) ([]store.HourlyStat, error) {
	return nil, nil
}

func (m *memStore) ListDailyStats(context.Context, string, int) ([]store.DailyStat, error) {
	return nil, nil
}

func (m *memStore) ListActivityLogs(context.Context, store.ActivityFilter) ([]store.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.ActivityLog(nil), m.logs...), nil
}

func (m *memStore) FleetSummary(context.Context, time.Time) (store.FleetSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return store.FleetSummary{Agents: len(m.agents)}, nil
}

func (m *memStore) CreateAgent(_ context.Context, in store.NewAgent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.agents[in.ID]; ok {
		return store.ErrConflict
	}
	m.agents[in.ID] = &store.Agent{ID: in.ID, Name: in.Name, BaseURL: in.BaseURL, Status: store.StatusOffline}
	return nil
}

func (m *memStore) UpdateAgentProfile(_ context.Context, id string, p store.AgentPatch) (*store.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) ResetTodayCounters(_ context.Context, day time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return 0, m.resetErr
	}
	m.resets = append(m.resets, day)
	return m.resetRows, nil
}

type testServer struct {
	store *memStore
	hub   *realtime.Hub
	srv   *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := newMemStore()
	cal, err := civil.NewCalendar("Asia/Seoul", nil)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	hub := realtime.NewHub(100)
	ingest := appingest.NewService(st, cal, hub)
	router := NewRouter(Deps{
		DB:        st,
		Calendar:  cal,
		Hub:       hub,
		Ingest:    ingest,
		Prober:    apphealth.NewProber(st, ingest, hub, time.Second),
		Dashboard: appdashboard.NewService(st, cal),
		Agents:    appagent.NewService(st, hub),
		Sessions: appsession.NewService(appsession.Config{
			Secret:        "secret",
			TTL:           time.Hour,
			AdminEmail:    "ops@example.com",
			AdminPassword: "pw",
		}, nil),
		Resetter: rollover.NewStoreResetter(st),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return &testServer{store: st, hub: hub, srv: srv}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	resp, body := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ops@example.com", "password": "pw"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d body=%v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %v", body)
	}
	return token
}

func TestStatsIngestResponses(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/stats", "", map[string]any{"agentId": "a1", "apiType": "heartbeat"})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("heartbeat: status=%d body=%v", resp.StatusCode, body)
	}
	if ts.store.agents["a1"].Status != store.StatusOnline {
		t.Fatalf("agent should be online")
	}
	if len(ts.store.logs) != 1 || ts.store.logs[0].Type != "heartbeat" || ts.store.logs[0].Action != "a1 heartbeat" {
		t.Fatalf("unexpected heartbeat log: %+v", ts.store.logs)
	}

	resp, body = ts.do(t, http.MethodPost, "/stats", "", map[string]any{"apiType": "calculate", "logAction": "Quote: 1"})
	if resp.StatusCode != http.StatusBadRequest || body["success"] != false || body["error"] != "agentId is required" {
		t.Fatalf("missing agent: status=%d body=%v", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodPost, "/stats", "", "{not json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json: status=%d", resp.StatusCode)
	}
}

func TestStatsLogOnlyWithoutAgentIDIsRejected(t *testing.T) {
	ts := newTestServer(t)

	payloads := []map[string]any{
		{"apiType": "activity_log", "logAction": "Image generated"},
		{"logMessage": "Quote: 150000"},
		{"agentId": "   ", "apiType": "activity_log", "logAction": "Image generated"},
	}
	for i, p := range payloads {
		resp, body := ts.do(t, http.MethodPost, "/stats", "", p)
		if resp.StatusCode != http.StatusBadRequest || body["success"] != false || body["error"] != "agentId is required" {
			t.Fatalf("payload %d: status=%d body=%v", i, resp.StatusCode, body)
		}
	}
	if len(ts.store.logs) != 0 {
		t.Fatalf("orphan logs were written: %+v", ts.store.logs)
	}
}

func TestStatsCounterFailureStillSucceeds(t *testing.T) {
	ts := newTestServer(t)
	ts.store.statErr = errors.New("deadlock")

	resp, body := ts.do(t, http.MethodPost, "/stats", "", map[string]any{"agentId": "a1", "apiType": "calculate", "responseTime": 200})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("status=%d body=%v", resp.StatusCode, body)
	}
}

func TestStatsHeartbeatFailureIs500(t *testing.T) {
	ts := newTestServer(t)
	ts.store.beatErr = errors.New("connection refused")

	resp, body := ts.do(t, http.MethodPost, "/stats", "", map[string]any{"agentId": "a1", "apiType": "heartbeat"})
	if resp.StatusCode != http.StatusInternalServerError || body["success"] != false {
		t.Fatalf("status=%d body=%v", resp.StatusCode, body)
	}
}

func TestStatsPreflightIsOpen(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.srv.URL+"/stats", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCheckManual(t *testing.T) {
	ts := newTestServer(t)
	ts.store.agents["mock"] = &store.Agent{ID: "mock"}

	resp, _ := ts.do(t, http.MethodPost, "/stats/check-manual", "", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing agent id: status=%d", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodPost, "/stats/check-manual", "", map[string]any{"agentId": "ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown agent: status=%d", resp.StatusCode)
	}
	resp, body := ts.do(t, http.MethodPost, "/stats/check-manual", "", map[string]any{"agentId": "mock"})
	if resp.StatusCode != http.StatusOK || body["success"] != true {
		t.Fatalf("mock agent: status=%d body=%v", resp.StatusCode, body)
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/agents", "", nil)
	if resp.StatusCode != http.StatusUnauthorized || body["error"] != "unauthorized" {
		t.Fatalf("status=%d body=%v", resp.StatusCode, body)
	}
	resp, _ = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ops@example.com", "password": "nope"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status=%d", resp.StatusCode)
	}

	token := ts.login(t)
	resp, body = ts.do(t, http.MethodGet, "/api/fleet/summary", token, nil)
	if resp.StatusCode != http.StatusOK || body["day"] == "" {
		t.Fatalf("summary status=%d body=%v", resp.StatusCode, body)
	}
	resp, _ = ts.do(t, http.MethodGet, "/api/agents/ghost", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown agent status=%d", resp.StatusCode)
	}
}

func TestRegisterAndPatchAgent(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)

	resp, body := ts.do(t, http.MethodPost, "/api/agents", token, map[string]any{"id": "a7", "name": "Quoter"})
	if resp.StatusCode != http.StatusCreated || body["id"] != "a7" {
		t.Fatalf("register status=%d body=%v", resp.StatusCode, body)
	}
	resp, _ = ts.do(t, http.MethodPost, "/api/agents", token, map[string]any{"id": "a7", "name": "Again"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status=%d", resp.StatusCode)
	}
	resp, body = ts.do(t, http.MethodPatch, "/api/agents/a7", token, map[string]any{"status": "processing"})
	if resp.StatusCode != http.StatusOK || body["status"] != "processing" {
		t.Fatalf("patch status=%d body=%v", resp.StatusCode, body)
	}
}

func TestRolloverResetPublishesInvalidation(t *testing.T) {
	ts := newTestServer(t)
	ts.store.resetRows = 3
	token := ts.login(t)

	resp, body := ts.do(t, http.MethodPost, "/api/rollover/reset", token, map[string]any{"day": "2025-01-15"})
	if resp.StatusCode != http.StatusOK || body["reset"] != float64(3) || body["day"] != "2025-01-15" {
		t.Fatalf("status=%d body=%v", resp.StatusCode, body)
	}
	if len(ts.store.resets) != 1 || ts.store.resets[0].Format("2006-01-02") != "2025-01-15" {
		t.Fatalf("unexpected resets: %v", ts.store.resets)
	}
	evs := ts.hub.ReplayAfter("")
	if len(evs) == 0 || evs[len(evs)-1].Event != realtime.EventStatsReset {
		t.Fatalf("expected stats_reset event, got %+v", evs)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/rollover/reset", token, map[string]any{"day": "15/01/2025"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad day status=%d", resp.StatusCode)
	}

	ts.store.resetErr = errors.New("down")
	resp, _ = ts.do(t, http.MethodPost, "/api/rollover/reset", token, nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("failing reset status=%d", resp.StatusCode)
	}
}
