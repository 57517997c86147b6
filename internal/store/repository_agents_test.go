package store

import (
	"errors"
	"testing"
	"time"
)

func TestAgentsCreateGetListAndConflict(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	mustCreateAgent(t, st, ctx, "a1", "Quoter", "Acme")
	mustCreateAgent(t, st, ctx, "a2", "", "Acme")

	a, err := st.GetAgent(ctx, "a1")
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if a.Name != "Quoter" || a.ClientName != "Acme" || a.Status != StatusOffline || a.APIStatus != APIStatusUnknown {
		t.Fatalf("unexpected agent: %+v", a)
	}
	if !a.IsMock() {
		t.Fatal("agent without base url should be a mock agent")
	}

	list, err := st.ListAgents(ctx)
	if err != nil {
		t.Fatalf("list agents: %v", err)
	}
	if len(list) != 2 || list[0].ClientID != list[1].ClientID {
		t.Fatalf("expected two agents sharing one client, got %+v", list)
	}

	if err := st.CreateAgent(ctx, NewAgent{ID: "a1", Name: "dup"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := st.GetAgent(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTouchHeartbeatUpsertsAndReturnsLabel(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()
	mustCreateAgent(t, st, ctx, "a1", "", "Acme")

	label, err := st.TouchHeartbeat(ctx, Heartbeat{AgentID: "a1", Model: "gpt-4o", BaseURL: "http://agent.local"})
	if err != nil {
		t.Fatalf("touch heartbeat: %v", err)
	}
	if label.String() != "Acme" {
		t.Fatalf("label = %q, want Acme", label.String())
	}

	a, err := st.GetAgent(ctx, "a1")
	if err != nil {
		t.Fatalf("get agent: %v", err)
	}
	if a.Status != StatusOnline || a.Model != "gpt-4o" || a.BaseURL != "http://agent.local" || a.LastActive == nil {
		t.Fatalf("unexpected agent after heartbeat: %+v", a)
	}

	// Empty metadata keeps what is already stored.
	if _, err := st.TouchHeartbeat(ctx, Heartbeat{AgentID: "a1"}); err != nil {
		t.Fatalf("touch heartbeat: %v", err)
	}
	a, _ = st.GetAgent(ctx, "a1")
	if a.Model != "gpt-4o" || a.BaseURL != "http://agent.local" {
		t.Fatalf("metadata was overwritten: %+v", a)
	}

	label, err = st.TouchHeartbeat(ctx, Heartbeat{AgentID: "fresh"})
	if err != nil {
		t.Fatalf("touch heartbeat for new agent: %v", err)
	}
	if label.String() != "fresh" {
		t.Fatalf("label = %q, want fresh", label.String())
	}
}

func TestSetAgentStatusAndProfile(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()
	mustCreateAgent(t, st, ctx, "a1", "A", "")

	if err := st.SetAgentStatus(ctx, "a1", StatusProcessing); err != nil {
		t.Fatalf("set status: %v", err)
	}
	model := "claude"
	a, err := st.UpdateAgentProfile(ctx, "a1", AgentPatch{Model: &model})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if a.Status != StatusProcessing || a.Model != "claude" {
		t.Fatalf("unexpected agent: %+v", a)
	}
	if _, err := st.UpdateAgentProfile(ctx, "ghost", AgentPatch{Model: &model}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActivityLogsOrderAndFilter(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()
	mustCreateAgent(t, st, ctx, "a1", "A", "")
	mustCreateAgent(t, st, ctx, "a2", "B", "")

	ts := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"a1", "a2", "a1"} {
		if _, err := st.InsertActivityLog(ctx, ActivityLog{AgentID: id, Action: "ping", Type: "log", Status: "success", CreatedAt: ts}); err != nil {
			t.Fatalf("insert log: %v", err)
		}
	}

	all, err := st.ListActivityLogs(ctx, ActivityFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(all))
	}
	// Same timestamp: newest insert first.
	if all[0].ID < all[1].ID || all[1].ID < all[2].ID {
		t.Fatalf("expected id desc tie-break, got %+v", all)
	}

	only, err := st.ListActivityLogs(ctx, ActivityFilter{AgentID: "a1", Limit: 10})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(only) != 2 || only[0].AgentName != "A" {
		t.Fatalf("unexpected filtered logs: %+v", only)
	}

	if _, err := st.InsertActivityLog(ctx, ActivityLog{AgentID: "ghost", Action: "x", Type: "log", Status: "success"}); err == nil {
		t.Fatal("expected orphan log insert to fail")
	}
}

func TestFleetSummary(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()
	mustCreateAgent(t, st, ctx, "a1", "A", "")
	mustCreateAgent(t, st, ctx, "a2", "B", "")

	today := day("2025-01-15")
	if _, err := st.TouchHeartbeat(ctx, Heartbeat{AgentID: "a1"}); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if err := st.ApplyCountedStat(ctx, CountedStat{AgentID: "a1", APIType: "calculate", CountAPI: true, CountTask: true, ResponseTimeMS: 100, Day: today}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := st.ApplyCountedStat(ctx, CountedStat{AgentID: "a2", APIType: "calculate", CountAPI: true, ResponseTimeMS: 300, Day: day("2025-01-14")}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	sum, err := st.FleetSummary(ctx, today)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Agents != 2 || sum.Online != 1 || sum.TodayAPICalls != 1 || sum.TotalAPICalls != 2 || sum.AvgResponseTime != 200 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
