package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var pingInterval = 15 * time.Second

func WriteSSE(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if ev.EventID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", ev.EventID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", ev.Event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}

// SetSSEHeaders applies headers that keep event streams stable across proxies.
func SetSSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-transform")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("X-Content-Type-Options", "nosniff")
}

func pingEvent() Event {
	now := time.Now().UnixMilli()
	return Event{Event: EventPing, ServerTS: now, Data: map[string]any{"ts": now}}
}

// EventsHandler streams hub events as server-sent events, replaying anything
// after Last-Event-ID first. An agent_id query parameter narrows the stream to
// one agent plus fleet-wide events.
func EventsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		SetSSEHeaders(w)

		sub := hub.Subscribe(Filter{
			AfterID: r.Header.Get("Last-Event-ID"),
			AgentID: r.URL.Query().Get("agent_id"),
		})
		defer sub.Close()

		for _, ev := range sub.Replay() {
			sub.fresh(ev)
			if err := WriteSSE(w, ev); err != nil {
				return
			}
		}
		flusher.Flush()

		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				return
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				if !sub.fresh(ev) {
					continue
				}
				if err := WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				if err := WriteSSE(w, pingEvent()); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
