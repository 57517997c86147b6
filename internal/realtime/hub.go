// Package realtime fans row-level changes out to connected dashboard sessions.
package realtime

import (
	"expvar"
	"strconv"
	"sync"
	"time"
)

const (
	EventAgentChanged     = "agent_changed"
	EventStatsChanged     = "stats_changed"
	EventActivityAppended = "activity_appended"
	EventStatsReset       = "stats_reset"
	EventPing             = "ping"
)

var (
	metricPublishedTotal     = expvar.NewInt("realtime_published_total")
	metricDroppedTotal       = expvar.NewInt("realtime_dropped_total")
	metricSubscribersActive  = expvar.NewInt("realtime_subscribers_active")
	metricSubscriptionsTotal = expvar.NewInt("realtime_subscriptions_total")
)

// Event is one change notification. AgentID is empty for fleet-wide events
// such as a day reset.
type Event struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	AgentID  string `json:"agent_id,omitempty"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`

	seq int64
}

// Publisher is the write side of the feed.
type Publisher interface {
	Publish(event, agentID string, data any) Event
}

// Filter narrows what a subscriber sees. An empty AgentID matches every
// agent; fleet-wide events always match.
type Filter struct {
	AfterID string
	AgentID string
}

func (f Filter) match(ev Event) bool {
	return f.AgentID == "" || ev.AgentID == "" || ev.AgentID == f.AgentID
}

// Hub keeps a bounded replay window and pushes every event to subscribers.
// A subscriber that falls behind misses events rather than blocking writers.
type Hub struct {
	mu       sync.Mutex
	nextSeq  int64
	max      int
	events   []Event
	watchers map[chan Event]Filter
	closed   bool
}

func NewHub(max int) *Hub {
	if max <= 0 {
		max = 500
	}
	return &Hub{
		max:      max,
		watchers: map[chan Event]Filter{},
	}
}

func (h *Hub) Publish(event, agentID string, data any) Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return Event{}
	}
	h.nextSeq++
	ev := Event{
		EventID:  strconv.FormatInt(h.nextSeq, 10),
		Event:    event,
		AgentID:  agentID,
		ServerTS: time.Now().UnixMilli(),
		Data:     data,
		seq:      h.nextSeq,
	}
	h.events = append(h.events, ev)
	if len(h.events) > h.max {
		h.events = h.events[len(h.events)-h.max:]
	}
	metricPublishedTotal.Add(1)
	for ch, f := range h.watchers {
		if !f.match(ev) {
			continue
		}
		select {
		case ch <- ev:
		default:
			metricDroppedTotal.Add(1)
		}
	}
	return ev
}

// ReplayAfter returns buffered events newer than lastEventID, or the whole
// window when the id is empty or unparseable.
func (h *Hub) ReplayAfter(lastEventID string) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replayLocked(Filter{AfterID: lastEventID})
}

func (h *Hub) replayLocked(f Filter) []Event {
	after, err := strconv.ParseInt(f.AfterID, 10, 64)
	if err != nil {
		after = 0
	}
	out := make([]Event, 0, len(h.events))
	for _, ev := range h.events {
		if ev.seq > after && f.match(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Subscribe registers a subscriber and captures its replay in one step, so
// an event lands either in the replay or on the channel, never both.
func (h *Hub) Subscribe(f Filter) *Subscription {
	sub := &Subscription{hub: h, ch: make(chan Event, 32)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	sub.replay = h.replayLocked(f)
	h.watchers[sub.ch] = f
	metricSubscriptionsTotal.Add(1)
	metricSubscribersActive.Add(1)
	return sub
}

func (h *Hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.watchers[ch]; ok {
		delete(h.watchers, ch)
		close(ch)
		metricSubscribersActive.Add(-1)
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.watchers {
		close(ch)
		delete(h.watchers, ch)
		metricSubscribersActive.Add(-1)
	}
}

// Subscription is one reader of the hub. It is not safe for concurrent use.
type Subscription struct {
	hub    *Hub
	ch     chan Event
	replay []Event
	last   int64
}

func (s *Subscription) Replay() []Event { return s.replay }

func (s *Subscription) Events() <-chan Event { return s.ch }

func (s *Subscription) Close() { s.hub.unsubscribe(s.ch) }

// fresh reports whether ev is newer than everything already delivered and
// advances the high-water mark when it is.
func (s *Subscription) fresh(ev Event) bool {
	if ev.seq <= s.last {
		return false
	}
	s.last = ev.seq
	return true
}
