package ingest

import "fleet-monitor/internal/telemetry"

// Outcome records what happened to one obligation of a payload.
type Outcome struct {
	Kind      telemetry.Kind
	Err       error
	Swallowed bool
}

type Result struct {
	AgentID  string
	Outcomes []Outcome
}

// Applied reports whether the obligation of kind k ran without error.
func (r *Result) Applied(k telemetry.Kind) bool {
	for _, o := range r.Outcomes {
		if o.Kind == k {
			return o.Err == nil
		}
	}
	return false
}

type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
