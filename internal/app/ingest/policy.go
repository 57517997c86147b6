package ingest

import "fleet-monitor/internal/telemetry"

type failurePolicy int

const (
	// propagate fails the whole ingestion call.
	propagate failurePolicy = iota
	// swallow logs the failure and still reports success, so agents never
	// retry-storm on a best-effort path.
	swallow
)

func (p failurePolicy) String() string {
	if p == swallow {
		return "swallow"
	}
	return "propagate"
}

var obligationPolicy = map[telemetry.Kind]failurePolicy{
	telemetry.KindHeartbeat:    propagate,
	telemetry.KindStatusChange: propagate,
	telemetry.KindCountedStat:  swallow,
	telemetry.KindActivityLog:  swallow,
}

func policyFor(k telemetry.Kind) failurePolicy {
	if p, ok := obligationPolicy[k]; ok {
		return p
	}
	return propagate
}
