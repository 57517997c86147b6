package ingest

import "expvar"

var (
	metricIngestTotal          = expvar.NewInt("ingest_requests_total")
	metricIngestInvalidTotal   = expvar.NewInt("ingest_invalid_total")
	metricIngestFailedTotal    = expvar.NewInt("ingest_failed_total")
	metricCounterUpdateTotal   = expvar.NewInt("counter_update_total")
	metricCounterUpdateDropped = expvar.NewInt("counter_update_dropped_total")
	metricActivityLogTotal     = expvar.NewInt("activity_log_total")
	metricActivityLogDropped   = expvar.NewInt("activity_log_dropped_total")
	metricHeartbeatTotal       = expvar.NewInt("heartbeat_total")
)
