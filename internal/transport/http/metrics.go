package httptransport

import "expvar"

var (
	metricStatsRequestsTotal = expvar.NewInt("http_stats_requests_total")
	metricStatsRequestErrors = expvar.NewInt("http_stats_request_errors_total")

	metricManualChecksTotal = expvar.NewInt("http_manual_checks_total")
	metricManualCheckErrors = expvar.NewInt("http_manual_check_errors_total")

	metricLoginTotal           = expvar.NewInt("http_login_total")
	metricLoginFailedTotal     = expvar.NewInt("http_login_failed_total")
	metricSessionRejectedTotal = expvar.NewInt("http_session_rejected_total")

	metricRolloverResetTotal = expvar.NewInt("http_rollover_reset_total")
)
