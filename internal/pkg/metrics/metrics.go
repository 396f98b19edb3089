// Package metrics defines the Prometheus collectors exported by the hub on
// the HTTP /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ActiveSessions tracks the number of currently admitted client sessions.
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vehiclehub_active_sessions",
			Help: "Number of currently connected client sessions.",
		},
	)

	// ConnectionsRefusedTotal counts connections refused because the session
	// registry was full.
	ConnectionsRefusedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vehiclehub_connections_refused_total",
			Help: "Total number of connections refused at capacity.",
		},
	)

	// AuthTotal counts authentication attempts by result.
	AuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehiclehub_auth_total",
			Help: "Total number of authentication attempts.",
		},
		[]string{"result"}, // result: success/rejected
	)

	// CommandsTotal counts accepted control commands by command name.
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehiclehub_commands_total",
			Help: "Total number of control commands applied to the vehicle.",
		},
		[]string{"command"},
	)

	// TelemetryFramesTotal counts telemetry broadcast ticks.
	TelemetryFramesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vehiclehub_telemetry_frames_total",
			Help: "Total number of telemetry frames broadcast to clients.",
		},
	)

	// TelemetrySendErrorsTotal counts per-session telemetry sends that failed
	// or timed out. The session's own read loop handles the teardown.
	TelemetrySendErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vehiclehub_telemetry_send_errors_total",
			Help: "Total number of failed telemetry sends to individual sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ActiveSessions,
		ConnectionsRefusedTotal,
		AuthTotal,
		CommandsTotal,
		TelemetryFramesTotal,
		TelemetrySendErrorsTotal,
	)
}
