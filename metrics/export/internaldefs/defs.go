package internaldefs

import (
	sessiongate "github.com/sokoni-app/sessiongate"
)

// CounterDef binds one coordinator counter to its exported name.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   sessiongate.MetricID
	Name string
	Help string
}

// HistogramDef binds one coordinator histogram to its exported name.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   sessiongate.MetricID
	Name string
	Help string
}

// CounterDefs is the single source of truth for exported counter names.
var CounterDefs = []CounterDef{
	{ID: sessiongate.MetricAuthSet, Name: "sessiongate_auth_set_total", Help: "Stored credential pairs."},
	{ID: sessiongate.MetricAuthCleared, Name: "sessiongate_auth_cleared_total", Help: "Cleared sessions."},
	{ID: sessiongate.MetricAutoLoginSuccess, Name: "sessiongate_auto_login_success_total", Help: "Sessions restored without user re-entry."},
	{ID: sessiongate.MetricAutoLoginRejected, Name: "sessiongate_auto_login_rejected_total", Help: "Auto-login attempts that found no usable persistent session."},
	{ID: sessiongate.MetricSessionExpired, Name: "sessiongate_session_expired_total", Help: "Sessions cleared on expiry detection."},
	{ID: sessiongate.MetricGateFastPath, Name: "sessiongate_gate_fast_path_total", Help: "Gated actions executed directly on an authenticated session."},
	{ID: sessiongate.MetricGateActionFailed, Name: "sessiongate_gate_action_failed_total", Help: "Gated actions whose execution failed."},
	{ID: sessiongate.MetricActionDeferred, Name: "sessiongate_action_deferred_total", Help: "Gated actions persisted behind a login redirect."},
	{ID: sessiongate.MetricActionReplayed, Name: "sessiongate_action_replayed_total", Help: "Deferred actions replayed after login."},
	{ID: sessiongate.MetricActionDropped, Name: "sessiongate_action_dropped_total", Help: "Deferred actions cleared without a successful replay."},
	{ID: sessiongate.MetricKeepAliveTick, Name: "sessiongate_keep_alive_tick_total", Help: "Keep-alive activity refreshes."},
	{ID: sessiongate.MetricStorageError, Name: "sessiongate_storage_error_total", Help: "Degraded storage operations."},
}

// HistogramDefs is the single source of truth for exported histogram names.
var HistogramDefs = []HistogramDef{
	{ID: sessiongate.MetricReplayLatency, Name: "sessiongate_replay_latency_seconds", Help: "Pending-action replay latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, aligned with
// the coordinator's fixed histogram layout.
var HistogramBounds = []string{
	"0.001",
	"0.005",
	"0.01",
	"0.05",
	"0.1",
	"0.5",
	"1",
	"+Inf",
}

// HistogramBoundSuffix carries the same bounds in instrument-name-safe
// form for backends that reject dots and plus signs.
var HistogramBoundSuffix = []string{
	"0_001",
	"0_005",
	"0_01",
	"0_05",
	"0_1",
	"0_5",
	"1",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// exposition formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
