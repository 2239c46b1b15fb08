// Package prometheus provides Prometheus collectors for coordinator metrics.
//
// [NewPrometheusExporter] accepts a [sessiongate.Coordinator] and exposes an
// [http.Handler] that renders all coordinator counters and histograms in
// Prometheus text exposition format. Counter names are prefixed
// sessiongate_*_total; the single histogram is sessiongate_replay_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate coordinator state.
package prometheus
