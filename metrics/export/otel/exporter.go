package otel

import (
	"context"
	"errors"
	"fmt"

	sessiongate "github.com/sokoni-app/sessiongate"
	"github.com/sokoni-app/sessiongate/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilMeter is returned when the exporter is constructed without
	// a Meter to register instruments on.
	ErrNilMeter = errors.New("otel exporter: meter required")
	// ErrNilSource is returned when there is no coordinator (or other
	// snapshot source) to read from.
	ErrNilSource = errors.New("otel exporter: metrics source required")
)

// metricsSource is the slice of [sessiongate.Coordinator] the exporter
// needs; any type with the same snapshot surface can stand in.
type metricsSource interface {
	MetricsSnapshot() sessiongate.MetricsSnapshot
	AuditDropped() uint64
}

// OTelExporter bridges the coordinator's counters and the replay
// latency histogram into OpenTelemetry asynchronous instruments. All
// values are read through one snapshot per collection cycle, so a
// scrape observes a consistent set.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []boundCounter
	histograms   []boundHistogram
	auditDropped metric.Int64ObservableCounter
}

// boundCounter ties a coordinator metric id to its OTel instrument.
type boundCounter struct {
	id         sessiongate.MetricID
	instrument metric.Int64ObservableCounter
}

// boundHistogram exposes one cumulative gauge per fixed bucket plus a
// total-count gauge. OTel's native histogram instruments are
// synchronous; the coordinator only hands out snapshots, so the bucket
// gauges are the honest representation.
type boundHistogram struct {
	id      sessiongate.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// NewOTelExporter registers instruments for every coordinator metric
// on meter and starts observing coordinator. Call [OTelExporter.Close]
// when the coordinator shuts down.
func NewOTelExporter(meter metric.Meter, coordinator *sessiongate.Coordinator) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, coordinator)
}

// NewOTelExporterFromSource is [NewOTelExporter] for a custom snapshot
// source, mainly for tests and for callers that wrap the coordinator.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}

	var observables []metric.Observable
	var err error
	if observables, err = e.bindInstruments(meter); err != nil {
		return nil, err
	}

	e.registration, err = meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("otel exporter: register callback: %w", err)
	}
	return e, nil
}

// bindInstruments creates one instrument per definition in
// internaldefs plus the audit-drop counter, and returns them all for
// callback registration.
func (e *OTelExporter) bindInstruments(meter metric.Meter) ([]metric.Observable, error) {
	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+len(internaldefs.HistogramDefs)*9+1)

	e.counters = make([]boundCounter, 0, len(internaldefs.CounterDefs))
	for _, def := range internaldefs.CounterDefs {
		instrument, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("otel exporter: counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, boundCounter{id: def.ID, instrument: instrument})
		observables = append(observables, instrument)
	}

	e.histograms = make([]boundHistogram, 0, len(internaldefs.HistogramDefs))
	for _, def := range internaldefs.HistogramDefs {
		bound := boundHistogram{id: def.ID}
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			name := def.Name + "_bucket_le_" + suffix
			gauge, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
			if err != nil {
				return nil, fmt.Errorf("otel exporter: bucket gauge %s: %w", name, err)
			}
			bound.buckets[i] = gauge
			observables = append(observables, gauge)
		}

		countGauge, err := meter.Int64ObservableGauge(def.Name+"_count", metric.WithDescription("Histogram total sample count."))
		if err != nil {
			return nil, fmt.Errorf("otel exporter: count gauge %s_count: %w", def.Name, err)
		}
		bound.count = countGauge
		observables = append(observables, countGauge)
		e.histograms = append(e.histograms, bound)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		"sessiongate_audit_dropped_total",
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("otel exporter: audit dropped counter: %w", err)
	}
	e.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	return observables, nil
}

// observe is the single collection callback: one snapshot feeds every
// instrument.
func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()

	for _, c := range e.counters {
		observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
	}
	for _, h := range e.histograms {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[h.id]))
		for i := range cumulative {
			observer.ObserveInt64(h.buckets[i], int64(cumulative[i]))
		}
		observer.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
	}
	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback. The instruments stop
// reporting; the coordinator is unaffected.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
