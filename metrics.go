package sessiongate

import (
	"sync/atomic"
	"time"
)

// MetricID indexes the coordinator's counters.
type MetricID uint16

const (
	// MetricAuthSet counts successful SetAuth calls.
	MetricAuthSet MetricID = iota
	// MetricAuthCleared counts ClearAuth calls.
	MetricAuthCleared
	// MetricAutoLoginSuccess counts sessions restored without user
	// re-entry.
	MetricAutoLoginSuccess
	// MetricAutoLoginRejected counts auto-login attempts that found no
	// usable persistent session.
	MetricAutoLoginRejected
	// MetricSessionExpired counts sessions cleared on expiry
	// detection.
	MetricSessionExpired
	// MetricGateFastPath counts gated actions executed directly on an
	// authenticated session.
	MetricGateFastPath
	// MetricGateActionFailed counts gated actions whose execution
	// failed (the failure is swallowed).
	MetricGateActionFailed
	// MetricActionDeferred counts gated actions persisted behind a
	// login redirect.
	MetricActionDeferred
	// MetricActionReplayed counts deferred actions replayed after
	// login.
	MetricActionReplayed
	// MetricActionDropped counts deferred actions cleared without a
	// successful replay.
	MetricActionDropped
	// MetricKeepAliveTick counts keep-alive refreshes.
	MetricKeepAliveTick
	// MetricStorageError counts degraded storage operations.
	MetricStorageError
	// MetricReplayLatency is the replay duration histogram.
	MetricReplayLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed-size set of atomic counters plus the replay
// latency histogram. A disabled Metrics never allocates per call.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and
// histogram buckets, keyed by [MetricID].
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics builds the counter set from cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a replay duration into the latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricReplayLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every non-zero counter and histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64),
		Histograms: make(map[MetricID][]uint64),
	}
	if m == nil || !m.enabled {
		return snapshot
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if v := atomic.LoadUint64(&m.counters[id].value); v > 0 {
			snapshot.Counters[id] = v
		}
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		var total uint64
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricReplayLatency].buckets[i])
			total += buckets[i]
		}
		if total > 0 {
			snapshot.Histograms[MetricReplayLatency] = buckets
		}
	}

	return snapshot
}

// Bucket upper bounds: 1ms, 5ms, 10ms, 50ms, 100ms, 500ms, 1s, +Inf.
var histBounds = [histBucketCount - 1]time.Duration{
	time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
}

func bucketIndex(d time.Duration) int {
	for i, bound := range histBounds {
		if d <= bound {
			return i
		}
	}
	return histBucketCount - 1
}
