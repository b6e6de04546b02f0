package input

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks key source activity.
type Metrics struct {
	// Event counters
	keysRead     atomic.Uint64
	keysSent     atomic.Uint64
	untranslated atomic.Uint64
	skipped      atomic.Uint64

	// Delivery latency: time from the backend producing a key until a
	// reader takes it.
	mu                sync.RWMutex
	latencies         []time.Duration
	maxLatencySamples int
	latencyIdx        int

	// Peak latency (all time)
	peakLatency atomic.Int64

	startTime time.Time

	enabled atomic.Bool
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		latencies:         make([]time.Duration, 1000),
		maxLatencySamples: 1000,
		startTime:         time.Now(),
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables metrics collection.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether metrics collection is enabled.
func (m *Metrics) IsEnabled() bool {
	return m.enabled.Load()
}

// RecordKeyRead records a key handed to a reader after waiting latency.
func (m *Metrics) RecordKeyRead(latency time.Duration) {
	if !m.enabled.Load() {
		return
	}

	m.keysRead.Add(1)

	latencyNs := latency.Nanoseconds()
	for {
		current := m.peakLatency.Load()
		if latencyNs <= current {
			break
		}
		if m.peakLatency.CompareAndSwap(current, latencyNs) {
			break
		}
	}

	// Store in circular buffer
	m.mu.Lock()
	m.latencies[m.latencyIdx] = latency
	m.latencyIdx = (m.latencyIdx + 1) % m.maxLatencySamples
	m.mu.Unlock()
}

// RecordKeySent records a synthetic key posted to the backend.
func (m *Metrics) RecordKeySent() {
	if !m.enabled.Load() {
		return
	}
	m.keysSent.Add(1)
}

// RecordUntranslated records a key the backend reported but could not name.
func (m *Metrics) RecordUntranslated() {
	if !m.enabled.Load() {
		return
	}
	m.untranslated.Add(1)
}

// RecordSkipped records a non-key event such as a resize.
func (m *Metrics) RecordSkipped() {
	if !m.enabled.Load() {
		return
	}
	m.skipped.Add(1)
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	KeysRead     uint64
	KeysSent     uint64
	Untranslated uint64
	Skipped      uint64

	AvgLatency  time.Duration
	MaxLatency  time.Duration
	P99Latency  time.Duration
	PeakLatency time.Duration

	KeysPerSecond float64
	Uptime        time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	latencies := slices.Clone(m.latencies)
	start := m.startTime
	m.mu.RUnlock()

	keyCount := m.keysRead.Load()
	uptime := time.Since(start)

	snap := MetricsSnapshot{
		KeysRead:     keyCount,
		KeysSent:     m.keysSent.Load(),
		Untranslated: m.untranslated.Load(),
		Skipped:      m.skipped.Load(),
		PeakLatency:  time.Duration(m.peakLatency.Load()),
		Uptime:       uptime,
	}

	if uptime > 0 {
		snap.KeysPerSecond = float64(keyCount) / uptime.Seconds()
	}

	snap.AvgLatency, snap.MaxLatency, snap.P99Latency = calculateLatencyStats(latencies)

	return snap
}

// calculateLatencyStats computes average, max, and p99 from a slice of latencies.
func calculateLatencyStats(latencies []time.Duration) (avg, maxLat, p99 time.Duration) {
	valid := make([]time.Duration, 0, len(latencies))
	for _, l := range latencies {
		if l > 0 {
			valid = append(valid, l)
		}
	}

	if len(valid) == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	for _, l := range valid {
		sum += l
	}
	avg = sum / time.Duration(len(valid))

	slices.Sort(valid)
	maxLat = valid[len(valid)-1]

	idx := int(float64(len(valid)) * 0.99)
	if idx >= len(valid) {
		idx = len(valid) - 1
	}
	p99 = valid[idx]

	return avg, maxLat, p99
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.keysRead.Store(0)
	m.keysSent.Store(0)
	m.untranslated.Store(0)
	m.skipped.Store(0)
	m.peakLatency.Store(0)

	m.mu.Lock()
	m.latencies = make([]time.Duration, m.maxLatencySamples)
	m.latencyIdx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}

// KeysRead returns the number of keys delivered to readers.
func (m *Metrics) KeysRead() uint64 {
	return m.keysRead.Load()
}

// Untranslated returns the number of keys the backend could not name.
func (m *Metrics) Untranslated() uint64 {
	return m.untranslated.Load()
}

// HealthStatus represents the current health of a key source.
type HealthStatus struct {
	Healthy          bool
	Untranslated     uint64
	PeakLatency      time.Duration
	LatencyThreshold time.Duration
	Message          string
}

// HealthCheck returns the current health status.
func (m *Metrics) HealthCheck(latencyThreshold time.Duration) HealthStatus {
	status := HealthStatus{
		Healthy:          true,
		Untranslated:     m.untranslated.Load(),
		PeakLatency:      time.Duration(m.peakLatency.Load()),
		LatencyThreshold: latencyThreshold,
	}

	if status.Untranslated > 0 {
		status.Healthy = false
		status.Message = "untranslated keys detected"
	} else if status.PeakLatency > latencyThreshold {
		status.Healthy = false
		status.Message = "latency threshold exceeded"
	} else {
		status.Message = "healthy"
	}

	return status
}
