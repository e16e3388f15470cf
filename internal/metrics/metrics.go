package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram slot.
type MetricID uint16

const (
	MetricSignupSuccess MetricID = iota
	MetricSignupDuplicate
	MetricSignupWeakPassword
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginUnverified
	MetricMFARequired
	MetricMFAFailure
	MetricMFASuccess
	MetricSessionCreated
	MetricSessionDestroyed
	MetricSessionExpired
	MetricTokenIssued
	MetricTokenConsumed
	MetricTokenRejected
	MetricVerificationSuccess
	MetricVerificationFailure
	MetricResetRequested
	MetricResetSuccess
	MetricResetFailure
	MetricEnrollStarted
	MetricEnrollCompleted
	MetricMFADisabled
	MetricRateLimited
	MetricCSRFRejected
	MetricResolveLatency
	MetricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type histogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Config controls which metric paths are active.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// Metrics holds atomic counters and the optional resolve-latency histogram.
// A nil *Metrics is valid and all operations on it are no-ops.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]histogram
}

// Snapshot is a point-in-time deep copy of all metric values.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only the resolve histogram is populated.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricResolveLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) SnapshotNow() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricResolveLatency].buckets[i])
		}
		s.Histograms[MetricResolveLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
