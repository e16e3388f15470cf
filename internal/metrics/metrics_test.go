package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m := New(Config{Enabled: false})
	m.Inc(MetricLoginSuccess)
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled counter = %d, want 0", got)
	}

	snap := m.SnapshotNow()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("disabled snapshot not empty: %+v", snap)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricResolveLatency, time.Millisecond)
	if m.Enabled() {
		t.Fatal("nil metrics reported enabled")
	}
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("nil counter = %d, want 0", got)
	}
}

func TestIncAndSnapshot(t *testing.T) {
	m := New(Config{Enabled: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginFailure)
	m.Inc(MetricLoginFailure)
	m.Inc(MetricIDCount) // out of range, ignored

	if got := m.Value(MetricLoginFailure); got != 2 {
		t.Fatalf("failure counter = %d, want 2", got)
	}

	snap := m.SnapshotNow()
	if snap.Counters[MetricLoginSuccess] != 1 || snap.Counters[MetricLoginFailure] != 2 {
		t.Fatalf("snapshot counters = %+v", snap.Counters)
	}

	// The snapshot is detached from live state.
	m.Inc(MetricLoginSuccess)
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatal("snapshot tracked a later increment")
	}
}

func TestHistogramBuckets(t *testing.T) {
	m := New(Config{Enabled: true, EnableLatency: true})

	samples := []struct {
		d      time.Duration
		bucket int
	}{
		{1 * time.Millisecond, 0},
		{8 * time.Millisecond, 1},
		{20 * time.Millisecond, 2},
		{40 * time.Millisecond, 3},
		{90 * time.Millisecond, 4},
		{200 * time.Millisecond, 5},
		{400 * time.Millisecond, 6},
		{2 * time.Second, 7},
	}
	for _, s := range samples {
		m.Observe(MetricResolveLatency, s.d)
	}

	buckets := m.SnapshotNow().Histograms[MetricResolveLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("bucket count = %d", len(buckets))
	}
	for _, s := range samples {
		if buckets[s.bucket] != 1 {
			t.Errorf("bucket %d = %d, want 1 (sample %v)", s.bucket, buckets[s.bucket], s.d)
		}
	}
}

func TestObserveRequiresLatencyFlag(t *testing.T) {
	m := New(Config{Enabled: true, EnableLatency: false})
	m.Observe(MetricResolveLatency, time.Millisecond)

	if hist := m.SnapshotNow().Histograms; len(hist) != 0 {
		t.Fatalf("histograms = %+v, want none", hist)
	}
}

func TestConcurrentInc(t *testing.T) {
	m := New(Config{Enabled: true})

	const goroutines = 8
	const perGoroutine = 1000

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				m.Inc(MetricSessionCreated)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricSessionCreated); got != goroutines*perGoroutine {
		t.Fatalf("counter = %d, want %d", got, goroutines*perGoroutine)
	}
}
