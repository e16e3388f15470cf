package rate

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, window time.Duration, limit int) (*Limiter, *time.Time) {
	t.Helper()

	current := time.Unix(1_700_000_000, 0)
	l := New(Config{Window: window, Limit: limit})
	l.now = func() time.Time { return current }
	t.Cleanup(l.Close)

	return l, &current
}

func TestAllowWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 3)

	for i := 0; i < 3; i++ {
		if err := l.Allow("10.0.0.1"); err != nil {
			t.Fatalf("request %d unexpectedly rejected: %v", i+1, err)
		}
	}
}

func TestAllowRejectsOverLimit(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 120)

	for i := 0; i < 120; i++ {
		if err := l.Allow("10.0.0.1"); err != nil {
			t.Fatalf("request %d unexpectedly rejected: %v", i+1, err)
		}
	}
	if err := l.Allow("10.0.0.1"); !errors.Is(err, ErrLimited) {
		t.Fatalf("request 121 should be rejected, got %v", err)
	}
}

func TestWindowSlideRestoresAdmission(t *testing.T) {
	l, clock := newTestLimiter(t, time.Minute, 2)

	if err := l.Allow("c"); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := l.Allow("c"); err != nil {
		t.Fatalf("second: %v", err)
	}
	if err := l.Allow("c"); !errors.Is(err, ErrLimited) {
		t.Fatalf("third should be rejected, got %v", err)
	}

	// Slide past all previous entries, including the rejected one.
	*clock = clock.Add(61 * time.Second)

	if err := l.Allow("c"); err != nil {
		t.Fatalf("after slide: %v", err)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 1)

	if err := l.Allow("a"); err != nil {
		t.Fatalf("a: %v", err)
	}
	if err := l.Allow("b"); err != nil {
		t.Fatalf("b should have its own window: %v", err)
	}
	if err := l.Allow("a"); !errors.Is(err, ErrLimited) {
		t.Fatalf("a second request should be rejected, got %v", err)
	}
}

func TestCountAndReset(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 10)

	for i := 0; i < 4; i++ {
		_ = l.Allow("k")
	}
	if got := l.Count("k"); got != 4 {
		t.Fatalf("count = %d, want 4", got)
	}

	l.Reset("k")
	if got := l.Count("k"); got != 0 {
		t.Fatalf("count after reset = %d, want 0", got)
	}
}

func TestConcurrentSameKeyDoesNotUndercount(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 50)

	var wg sync.WaitGroup
	rejected := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Allow("shared"); err != nil {
				rejected <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(rejected)

	count := 0
	for range rejected {
		count++
	}
	if count != 50 {
		t.Fatalf("rejected = %d, want exactly 50", count)
	}
}

func TestSweepDropsStaleKeys(t *testing.T) {
	l, clock := newTestLimiter(t, time.Minute, 10)

	_ = l.Allow("stale")
	*clock = clock.Add(2 * time.Minute)
	l.sweep()

	s := l.shardFor("stale")
	s.mu.Lock()
	_, ok := s.windows["stale"]
	s.mu.Unlock()
	if ok {
		t.Fatal("expected stale key to be removed by sweep")
	}
}
