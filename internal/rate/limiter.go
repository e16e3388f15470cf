package rate

import (
	"hash/fnv"
	"sync"
	"time"
)

const (
	shardCount      = 64
	cleanupInterval = 5 * time.Minute
)

// Config holds limiter tuning parameters.
type Config struct {
	// Window is the trailing duration over which requests are counted.
	Window time.Duration
	// Limit is the maximum number of requests admitted per window.
	Limit int
}

type shard struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// Limiter enforces a sliding-window request ceiling per client key.
type Limiter struct {
	shards    [shardCount]*shard
	window    time.Duration
	limit     int
	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Limiter and starts its background cleanup loop.
// Callers must Close the limiter when done with it.
func New(cfg Config) *Limiter {
	l := &Limiter{
		window: cfg.Window,
		limit:  cfg.Limit,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	for i := range l.shards {
		l.shards[i] = &shard{windows: make(map[string][]time.Time)}
	}

	go l.cleanupLoop()

	return l
}

// Allow records one admission attempt for key and reports whether it is
// within the window ceiling. Rejected attempts still occupy a slot, so a
// flooding client does not regain admission until its window drains.
func (l *Limiter) Allow(key string) error {
	s := l.shardFor(key)
	now := l.now()
	cutoff := now.Add(-l.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.windows[key]
	kept := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	s.windows[key] = kept

	if len(kept) > l.limit {
		return ErrLimited
	}
	return nil
}

// Count returns the number of recorded attempts currently inside the window.
func (l *Limiter) Count(key string) int {
	s := l.shardFor(key)
	cutoff := l.now().Add(-l.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.windows[key] {
		if t.After(cutoff) {
			count++
		}
	}
	return count
}

// Reset clears the window for key.
func (l *Limiter) Reset(key string) {
	s := l.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
}

// Close stops the background cleanup loop. Idempotent.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

func (l *Limiter) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return l.shards[h.Sum32()%shardCount]
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) sweep() {
	cutoff := l.now().Add(-l.window)

	for _, s := range l.shards {
		s.mu.Lock()
		for key, entries := range s.windows {
			kept := entries[:0]
			for _, t := range entries {
				if t.After(cutoff) {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				delete(s.windows, key)
			} else {
				s.windows[key] = kept
			}
		}
		s.mu.Unlock()
	}
}
