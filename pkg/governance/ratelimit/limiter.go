package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"
)

// shardCount is the number of lock shards. Must be a power of two.
const shardCount = 32

// window is a fixed-window counter for a single key.
type window struct {
	start time.Time
	count int
}

// shard holds the window records for a subset of keys.
type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

// Limiter is a fixed-window rate limiter keyed by caller identity.
//
// State lives for the lifetime of the process; records are created on
// first use of a key and reset lazily when their window elapses. The
// limiter never fails: Allow always returns a decision.
type Limiter struct {
	maxRequests int
	windowSize  time.Duration
	shards      [shardCount]*shard

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewLimiter creates a fixed-window limiter admitting maxRequests per key
// per windowSize.
//
// Example:
//
//	limiter := ratelimit.NewLimiter(10, time.Minute) // 10 req/min per key
//	if !limiter.Allow(key) {
//	    // deny with 429
//	}
func NewLimiter(maxRequests int, windowSize time.Duration) *Limiter {
	l := &Limiter{
		maxRequests: maxRequests,
		windowSize:  windowSize,
		now:         time.Now,
	}
	for i := range l.shards {
		l.shards[i] = &shard{windows: make(map[string]*window)}
	}
	return l
}

// Allow reports whether a request for key is admitted in the current
// window, incrementing the window counter as a side effect when it is.
func (l *Limiter) Allow(key string) bool {
	s := l.shardFor(key)
	now := l.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= l.windowSize {
		w = &window{start: now}
		s.windows[key] = w
	}

	if w.count < l.maxRequests {
		w.count++
		return true
	}
	return false
}

// Remaining returns the number of requests still admitted for key in the
// current window. It does not mutate the window.
func (l *Limiter) Remaining(key string) int {
	s := l.shardFor(key)
	now := l.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= l.windowSize {
		return l.maxRequests
	}

	remaining := l.maxRequests - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset returns the time at which the current window for key rolls over.
// For an unseen or elapsed window this is now + window size.
func (l *Limiter) Reset(key string) time.Time {
	s := l.shardFor(key)
	now := l.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= l.windowSize {
		return now.Add(l.windowSize)
	}
	return w.start.Add(l.windowSize)
}

// Limit returns the configured per-window request limit.
func (l *Limiter) Limit() int {
	return l.maxRequests
}

// SetClock replaces the limiter's clock. Intended for tests.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// shardFor selects the lock shard for key.
func (l *Limiter) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return l.shards[h.Sum32()&(shardCount-1)]
}
