// Package ratelimit tracks failed authentication attempts per client
// identity (IP or email) in memory. State does not survive a restart.
package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"

	"inkwell/cms/pkg/logger"

	"go.uber.org/zap"
)

const shardCount = 32

// entry holds the recorded attempt timestamps for one key.
type entry struct {
	attempts []time.Time
}

// shard owns a slice of the key space behind its own mutex, so attempts
// on different keys rarely contend.
type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Limiter is an in-memory attempt counter with a periodic sweep that
// drops keys whose attempts have all aged out. Construct with New,
// start the sweep with Start, and stop it with Stop.
type Limiter struct {
	shards    [shardCount]*shard
	sweepTick time.Duration
	retention time.Duration
	stopChan  chan struct{}
	stopOnce  sync.Once
	now       func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithSweepInterval overrides how often the background sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(l *Limiter) { l.sweepTick = d }
}

// WithRetention overrides how long a key's newest attempt is kept
// before the sweep may drop the key.
func WithRetention(d time.Duration) Option {
	return func(l *Limiter) { l.retention = d }
}

// withClock substitutes the time source, for tests.
func withClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter. The sweep does not run until Start is called.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		sweepTick: time.Hour,
		retention: time.Hour,
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}
	for i := range l.shards {
		l.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start runs the background sweep until Stop is called.
func (l *Limiter) Start() {
	go func() {
		ticker := time.NewTicker(l.sweepTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-l.stopChan:
				return
			}
		}
	}()
}

// Stop terminates the background sweep. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
}

func (l *Limiter) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return l.shards[h.Sum32()%shardCount]
}

// Check reports whether key is currently blocked: true when at least
// maxAttempts attempts fall inside the trailing window. A key with no
// recorded attempts is never blocked.
func (l *Limiter) Check(key string, maxAttempts int, window time.Duration) bool {
	cutoff := l.now().Add(-window)
	s := l.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	recent := 0
	for _, ts := range e.attempts {
		if ts.After(cutoff) {
			recent++
		}
	}
	return recent >= maxAttempts
}

// RecordAttempt registers a failed attempt for key.
func (l *Limiter) RecordAttempt(key string) {
	now := l.now()
	s := l.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.attempts = append(e.attempts, now)
}

// RecordSuccess clears all attempts for key. A successful login resets
// the counter entirely.
func (l *Limiter) RecordSuccess(key string) {
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// ResetAttempts is the administrative clear, same effect as RecordSuccess.
func (l *Limiter) ResetAttempts(key string) {
	l.RecordSuccess(key)
}

// AttemptCount returns the number of attempts recorded for key,
// regardless of age. Used by tests and admin tooling.
func (l *Limiter) AttemptCount(key string) int {
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return len(e.attempts)
	}
	return 0
}

// sweep drops keys whose newest attempt is older than the retention
// window. Each shard is locked only for its own pass; a racing
// RecordAttempt simply lands before or after.
func (l *Limiter) sweep() {
	cutoff := l.now().Add(-l.retention)
	removed := 0

	for _, s := range l.shards {
		s.mu.Lock()
		for key, e := range s.entries {
			stale := true
			for _, ts := range e.attempts {
				if ts.After(cutoff) {
					stale = false
					break
				}
			}
			if stale {
				delete(s.entries, key)
				removed++
			}
		}
		s.mu.Unlock()
	}

	if removed > 0 {
		logger.Debug("rate limiter sweep", zap.Int("removed", removed))
	}
}
