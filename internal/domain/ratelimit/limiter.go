// Package ratelimit bounds repeated attempts at named actions within a
// time window.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

// Defaults applied when a caller passes zero values.
const (
	// DefaultMaxAttempts is the attempt cap per window.
	DefaultMaxAttempts = 5
	// DefaultWindow is the counting window.
	DefaultWindow = time.Minute
)

// counter tracks attempts for one action key within the current window.
type counter struct {
	attempts  int
	resetTime time.Time
}

// Limiter maintains a fixed-window attempt counter per action key.
// Counters live for the process lifetime only; nothing is persisted.
// Thread-safe for concurrent access. Includes background cleanup to
// prevent unbounded growth from one-off action keys.
type Limiter struct {
	counters        map[string]*counter
	mu              sync.Mutex
	now             func() time.Time
	logger          *slog.Logger
	stopChan        chan struct{}
	wg              sync.WaitGroup
	once            sync.Once
	cleanupInterval time.Duration
}

// NewLimiter creates a Limiter with a 5-minute cleanup interval.
func NewLimiter(logger *slog.Logger) *Limiter {
	return NewLimiterWithConfig(logger, 5*time.Minute)
}

// NewLimiterWithConfig creates a Limiter with a custom cleanup interval.
func NewLimiterWithConfig(logger *slog.Logger, cleanupInterval time.Duration) *Limiter {
	return &Limiter{
		counters:        make(map[string]*counter),
		now:             time.Now,
		logger:          logger,
		stopChan:        make(chan struct{}),
		cleanupInterval: cleanupInterval,
	}
}

// WithClock overrides the wall clock. For tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Limited reports whether the action has exhausted its attempts in the
// current window, and counts this call as an attempt when it has not.
//
// When the window has elapsed since the last reset, the counter starts
// over. At the cap the counter is NOT incremented further, so the action
// unblocks as soon as the window elapses.
func (l *Limiter) Limited(action string, maxAttempts int, window time.Duration) bool {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	record, ok := l.counters[action]
	if !ok {
		record = &counter{resetTime: now.Add(window)}
		l.counters[action] = record
	}

	if now.After(record.resetTime) {
		record.attempts = 0
		record.resetTime = now.Add(window)
	}

	if record.attempts >= maxAttempts {
		return true
	}

	record.attempts++
	return false
}

// Reset deletes the counter for the action, lifting any active limit.
func (l *Limiter) Reset(action string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counters, action)
}

// Size returns the number of tracked action keys. Useful for tests and
// monitoring.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// StartCleanup starts the background cleanup goroutine, which periodically
// removes counters whose window has long elapsed. Stops when Stop is called.
func (l *Limiter) StartCleanup() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(l.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-l.stopChan:
				return
			case <-ticker.C:
				l.cleanup()
			}
		}
	}()
}

// cleanup removes counters that have been past their reset time for more
// than one cleanup interval.
func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.cleanupInterval)
	cleaned := 0

	for action, record := range l.counters {
		if record.resetTime.Before(cutoff) {
			delete(l.counters, action)
			cleaned++
		}
	}

	if cleaned > 0 {
		l.logger.Debug("rate limiter cleanup completed",
			"cleaned_keys", cleaned,
			"remaining_keys", len(l.counters))
	}
}

// Stop gracefully stops the cleanup goroutine and waits for it to exit.
// Safe to call multiple times, and before StartCleanup.
func (l *Limiter) Stop() {
	l.once.Do(func() {
		close(l.stopChan)
	})
	l.wg.Wait()
}
