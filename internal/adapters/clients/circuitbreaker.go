package clients

import (
	"sync"
	"time"
)

// State is the circuit breaker's position: closed (traffic flows), open
// (traffic blocked), or half-open (limited probes test recovery).
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes when the breaker trips and recovers.
type CircuitBreakerConfig struct {
	// MaxFailures is how many consecutive failures trip the breaker open.
	MaxFailures int

	// Timeout is how long the breaker stays open before letting probe
	// requests through.
	Timeout time.Duration

	// HalfOpenLimit bounds concurrent probes while half-open, and is also
	// the number of consecutive probe successes needed to close again.
	HalfOpenLimit int
}

// CircuitBreaker stops the seed fetcher from hammering a source that keeps
// failing. Consecutive failures trip it open; after Timeout it lets a
// bounded number of probes through, and enough probe successes close it.
// A single probe failure reopens it.
type CircuitBreaker struct {
	mu  sync.RWMutex
	cfg CircuitBreakerConfig

	state       State
	failures    int // consecutive failures while closed
	successes   int // consecutive successes while half-open
	probes      int // probes in flight while half-open
	lastFailure time.Time

	onStateChange func(from, to State)

	now func() time.Time // swapped out by tests
}

// NewCircuitBreaker returns a closed breaker with the given tuning.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		state: StateClosed,
		cfg:   cfg,
		now:   time.Now,
	}
}

// OnStateChange registers a callback for state transitions, typically used
// to log or count trips. The callback runs on its own goroutine.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Allow reports whether a request may proceed. While open it checks the
// timeout and, once elapsed, moves to half-open and admits the caller as
// the first probe. While half-open it admits at most HalfOpenLimit
// concurrent probes.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if cb.now().Sub(cb.lastFailure) < cb.cfg.Timeout {
			return false
		}
		cb.setState(StateHalfOpen)
		cb.probes = 1

		return true

	case StateHalfOpen:
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return false
		}
		cb.probes++

		return true

	default:
		return false
	}
}

// RecordSuccess notes a completed request. Closed: clears the failure
// streak. Half-open: counts toward the successes needed to close.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0

	case StateHalfOpen:
		cb.probes--
		cb.successes++

		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.setState(StateClosed)
		}
	}
}

// RecordFailure notes a failed request. Closed: extends the failure streak
// and trips the breaker at MaxFailures. Half-open: reopens immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			cb.setState(StateOpen)
		}

	case StateHalfOpen:
		cb.probes--
		cb.setState(StateOpen)
	}
}

// State returns the breaker's current position.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.state
}

// setState transitions and resets the streak counters. Caller holds the lock,
// so the callback is dispatched on its own goroutine.
func (cb *CircuitBreaker) setState(next State) {
	if cb.state == next {
		return
	}

	prev := cb.state
	cb.state = next
	cb.failures = 0
	cb.successes = 0

	if cb.onStateChange != nil {
		go cb.onStateChange(prev, next)
	}
}
