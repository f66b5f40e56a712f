package infra

// Circuit breaker guarding the extraction sidecar. A run of failed extraction
// calls trips the breaker so queued documents fail fast instead of each
// waiting out the full HTTP timeout; after a cool-down, probe calls decide
// whether the sidecar is back. The retry cron also checks the state and skips
// its tick entirely while the breaker is open.

import (
	"errors"
	"sync"
	"time"

	"landedcost/internal/config"
)

// CBState is the breaker's position.
type CBState int

const (
	CBClosed   CBState = iota // requests flow
	CBOpen                    // fast-fail, sidecar presumed down
	CBHalfOpen                // probing recovery
)

// String returns the state name used in logs and the health payload.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned without calling the sidecar while the breaker
// is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds the trip and recovery tuning.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures that trip the breaker
	SuccessThreshold int           // consecutive half-open successes that close it
	OpenTimeout      time.Duration // cool-down before probing again
}

// ExtractorCBConfig reads the breaker tuning from the environment
// (EXTRACTOR_CB_* variables).
func ExtractorCBConfig(cfg *config.Config) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: cfg.ExtractorCBFailureThreshold,
		SuccessThreshold: cfg.ExtractorCBSuccessThreshold,
		OpenTimeout:      time.Duration(cfg.ExtractorCBOpenTimeoutSec) * time.Second,
	}
}

// CircuitBreaker implements the Closed → Open → Half-Open state machine with
// thread-safe transitions.
type CircuitBreaker struct {
	mu        sync.Mutex
	state     CBState
	failures  int
	successes int
	openedAt  time.Time
	cfg       CircuitBreakerConfig
}

// NewCircuitBreaker creates a breaker in the closed state. Non-positive
// tuning values fall back to safe defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}
	return &CircuitBreaker{state: CBClosed, cfg: cfg}
}

// State reports the current state, promoting open → half-open once the
// cool-down has elapsed. Safe for concurrent use.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CBOpen && time.Since(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.successes = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open, and feeds the outcome back
// into the state machine.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()
	cb.record(err)
	return err
}

// record advances the state machine on one call outcome.
func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.openedAt = time.Now()
		switch cb.state {
		case CBClosed:
			if cb.failures >= cb.cfg.FailureThreshold {
				cb.state = CBOpen
				cb.successes = 0
			}
		case CBHalfOpen:
			// failed probe: back to open for another cool-down
			cb.state = CBOpen
			cb.failures = 0
		}
		return
	}

	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}
