package infra

import (
	"errors"
	"testing"
	"time"

	"landedcost/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractorCBConfig_ComesFromEnvironment(t *testing.T) {
	cfg := &config.Config{
		ExtractorCBFailureThreshold: 7,
		ExtractorCBSuccessThreshold: 3,
		ExtractorCBOpenTimeoutSec:   90,
	}

	got := ExtractorCBConfig(cfg)
	assert.Equal(t, 7, got.FailureThreshold)
	assert.Equal(t, 3, got.SuccessThreshold)
	assert.Equal(t, 90*time.Second, got.OpenTimeout)
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Hour})
	fail := func() error { return errors.New("sidecar down") }

	for i := 0; i < 3; i++ {
		assert.Error(t, cb.Execute(fail))
	}
	assert.Equal(t, CBOpen, cb.State())

	// Fast-fail while open — fn must not run
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, CBHalfOpen, cb.State())

	// Two successful probes close the circuit
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(func() error { return errors.New("still down") }))
	assert.Equal(t, CBOpen, cb.State())
}
