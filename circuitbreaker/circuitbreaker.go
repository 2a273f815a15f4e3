// Package circuitbreaker stops calling a remote dependency after a run of
// failures and lets a few probe calls through once a cool-down has passed.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alorle/addon-playlist/metrics"
)

// State is the position of a breaker in its closed, open, half-open cycle.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpen is returned without calling the guarded function while the breaker
// is open, or while half-open once every probe slot is taken.
var ErrOpen = errors.New("circuit breaker is open")

// Config contains the configuration for a circuit breaker.
type Config struct {
	Name             string        // Label for logs and the state metric; empty disables the metric
	FailureThreshold int           // Consecutive failures that open the circuit (default 5)
	Timeout          time.Duration // Time spent open before probing (default 30s)
	HalfOpenRequests int           // Probes admitted while half-open; all must pass to close (default 1)

	// IsFailure decides whether an error returned by the guarded function
	// counts against the breaker. Errors it rejects are still returned to the
	// caller but are treated like a success. Nil counts every error.
	IsFailure func(error) bool

	Logger *slog.Logger
}

// CircuitBreaker guards calls to one dependency.
type CircuitBreaker interface {
	Execute(fn func() error) error
	State() State
}

// Breaker is the default CircuitBreaker.
type Breaker struct {
	cfg    Config
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	failures int
	probes   int
	passed   int
	openedAt time.Time
}

// New creates a closed breaker. Zero config values take the defaults.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests <= 0 {
		cfg.HalfOpenRequests = 1
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(error) bool { return true }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Name != "" {
		metrics.SetCircuitBreakerState(cfg.Name, StateClosed.String())
	}
	return &Breaker{
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
		state:  StateClosed,
	}
}

// Execute calls fn unless the breaker rejects the call with ErrOpen, and
// returns fn's error unchanged.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// State returns the current state. An open breaker whose timeout has elapsed
// still reports open until the next call probes it.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.Timeout {
			return ErrOpen
		}
		b.setState(StateHalfOpen)
	}
	if b.state == StateHalfOpen {
		if b.probes >= b.cfg.HalfOpenRequests {
			return ErrOpen
		}
		b.probes++
	}
	return nil
}

func (b *Breaker) record(err error) {
	failed := err != nil && b.cfg.IsFailure(err)

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.setState(StateOpen)
		}
	case StateHalfOpen:
		if failed {
			b.setState(StateOpen)
			return
		}
		b.passed++
		if b.passed >= b.cfg.HalfOpenRequests {
			b.setState(StateClosed)
		}
	}
	// A call admitted before the circuit opened finishing late changes nothing.
}

// setState must be called with mu held.
func (b *Breaker) setState(s State) {
	from := b.state
	b.state = s
	b.failures, b.probes, b.passed = 0, 0, 0
	if s == StateOpen {
		b.openedAt = b.now()
	}

	level := slog.LevelInfo
	if s == StateOpen {
		level = slog.LevelWarn
	}
	b.logger.Log(context.Background(), level, "circuit breaker state changed", "name", b.cfg.Name, "from", from.String(), "to", s.String())
	if b.cfg.Name != "" {
		metrics.SetCircuitBreakerState(b.cfg.Name, s.String())
	}
}
