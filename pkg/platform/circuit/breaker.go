// Package circuit fails calls fast while a dependency keeps failing.
package circuit

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrOpen is returned by Execute while the breaker rejects calls.
var ErrOpen = errors.New("circuit open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Breaker trips after a run of consecutive failures, rejects calls for the
// open timeout, then lets a probe through. Enough consecutive probe successes
// close it again.
type Breaker struct {
	name             string
	failureThreshold uint32
	successThreshold uint32
	openTimeout      time.Duration
	isFailure        func(error) bool
	logger           *slog.Logger
	cb               *gobreaker.CircuitBreaker[any]
}

type Option func(*Breaker)

func WithFailureThreshold(n uint32) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets how many half-open probes must succeed to close.
func WithSuccessThreshold(n uint32) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func WithOpenTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.openTimeout = d
		}
	}
}

// WithFailurePredicate selects which errors count against the breaker. Errors
// it rejects are returned to the caller but recorded as successes.
func WithFailurePredicate(fn func(error) bool) Option {
	return func(b *Breaker) {
		if fn != nil {
			b.isFailure = fn
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Breaker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 1,
		openTimeout:      30 * time.Second,
		isFailure:        func(err error) bool { return err != nil },
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: b.successThreshold,
		Timeout:     b.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.failureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !b.isFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return b
}

// Execute runs fn unless the breaker is open. A rejected call returns an
// error wrapping ErrOpen without invoking fn.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", b.name, ErrOpen)
	}
	return err
}

func (b *Breaker) State() State {
	switch b.cb.State() {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

func (b *Breaker) Name() string {
	return b.name
}
