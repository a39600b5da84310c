// Package revocation holds the token revocation list consulted by the auth
// middleware. Entries live until the token they revoke would have expired.
package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bharatid/pkg/platform/sentinel"
)

// Clock returns the current time.
type Clock func() time.Time

// List is implemented by InMemoryTRL, RedisTRL and PostgresTRL.
type List interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}

// InMemoryTRL keeps revoked JTIs with their expiry. Expired entries are dropped
// lazily on lookup and on every revoke.
type InMemoryTRL struct {
	mu      sync.Mutex
	entries map[string]time.Time
	clock   Clock
}

// InMemoryOption configures an InMemoryTRL.
type InMemoryOption func(*InMemoryTRL)

// WithClock sets the clock function for tests.
func WithClock(clock Clock) InMemoryOption {
	return func(t *InMemoryTRL) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewInMemoryTRL constructs a process-local token revocation list.
func NewInMemoryTRL(opts ...InMemoryOption) *InMemoryTRL {
	trl := &InMemoryTRL{
		entries: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(trl)
	}
	return trl
}

func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	for k, exp := range t.entries {
		if !now.Before(exp) {
			delete(t.entries, k)
		}
	}
	t.entries[jti] = now.Add(ttl)
	return nil
}

func (t *InMemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	exp, ok := t.entries[jti]
	if !ok {
		return false, nil
	}
	if !t.clock().Before(exp) {
		delete(t.entries, jti)
		return false, nil
	}
	return true, nil
}

// Len reports the number of live and not yet swept entries.
func (t *InMemoryTRL) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Checker adapts a List to the auth middleware's revocation check.
type Checker struct {
	list List
}

func NewChecker(list List) *Checker {
	return &Checker{list: list}
}

func (c *Checker) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return c.list.IsRevoked(ctx, jti)
}
