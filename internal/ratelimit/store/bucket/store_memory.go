package bucket

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"bharatid/internal/ratelimit/models"
)

// InMemoryBucketStore keeps one token bucket per key. Buckets refill at
// perMinute/60 tokens per second up to burst. State is per process.
type InMemoryBucketStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	clock   func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Option func(*InMemoryBucketStore)

func WithClock(clock func() time.Time) Option {
	return func(s *InMemoryBucketStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewInMemoryBucketStore(perMinute float64, burst int, opts ...Option) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow takes one token from key's bucket if one is available.
func (s *InMemoryBucketStore) Allow(_ context.Context, key string) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	b := s.buckets[key]
	if b == nil {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	result := &models.RateLimitResult{
		Allowed:   allowed,
		Limit:     s.burst,
		Remaining: max(int(math.Floor(tokens)), 0),
		ResetAt:   now.Add(s.refillDuration(float64(s.burst) - tokens)),
	}
	if !allowed {
		result.RetryAfter = max(int(math.Ceil(s.refillDuration(1-tokens).Seconds())), 1)
	}
	return result, nil
}

// Reset forgets key's bucket.
func (s *InMemoryBucketStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// Sweep drops buckets idle for longer than idle and returns how many were
// removed. An idle bucket has refilled, so dropping it changes nothing.
func (s *InMemoryBucketStore) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.clock().Add(-idle)
	removed := 0
	for key, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys.
func (s *InMemoryBucketStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *InMemoryBucketStore) refillDuration(tokens float64) time.Duration {
	if tokens <= 0 || s.limit <= 0 {
		return 0
	}
	return time.Duration(tokens / float64(s.limit) * float64(time.Second))
}
