package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "trl:jti:"

// RedisTRL shares revocation state between server instances. Key expiry does
// the cleanup.
type RedisTRL struct {
	client          *redis.Client
	checkDurationMs prometheus.Histogram
}

// RedisTRLOption configures a RedisTRL.
type RedisTRLOption func(*RedisTRL)

// WithRegisterer records revocation check latency on reg.
func WithRegisterer(reg prometheus.Registerer) RedisTRLOption {
	return func(t *RedisTRL) {
		t.checkDurationMs = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "bharatid_is_token_revoked_duration_ms",
			Help:    "Latency of token revocation checks in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		})
	}
}

// NewRedisTRL constructs a Redis-backed token revocation list.
func NewRedisTRL(client *redis.Client, opts ...RedisTRLOption) *RedisTRL {
	trl := &RedisTRL{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(trl)
		}
	}
	return trl
}

// RevokeToken sets the jti key with ttl as its expiry.
func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	return t.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports false once the key has expired.
func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if t.checkDurationMs != nil {
		start := time.Now()
		defer func() {
			t.checkDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
		}()
	}
	if jti == "" {
		return false, nil
	}
	_, err := t.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
