package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"bharatid/internal/ratelimit/metrics"
	"bharatid/internal/ratelimit/models"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/platform/httputil"
	"bharatid/pkg/requestcontext"
)

// RateLimiter is implemented by bucket.InMemoryBucketStore.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mx
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit limits requests per client IP. The client IP must already be in
// the request context. Limiter failures let the request through.
func (m *Middleware) RateLimit(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.limiter.Allow(ctx, name+":"+ip)
			if err != nil {
				m.metrics.IncrementDecision(name, "error")
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"limiter", name,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.metrics.IncrementDecision(name, "denied")
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"limiter", name,
					"client_ip", ip,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests,
					"Too many requests from this IP address. Please try again later."))
				return
			}

			m.metrics.IncrementDecision(name, "allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
