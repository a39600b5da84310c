package models

import "time"

// RateLimitResult is the outcome of one limiter check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the bucket will be full again.
	ResetAt time.Time
	// RetryAfter is the wait in whole seconds before the next request can
	// pass; zero when Allowed.
	RetryAfter int
}
