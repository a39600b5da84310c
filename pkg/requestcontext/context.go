// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values, services read them. Keeping this package free of
// net/http lets services depend on it without pulling in transport code.
//
//	userID := requestcontext.UserID(ctx)
//	role := requestcontext.Role(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithPrincipal(ctx, userID, domain.RoleAdmin)
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"bharatid/pkg/domain"
)

type (
	userIDKey      struct{}
	roleKey        struct{}
	tokenIDKey     struct{}
	tokenExpiryKey struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// -----------------------------------------------------------------------------
// Principal (authenticated user)
// -----------------------------------------------------------------------------

// UserID retrieves the authenticated user ID. Returns the zero value if unset.
func UserID(ctx context.Context) domain.UserID {
	if id, ok := ctx.Value(userIDKey{}).(domain.UserID); ok {
		return id
	}
	return domain.UserID{}
}

// Role retrieves the authenticated role. Returns RoleNone if unset.
func Role(ctx context.Context) domain.Role {
	if r, ok := ctx.Value(roleKey{}).(domain.Role); ok {
		return r
	}
	return domain.RoleNone
}

// WithPrincipal injects the authenticated user and role.
func WithPrincipal(ctx context.Context, userID domain.UserID, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, userID)
	return context.WithValue(ctx, roleKey{}, role)
}

// TokenID retrieves the jti of the bearer token that authenticated the request.
func TokenID(ctx context.Context) string {
	if jti, ok := ctx.Value(tokenIDKey{}).(string); ok {
		return jti
	}
	return ""
}

// TokenExpiry retrieves the expiry of the bearer token.
func TokenExpiry(ctx context.Context) time.Time {
	if exp, ok := ctx.Value(tokenExpiryKey{}).(time.Time); ok {
		return exp
	}
	return time.Time{}
}

// WithToken injects the token identity used for revocation on logout.
func WithToken(ctx context.Context, jti string, expiresAt time.Time) context.Context {
	ctx = context.WithValue(ctx, tokenIDKey{}, jti)
	return context.WithValue(ctx, tokenExpiryKey{}, expiresAt)
}

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time, falling back to time.Now() outside
// HTTP requests (CLI, tests without injection).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
