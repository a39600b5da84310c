package testutil

import (
	"net/http"
	"time"

	"bharatid/pkg/domain"
	"bharatid/pkg/requestcontext"
)

// WithPrincipal simulates what the auth middleware attaches to an
// authenticated request.
func WithPrincipal(req *http.Request, userID domain.UserID, role domain.Role) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), userID, role))
}

// WithToken attaches the token identity used by logout.
func WithToken(req *http.Request, jti string, expiresAt time.Time) *http.Request {
	return req.WithContext(requestcontext.WithToken(req.Context(), jti, expiresAt))
}

// WithAuth combines WithPrincipal and WithToken, the typical state of a
// request that passed the auth middleware.
func WithAuth(req *http.Request, userID domain.UserID, role domain.Role, jti string, expiresAt time.Time) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), userID, role)
	ctx = requestcontext.WithToken(ctx, jti, expiresAt)
	return req.WithContext(ctx)
}
