// Package admin gates routes on the capability set of the authenticated role.
package admin

import (
	"log/slog"
	"net/http"

	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/platform/httputil"
	"bharatid/pkg/requestcontext"
)

// RequireCapability rejects requests whose role lacks capability with 403.
// Must run after auth.RequireAuth; an unauthenticated context has RoleNone and
// therefore fails here too.
func RequireCapability(capability domain.Capability, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := requestcontext.Role(ctx)
			if !role.Can(capability) {
				logger.WarnContext(ctx, "forbidden - missing capability",
					"capability", capability,
					"role", role,
					"user_id", requestcontext.UserID(ctx).String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
