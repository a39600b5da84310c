// Package httptransport is the HTTP surface of the enrollment server. Handlers
// decode requests, call services and translate coded errors; business rules
// live in the services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"bharatid/internal/platform/metrics"
	ratemw "bharatid/internal/ratelimit/middleware"
	"bharatid/pkg/domain"
	"bharatid/pkg/platform/middleware/admin"
	authmw "bharatid/pkg/platform/middleware/auth"
	"bharatid/pkg/platform/middleware/metadata"
	"bharatid/pkg/platform/middleware/request"
	"bharatid/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router wires. Limiter, Metrics, Revocations and
// Checks are optional.
type Deps struct {
	Auth        AuthService
	Enrollment  EnrollmentService
	Documents   DocumentService
	Validator   authmw.JWTValidator
	Revocations authmw.TokenRevocationChecker
	Limiter     *ratemw.Middleware
	Metrics     *metrics.Metrics
	Checks      map[string]HealthChecker
	Logger      *slog.Logger
}

// NewRouter builds the API router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	health := NewHealthHandler(d.Checks, d.Logger)
	r.Get("/healthz", health.handleHealth)

	authH := NewAuthHandler(d.Auth, d.Logger)
	enrollH := NewEnrollmentHandler(d.Enrollment, d.Documents.MaxUploadBytes(), d.Logger)
	docsH := NewDocumentHandler(d.Documents, d.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))

		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(d.Limiter.RateLimit("login"))
			}
			r.Post("/login", authH.handleLogin)
		})
		r.Post("/enroll", enrollH.handleEnroll)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(d.Validator, d.Revocations, d.Logger))

			r.Post("/logout", authH.handleLogout)
			r.Get("/biometric-status", docsH.handleStatus)
			r.Post("/upload-document/{docType}", docsH.handleUpload)
			r.Get("/view-document/{docType}", docsH.handleView)

			r.With(admin.RequireCapability(domain.CapVerifyDocument, d.Logger)).
				Post("/verify-document/{docType}", docsH.handleVerify)
			r.With(admin.RequireCapability(domain.CapListUsers, d.Logger)).
				Get("/all-users", enrollH.handleAllUsers)
		})
	})
	return r
}
