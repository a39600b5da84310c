// Package service authenticates users and ends their sessions.
package service

import (
	"context"
	"log/slog"
	"time"

	"bharatid/internal/audit"
	"bharatid/internal/auth/metrics"
	"bharatid/internal/auth/models"
	enrollmodels "bharatid/internal/enrollment/models"
	"bharatid/internal/enrollment/secrets"
	jwttoken "bharatid/internal/jwt_token"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// UserLookup resolves an email or aadhaar number to a user.
type UserLookup interface {
	FindByIdentifier(ctx context.Context, identifier string) (*enrollmodels.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID domain.UserID, role domain.Role, expiresIn time.Duration) (*jwttoken.IssuedToken, error)
}

type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	users    UserLookup
	tokens   TokenIssuer
	trl      RevocationList
	auditor  AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tokenTTL time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(users UserLookup, tokens TokenIssuer, trl RevocationList, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		trl:      trl,
		auditor:  auditor,
		logger:   slog.Default(),
		tokenTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the password of the user named by identifier and issues an
// access token. An unknown identifier and a wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByIdentifier(ctx, req.Identifier)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			secrets.Burn(req.Password)
			s.loginFailed(ctx, domain.UserID{}, "unknown_identifier")
			return nil, invalidCredentials()
		}
		s.metrics.IncrementLogin("error")
		return nil, err
	}

	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.loginFailed(ctx, user.ID, "bad_password")
			return nil, invalidCredentials()
		}
		s.metrics.IncrementLogin("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify credentials")
	}

	issued, err := s.tokens.GenerateAccessToken(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		s.metrics.IncrementLogin("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.IncrementLogin("success")
	s.emit(ctx, audit.Event{Action: audit.ActionLoginSucceeded, UserID: user.ID})
	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"role", user.Role.String(),
		"jti", issued.JTI,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.LoginResult{Message: models.MessageLoginSuccessful, Token: issued.Token}, nil
}

// Logout revokes the token that authenticated ctx for the rest of its
// lifetime. A token that has already expired needs no entry.
func (s *Service) Logout(ctx context.Context) error {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	jti := requestcontext.TokenID(ctx)
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "token id missing")
	}

	ttl := requestcontext.TokenExpiry(ctx).Sub(requestcontext.Now(ctx))
	if ttl > 0 {
		if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
		}
	}

	s.metrics.IncrementLogout()
	s.emit(ctx, audit.Event{Action: audit.ActionLogout, UserID: userID})
	s.logger.InfoContext(ctx, "user logged out",
		"user_id", userID.String(),
		"jti", jti,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) loginFailed(ctx context.Context, userID domain.UserID, reason string) {
	s.metrics.IncrementLogin(reason)
	s.emit(ctx, audit.Event{Action: audit.ActionLoginFailed, UserID: userID, Reason: reason})
	s.logger.WarnContext(ctx, "login failed",
		"reason", reason,
		"client_ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func invalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}
