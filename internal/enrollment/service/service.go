// Package service registers citizens and bootstraps the administrator account.
package service

import (
	"context"
	"errors"
	"log/slog"

	"bharatid/internal/audit"
	docmodels "bharatid/internal/documents/models"
	docservice "bharatid/internal/documents/service"
	"bharatid/internal/enrollment/models"
	"bharatid/internal/enrollment/secrets"
	"bharatid/internal/platform/config"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/email"
	"bharatid/pkg/platform/sentinel"
	"bharatid/pkg/platform/tx"
	"bharatid/pkg/requestcontext"
)

// UserStore is implemented by store.InMemoryUserStore and store.PostgresUserStore.
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, address string) (*models.User, error)
	FindByAadhaar(ctx context.Context, aadhaar string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// Documents is the slice of the document workflow enrollment drives.
type Documents interface {
	InitUser(ctx context.Context, userID domain.UserID) error
	ValidateFile(file docservice.File) error
	Upload(ctx context.Context, userID domain.UserID, docType domain.DocType, file docservice.File) (docmodels.Record, error)
	All(ctx context.Context) (map[domain.UserID]docmodels.Set, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// UserSummary is one row of the administrator's user listing.
type UserSummary struct {
	models.UserView
	Documents docmodels.Set `json:"documents"`
}

type Service struct {
	users   UserStore
	docs    Documents
	tx      tx.Runner
	auditor AuditPublisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		if runner != nil {
			s.tx = runner
		}
	}
}

func New(users UserStore, docs Documents, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		users:   users,
		docs:    docs,
		tx:      tx.NewLocalRunner(),
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enroll creates a user with every document not_submitted, then applies the
// identity file as the aadhaar upload, leaving it pending.
func (s *Service) Enroll(ctx context.Context, req models.EnrollRequest, idFile docservice.File) (*models.EnrollResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.docs.ValidateFile(idFile); err != nil {
		return nil, err
	}

	hash, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           domain.NewUserID(),
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Aadhaar:      req.Aadhaar,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    requestcontext.Now(ctx),
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.Save(ctx, user); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "User already enrolled")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
		}
		if err := s.docs.InitUser(ctx, user.ID); err != nil {
			return err
		}
		_, err := s.docs.Upload(ctx, user.ID, domain.DocTypeAadhaar, idFile)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{Action: audit.ActionUserEnrolled, UserID: user.ID})
	s.logger.InfoContext(ctx, "user enrolled",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.EnrollResult{UserID: user.ID, Status: models.StatusPendingVerification}, nil
}

// SeedAdmin creates the configured administrator unless the email is already
// registered. An empty seed email disables seeding.
func (s *Service) SeedAdmin(ctx context.Context, seed config.AdminSeed) error {
	address := email.Normalize(seed.Email)
	if address == "" {
		return nil
	}
	if _, err := s.users.FindByEmail(ctx, address); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up admin")
	}
	if !models.IsAadhaar(seed.Aadhaar) {
		return dErrors.New(dErrors.CodeValidation, "admin aadhaar must be 12 digits")
	}

	hash, err := secrets.Hash(seed.Password)
	if err != nil {
		return err
	}
	name := seed.FullName
	if name == "" {
		name = "Administrator"
	}
	admin := &models.User{
		ID:           domain.NewUserID(),
		FullName:     name,
		Email:        address,
		Phone:        "0000000000",
		Aadhaar:      seed.Aadhaar,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    requestcontext.Now(ctx),
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.Save(ctx, admin); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "admin aadhaar already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save admin")
		}
		return s.docs.InitUser(ctx, admin.ID)
	})
	if err != nil {
		return err
	}

	s.emit(ctx, audit.Event{Action: audit.ActionAdminSeeded, UserID: admin.ID})
	s.logger.InfoContext(ctx, "admin account seeded", "user_id", admin.ID.String())
	return nil
}

// FindByID returns the user with id.
func (s *Service) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err)
	}
	return user, nil
}

// FindByIdentifier looks a user up by email when the identifier looks like
// one, otherwise by aadhaar number.
func (s *Service) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if email.LooksLikeEmail(identifier) {
		user, err = s.users.FindByEmail(ctx, email.Normalize(identifier))
	} else {
		user, err = s.users.FindByAadhaar(ctx, identifier)
	}
	if err != nil {
		return nil, translateLookup(err)
	}
	return user, nil
}

// ListUsers returns every user with their document set, oldest first.
func (s *Service) ListUsers(ctx context.Context, actorRole domain.Role) ([]UserSummary, error) {
	if !actorRole.Can(domain.CapListUsers) {
		return nil, dErrors.New(dErrors.CodeForbidden, "Admin access required")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	sets, err := s.docs.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		set, ok := sets[u.ID]
		if !ok {
			set = docmodels.NewSet()
		}
		out = append(out, UserSummary{UserView: u.View(), Documents: set})
	}
	s.emit(ctx, audit.Event{Action: audit.ActionUsersListed, ActorID: requestcontext.UserID(ctx)})
	return out, nil
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

func translateLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
}
