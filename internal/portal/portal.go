// Package portal is the application layer of the citizen portal. It routes
// every protected action through the session guard, calls the API gateway
// and keeps the credential consistent with the server's answers.
//
// A call whose context is done by the time the response arrives returns the
// context error and applies no side effect.
package portal

import (
	"context"
	"log/slog"

	"bharatid/internal/documents/models"
	"bharatid/internal/portal/client"
	"bharatid/internal/portal/session"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
)

//go:generate mockgen -source=portal.go -destination=mocks/mocks.go -package=mocks Gateway

// Gateway is the subset of the API the portal calls.
type Gateway interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	Enroll(ctx context.Context, form client.EnrollForm, idFile client.File) error
	FetchStatus(ctx context.Context, token string) (*client.Status, error)
	UploadDocument(ctx context.Context, token string, docType domain.DocType, file client.File) error
	ViewDocument(ctx context.Context, token string, docType domain.DocType, owner domain.UserID) (*client.Document, error)
	VerifyDocument(ctx context.Context, token string, docType domain.DocType, target domain.UserID) error
	Logout(ctx context.Context, token string) error
	ListUsers(ctx context.Context, token string) ([]client.User, error)
}

type Portal struct {
	gateway Gateway
	session *session.Session
	guard   *session.Guard
	logger  *slog.Logger
}

type Option func(*Portal)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Portal) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func New(gateway Gateway, sess *session.Session, opts ...Option) *Portal {
	p := &Portal{
		gateway: gateway,
		session: sess,
		guard:   session.NewGuard(sess),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Portal) Session() *session.Session {
	return p.session
}

func (p *Portal) Guard() *session.Guard {
	return p.guard
}

// Dashboard is the status view: the document set with its aggregate.
type Dashboard struct {
	BiometricStatus string
	Documents       models.Set
	Summary         models.Summary
	// Violations lists types the server reported as verified but not
	// uploaded.
	Violations []domain.DocType
}

func newDashboard(status *client.Status) *Dashboard {
	docs := status.Documents
	if docs == nil {
		docs = models.NewSet()
	}
	return &Dashboard{
		BiometricStatus: status.BiometricStatus,
		Documents:       docs,
		Summary:         models.Aggregate(docs),
		Violations:      docs.Violations(),
	}
}

// Login stores the returned credential and reports where to land.
func (p *Portal) Login(ctx context.Context, identifier, password string) (string, error) {
	tok, err := p.gateway.Login(ctx, identifier, password)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		return "", err
	}
	if err := p.session.Set(tok); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store credential")
	}
	state := p.session.State()
	if !state.Authenticated {
		_ = p.session.Clear()
		return "", dErrors.New(dErrors.CodeUnauthorized, "server returned an unusable token")
	}
	return session.LandingPath(state.Role), nil
}

// Logout clears the credential whatever the server answers.
func (p *Portal) Logout(ctx context.Context) error {
	tok := p.session.Token()
	if tok == "" {
		return nil
	}
	if err := p.gateway.Logout(ctx, tok); err != nil {
		p.logger.WarnContext(ctx, "server logout failed", "error", err)
	}
	return p.session.Clear()
}

// Enroll registers a new citizen. It needs no session.
func (p *Portal) Enroll(ctx context.Context, form client.EnrollForm, idFile client.File) error {
	err := p.gateway.Enroll(ctx, form, idFile)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Dashboard fetches the caller's documents. A rejected credential is
// cleared.
func (p *Portal) Dashboard(ctx context.Context) (*Dashboard, error) {
	tok, err := p.authorized(domain.RoleNone)
	if err != nil {
		return nil, err
	}
	status, err := p.gateway.FetchStatus(ctx, tok)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		p.onFailure(ctx, err)
		return nil, err
	}
	return newDashboard(status), nil
}

// Upload sends an artifact and returns the refetched dashboard. Local state
// is never patched; the server's set is authoritative.
func (p *Portal) Upload(ctx context.Context, docType string, file client.File) (*Dashboard, error) {
	dt, err := domain.ParseDocType(docType)
	if err != nil {
		return nil, err
	}
	tok, err := p.authorized(domain.RoleNone)
	if err != nil {
		return nil, err
	}
	if !session.HasCapability(p.session.State(), domain.CapUploadDocument) {
		return nil, dErrors.New(dErrors.CodeForbidden, "upload not permitted")
	}

	err = p.gateway.UploadDocument(ctx, tok, dt, file)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		p.onFailure(ctx, err)
		return nil, err
	}
	return p.Dashboard(ctx)
}

// Verify flips a pending document of target to verified and returns the
// target's refreshed set. Callers without the verify capability are refused
// before anything is sent.
func (p *Portal) Verify(ctx context.Context, docType string, target domain.UserID) (models.Set, error) {
	dt, err := domain.ParseDocType(docType)
	if err != nil {
		return nil, err
	}
	tok, err := p.authorized(domain.RoleNone)
	if err != nil {
		return nil, err
	}
	if !session.HasCapability(p.session.State(), domain.CapVerifyDocument) {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin access required")
	}
	if target.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "User ID required")
	}

	err = p.gateway.VerifyDocument(ctx, tok, dt, target)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		p.onFailure(ctx, err)
		return nil, err
	}

	users, err := p.gateway.ListUsers(ctx, tok)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		p.onFailure(ctx, err)
		return nil, err
	}
	for _, u := range users {
		if u.ID == target {
			return u.Documents, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
}

// View retrieves an artifact. A nil owner selects the caller's own
// document. Every failure is reported as a retrieval failure.
func (p *Portal) View(ctx context.Context, docType string, owner domain.UserID) (*client.Document, error) {
	doc, err := p.view(ctx, docType, owner)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRetrievalFailed, "failed to load document")
	}
	return doc, nil
}

func (p *Portal) view(ctx context.Context, docType string, owner domain.UserID) (*client.Document, error) {
	dt, err := domain.ParseDocType(docType)
	if err != nil {
		return nil, err
	}
	tok, err := p.authorized(domain.RoleNone)
	if err != nil {
		return nil, err
	}
	if !owner.IsNil() && !session.HasCapability(p.session.State(), domain.CapViewAnyDocument) {
		return nil, dErrors.New(dErrors.CodeForbidden, "Access denied")
	}
	doc, err := p.gateway.ViewDocument(ctx, tok, dt, owner)
	if err != nil && ctx.Err() == nil {
		p.onFailure(ctx, err)
	}
	return doc, err
}

// Users lists every enrolled user for administrators.
func (p *Portal) Users(ctx context.Context) ([]client.User, error) {
	tok, err := p.authorized(domain.RoleNone)
	if err != nil {
		return nil, err
	}
	if !session.HasCapability(p.session.State(), domain.CapListUsers) {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin access required")
	}
	users, err := p.gateway.ListUsers(ctx, tok)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		p.onFailure(ctx, err)
		return nil, err
	}
	return users, nil
}

// authorized returns the credential when the guard allows requiredRole.
func (p *Portal) authorized(requiredRole domain.Role) (string, error) {
	switch p.guard.Authorize(requiredRole) {
	case session.Allow:
		return p.session.Token(), nil
	case session.RedirectForbidden:
		return "", dErrors.New(dErrors.CodeForbidden, "admin access required")
	default:
		return "", dErrors.New(dErrors.CodeUnauthorized, "please log in")
	}
}

// onFailure drops a credential the server no longer accepts.
func (p *Portal) onFailure(ctx context.Context, err error) {
	if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		return
	}
	if clearErr := p.session.Clear(); clearErr != nil {
		p.logger.WarnContext(ctx, "failed to clear rejected credential", "error", clearErr)
	}
}
