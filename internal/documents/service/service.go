package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bharatid/internal/audit"
	"bharatid/internal/documents/blob"
	"bharatid/internal/documents/metrics"
	"bharatid/internal/documents/models"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/platform/sentinel"
	"bharatid/pkg/platform/strings"
	"bharatid/pkg/requestcontext"
)

const defaultMaxUploadBytes = 10 << 20

// allowedExtensions is the accepted set for every uploaded artifact.
var allowedExtensions = map[string]bool{"png": true, "jpg": true, "jpeg": true, "pdf": true}

// AllowedExtension reports whether filename carries an accepted extension.
func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.Extension(filename)]
}

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

// Store is implemented by store.InMemoryStore and store.PostgresStore.
type Store interface {
	Init(ctx context.Context, userID domain.UserID, now time.Time) error
	Get(ctx context.Context, userID domain.UserID) (models.Set, error)
	GetRecord(ctx context.Context, userID domain.UserID, docType domain.DocType) (models.Record, error)
	// MarkUploaded sets uploaded, clears verified and records the blob key, but
	// only while the record is not verified.
	MarkUploaded(ctx context.Context, userID domain.UserID, docType domain.DocType, blobKey string, now time.Time) error
	// MarkVerified flips verified only where uploaded AND NOT verified holds.
	MarkVerified(ctx context.Context, userID domain.UserID, docType domain.DocType, now time.Time) error
	ListAll(ctx context.Context) (map[domain.UserID]models.Set, error)
}

// AuditPublisher is the audit dependency of the service.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// File is an uploaded artifact as received from the transport.
type File struct {
	Filename string
	Data     []byte
}

// Artifact is a decrypted document ready to be served.
type Artifact struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Service runs the verification workflow: not_submitted -> pending -> verified.
// Verified is terminal.
type Service struct {
	store          Store
	blobs          blob.Store
	auditor        AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
	maxUploadBytes int64
}

type Option func(*Service)

func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

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

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func New(st Store, blobs blob.Store, auditor AuditPublisher, opts ...Option) *Service {
	s := &Service{
		store:          st,
		blobs:          blobs,
		auditor:        auditor,
		logger:         slog.Default(),
		tracer:         otel.Tracer("bharatid/documents"),
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxUploadBytes is the configured artifact size limit.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// InitUser creates every record not_submitted for a new user. Runs inside the
// caller's transaction when ctx carries one.
func (s *Service) InitUser(ctx context.Context, userID domain.UserID) error {
	if err := s.store.Init(ctx, userID, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "documents already initialized")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize documents")
	}
	return nil
}

// ValidateFile checks the artifact before anything is stored.
func (s *Service) ValidateFile(file File) error {
	if len(file.Data) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "File required")
	}
	if !AllowedExtension(file.Filename) {
		return dErrors.New(dErrors.CodeValidation, "file type not allowed; use png, jpg, jpeg or pdf")
	}
	if int64(len(file.Data)) > s.maxUploadBytes {
		return dErrors.New(dErrors.CodeValidation, "file too large")
	}
	return nil
}

// Upload stores the artifact encrypted and moves the record to pending.
// Allowed from not_submitted and pending; a verified record is a conflict.
func (s *Service) Upload(ctx context.Context, userID domain.UserID, docType domain.DocType, file File) (models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "documents.Upload", trace.WithAttributes(
		attribute.String("doc_type", docType.String()),
	))
	defer span.End()

	rec, err := s.upload(ctx, userID, docType, file)
	s.metrics.IncrementTransition("upload", docType.String(), outcome(err))
	if err != nil {
		recordSpanError(span, err)
		return models.Record{}, err
	}
	s.metrics.ObserveUploadBytes(len(file.Data))
	return rec, nil
}

func (s *Service) upload(ctx context.Context, userID domain.UserID, docType domain.DocType, file File) (models.Record, error) {
	if !docType.IsValid() {
		return models.Record{}, dErrors.New(dErrors.CodeInvalidDocumentType, "Invalid document type")
	}
	if err := s.ValidateFile(file); err != nil {
		return models.Record{}, err
	}

	current, err := s.store.GetRecord(ctx, userID, docType)
	if err != nil {
		return models.Record{}, translateLookup(err)
	}
	now := requestcontext.Now(ctx)
	key := blob.NewKey(userID, docType)
	// Checked before the artifact is written so a verified document never gets
	// an orphan blob.
	next, err := current.Upload(key, now)
	if err != nil {
		return models.Record{}, err
	}

	if err := s.blobs.Put(ctx, key, file.Data); err != nil {
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}
	if err := s.store.MarkUploaded(ctx, userID, docType, key, now); err != nil {
		s.discardBlob(ctx, key)
		if errors.Is(err, sentinel.ErrInvalidState) {
			return models.Record{}, dErrors.New(dErrors.CodeConflict, "document already verified")
		}
		return models.Record{}, translateLookup(err)
	}
	if prev := current.BlobKey(); prev != "" && prev != key {
		s.discardBlob(ctx, prev)
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionDocumentUploaded,
		UserID:  userID,
		DocType: docType,
	})
	s.logger.InfoContext(ctx, "document uploaded",
		"user_id", userID.String(),
		"doc_type", docType.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return next, nil
}

// Verify flips one pending record of targetUserID to verified. The actor must
// hold the verify capability; the store applies the update only where
// uploaded AND NOT verified holds.
func (s *Service) Verify(ctx context.Context, actorID domain.UserID, actorRole domain.Role, docType domain.DocType, targetUserID domain.UserID) error {
	ctx, span := s.tracer.Start(ctx, "documents.Verify", trace.WithAttributes(
		attribute.String("doc_type", docType.String()),
	))
	defer span.End()

	err := s.verify(ctx, actorID, actorRole, docType, targetUserID)
	s.metrics.IncrementTransition("verify", docType.String(), outcome(err))
	if err != nil {
		recordSpanError(span, err)
	}
	return err
}

func (s *Service) verify(ctx context.Context, actorID domain.UserID, actorRole domain.Role, docType domain.DocType, targetUserID domain.UserID) error {
	if !actorRole.Can(domain.CapVerifyDocument) {
		return dErrors.New(dErrors.CodeForbidden, "Admin access required")
	}
	if !docType.IsValid() {
		return dErrors.New(dErrors.CodeInvalidDocumentType, "Invalid document type")
	}
	if targetUserID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "User ID required")
	}

	err := s.store.MarkVerified(ctx, targetUserID, docType, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) || errors.Is(err, sentinel.ErrNotFound) {
			s.emit(ctx, audit.Event{
				Action:   audit.ActionVerifyRejected,
				UserID:   targetUserID,
				ActorID:  actorID,
				DocType:  docType,
				Decision: "rejected",
				Reason:   err.Error(),
			})
			return dErrors.New(dErrors.CodeVerificationFailed, "Verification failed")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify document")
	}

	s.emit(ctx, audit.Event{
		Action:   audit.ActionDocumentVerified,
		UserID:   targetUserID,
		ActorID:  actorID,
		DocType:  docType,
		Decision: "verified",
	})
	s.logger.InfoContext(ctx, "document verified",
		"user_id", targetUserID.String(),
		"actor_id", actorID.String(),
		"doc_type", docType.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// View returns the decrypted artifact of targetUserID. A nil target means the
// actor's own document; another user's document needs the view-any capability.
func (s *Service) View(ctx context.Context, actorID domain.UserID, actorRole domain.Role, docType domain.DocType, targetUserID domain.UserID) (*Artifact, error) {
	ctx, span := s.tracer.Start(ctx, "documents.View", trace.WithAttributes(
		attribute.String("doc_type", docType.String()),
	))
	defer span.End()

	art, err := s.view(ctx, actorID, actorRole, docType, targetUserID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return art, nil
}

func (s *Service) view(ctx context.Context, actorID domain.UserID, actorRole domain.Role, docType domain.DocType, targetUserID domain.UserID) (*Artifact, error) {
	if !docType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidDocumentType, "Invalid document type")
	}
	viewer := "owner"
	if targetUserID.IsNil() || targetUserID == actorID {
		targetUserID = actorID
		if !actorRole.Can(domain.CapViewOwnDocuments) {
			return nil, dErrors.New(dErrors.CodeForbidden, "access denied")
		}
	} else {
		if !actorRole.Can(domain.CapViewAnyDocument) {
			return nil, dErrors.New(dErrors.CodeForbidden, "Admin access required")
		}
		viewer = "admin"
	}

	rec, err := s.store.GetRecord(ctx, targetUserID, docType)
	if err != nil {
		return nil, translateLookup(err)
	}
	if !rec.Uploaded || rec.BlobKey() == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "Document not uploaded")
	}

	data, err := s.blobs.Get(ctx, rec.BlobKey())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "File not found on server")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read document")
	}

	s.metrics.IncrementView(docType.String(), viewer)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionDocumentViewed,
		UserID:  targetUserID,
		ActorID: actorID,
		DocType: docType,
	})
	return &Artifact{
		Data:        data,
		ContentType: http.DetectContentType(data),
		Filename:    docType.String() + extensionFor(data),
	}, nil
}

// Status returns the full document set of userID.
func (s *Service) Status(ctx context.Context, userID domain.UserID) (models.Set, error) {
	set, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, translateLookup(err)
	}
	if bad := set.Violations(); len(bad) > 0 {
		s.logger.WarnContext(ctx, "document records violate verified-implies-uploaded",
			"user_id", userID.String(),
			"doc_types", bad,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return set, nil
}

// All returns every user's document set, keyed by user.
func (s *Service) All(ctx context.Context) (map[domain.UserID]models.Set, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return all, nil
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

// discardBlob removes an artifact no record points at. Failure leaves an orphan
// and is only logged.
func (s *Service) discardBlob(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete blob", "error", err, "request_id", requestcontext.RequestID(ctx))
	}
}

func translateLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load documents")
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(dErrors.CodeOf(err))
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
}

func extensionFor(data []byte) string {
	switch http.DetectContentType(data) {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ""
	}
}
