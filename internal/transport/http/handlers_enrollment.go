package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	docservice "bharatid/internal/documents/service"
	enrollModel "bharatid/internal/enrollment/models"
	enrollservice "bharatid/internal/enrollment/service"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/platform/httputil"
	"bharatid/pkg/platform/strings"
	"bharatid/pkg/requestcontext"
)

//go:generate mockgen -source=handlers_enrollment.go -destination=mocks/enrollment-mocks.go -package=mocks EnrollmentService

type EnrollmentService interface {
	Enroll(ctx context.Context, req enrollModel.EnrollRequest, idFile docservice.File) (*enrollModel.EnrollResult, error)
	ListUsers(ctx context.Context, actorRole domain.Role) ([]enrollservice.UserSummary, error)
}

type EnrollmentHandler struct {
	enrollment     EnrollmentService
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewEnrollmentHandler(enrollment EnrollmentService, maxUploadBytes int64, logger *slog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{enrollment: enrollment, maxUploadBytes: maxUploadBytes, logger: logger}
}

// handleEnroll accepts multipart fields fullName, email, phone, aadhaar,
// password and the identity document as idFile.
func (h *EnrollmentHandler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
		h.logger.WarnContext(ctx, "invalid enrollment form", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	req := enrollModel.EnrollRequest{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Aadhaar:  r.FormValue("aadhaar"),
		Password: r.FormValue("password"),
	}
	file, err := formFile(r, "idFile", "Biometric document required")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.enrollment.Enroll(ctx, req, file)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "enrollment failed", "error", err, "request_id", requestID)
		} else {
			h.logger.WarnContext(ctx, "enrollment rejected", "error", err, "request_id", requestID)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.MessageResponse{
		Message: "Enrollment successful",
		Status:  res.Status,
	})
}

func (h *EnrollmentHandler) handleAllUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.enrollment.ListUsers(ctx, requestcontext.Role(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

// multipartOverhead leaves room for the text fields around the file part.
const multipartOverhead = 1 << 20

func parseMultipart(w http.ResponseWriter, r *http.Request, maxFileBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxFileBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return dErrors.New(dErrors.CodeValidation, "file too large")
		}
		return dErrors.New(dErrors.CodeBadRequest, "invalid multipart form")
	}
	return nil
}

// formFile reads the named file part. A missing part is a bad request with
// the given message.
func formFile(r *http.Request, field, missing string) (docservice.File, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return docservice.File{}, dErrors.New(dErrors.CodeBadRequest, missing)
		}
		return docservice.File{}, dErrors.New(dErrors.CodeBadRequest, "invalid file part")
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return docservice.File{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read file")
	}
	return docservice.File{Filename: strings.SafeFilename(header.Filename), Data: data}, nil
}
