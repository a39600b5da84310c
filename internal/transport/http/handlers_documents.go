package httptransport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	docModel "bharatid/internal/documents/models"
	docservice "bharatid/internal/documents/service"
	"bharatid/pkg/domain"
	dErrors "bharatid/pkg/domain-errors"
	"bharatid/pkg/platform/httputil"
	"bharatid/pkg/requestcontext"
)

//go:generate mockgen -source=handlers_documents.go -destination=mocks/documents-mocks.go -package=mocks DocumentService

type DocumentService interface {
	Status(ctx context.Context, userID domain.UserID) (docModel.Set, error)
	Upload(ctx context.Context, userID domain.UserID, docType domain.DocType, file docservice.File) (docModel.Record, error)
	View(ctx context.Context, actorID domain.UserID, actorRole domain.Role, docType domain.DocType, targetUserID domain.UserID) (*docservice.Artifact, error)
	Verify(ctx context.Context, actorID domain.UserID, actorRole domain.Role, docType domain.DocType, targetUserID domain.UserID) error
	MaxUploadBytes() int64
}

type DocumentHandler struct {
	docs   DocumentService
	logger *slog.Logger
}

func NewDocumentHandler(docs DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, logger: logger}
}

func (h *DocumentHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	set, err := h.docs.Status(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.fail(ctx, w, "failed to load document status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, docModel.StatusResponse{
		BiometricStatus: docModel.BiometricSecured,
		Documents:       set,
	})
}

// handleUpload takes the artifact from the multipart field "file".
func (h *DocumentHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docType, err := domain.ParseDocType(chi.URLParam(r, "docType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := parseMultipart(w, r, h.docs.MaxUploadBytes()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	file, err := formFile(r, "file", "File required")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if _, err := h.docs.Upload(ctx, requestcontext.UserID(ctx), docType, file); err != nil {
		h.fail(ctx, w, "upload rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{
		Message: capitalize(docType.String()) + " uploaded successfully",
		Status:  "pending_verification",
	})
}

// handleView serves the caller's own artifact, or with ?user_id= another
// user's artifact to callers allowed to view any document.
func (h *DocumentHandler) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docType, err := domain.ParseDocType(chi.URLParam(r, "docType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var target domain.UserID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		target, err = domain.ParseUserID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user_id"))
			return
		}
	}

	art, err := h.docs.View(ctx, requestcontext.UserID(ctx), requestcontext.Role(ctx), docType, target)
	if err != nil {
		h.fail(ctx, w, "view rejected", err)
		return
	}
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", art.Filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

func (h *DocumentHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	docType, err := domain.ParseDocType(chi.URLParam(r, "docType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	target, err := domain.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid user_id"))
		return
	}

	if err := h.docs.Verify(ctx, requestcontext.UserID(ctx), requestcontext.Role(ctx), docType, target); err != nil {
		h.fail(ctx, w, "verification rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{
		Message: docType.String() + " verified successfully",
	})
}

func (h *DocumentHandler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
