package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"credverify/internal/resume/models"
	verificationService "credverify/internal/verification/service"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
)

// Service defines the interface for verification operations.
type Service interface {
	RunVerification(ctx context.Context, resumeID id.ResumeID, subject id.SubjectID) (*models.Verification, error)
	LatestVerification(ctx context.Context, resumeID id.ResumeID, subject id.SubjectID) (*models.Verification, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the read endpoint. The run endpoint is mounted separately
// so it can carry its own rate limit.
func (h *Handler) Register(r chi.Router) {
	r.Get("/resumes/{id}/verification", h.HandleLatest)
}

func (h *Handler) RegisterRun(r chi.Router) {
	r.Post("/resumes/{id}/verify", h.HandleRun)
}

// VerificationResponse is a verification plus the status it implies.
type VerificationResponse struct {
	*models.Verification
	VerificationStatus models.Status `json:"verificationStatus"`
	Passed             bool          `json:"passed"`
}

func toResponse(v *models.Verification) VerificationResponse {
	status := models.StatusForScore(v.Score)
	return VerificationResponse{
		Verification:       v,
		VerificationStatus: status,
		Passed:             status == models.StatusVerified,
	}
}

func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resumeID, err := id.ParseResumeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	v, err := h.service.RunVerification(ctx, resumeID, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestID,
			"subject", subject,
			"resume_id", resumeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(v))
}

func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resumeID, err := id.ParseResumeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	v, err := h.service.LatestVerification(ctx, resumeID, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(v))
}

var _ Service = (*verificationService.Pipeline)(nil)
