package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"credverify/internal/resume/models"
	resumeService "credverify/internal/resume/service"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
)

// Service defines the interface for resume operations.
type Service interface {
	Submit(ctx context.Context, subject id.SubjectID, in resumeService.SubmitInput) (*models.Resume, error)
	List(ctx context.Context, subject id.SubjectID) ([]*models.Resume, error)
	Get(ctx context.Context, resumeID id.ResumeID, subject id.SubjectID) (*models.Resume, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/resumes", h.HandleSubmit)
	r.Get("/resumes", h.HandleList)
	r.Get("/resumes/{id}", h.HandleGet)
}

type ListResponse struct {
	Resumes []*models.Resume `json:"resumes"`
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitResumeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Submit(ctx, subject, req.toInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to submit resume",
			"request_id", requestID,
			"subject", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.List(ctx, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list resumes",
			"request_id", requestcontext.RequestID(ctx),
			"subject", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if out == nil {
		out = []*models.Resume{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Resumes: out})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
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
	res, err := h.service.Get(ctx, resumeID, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

var _ Service = (*resumeService.Service)(nil)
