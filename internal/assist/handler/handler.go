package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	assistService "credverify/internal/assist/service"
	"credverify/internal/oracle"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
	"credverify/pkg/validation"
)

// Service defines the interface for AI assist operations.
type Service interface {
	MatchSkills(ctx context.Context, subject id.SubjectID, jobDescription string) (*oracle.SkillMatch, error)
	CareerAdvice(ctx context.Context, subject id.SubjectID) (string, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/assist/skill-match", h.HandleSkillMatch)
	r.Post("/assist/career-advice", h.HandleCareerAdvice)
}

type SkillMatchRequest struct {
	JobDescription string `json:"jobDescription" validate:"notblank,max=5000"`
}

func (r *SkillMatchRequest) Normalize() {
	r.JobDescription = strings.TrimSpace(r.JobDescription)
}

func (r *SkillMatchRequest) Validate() error {
	return validation.Validate(r)
}

type CareerAdviceResponse struct {
	Advice string `json:"advice"`
}

func (h *Handler) HandleSkillMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[SkillMatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	match, err := h.service.MatchSkills(ctx, subject, req.JobDescription)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (h *Handler) HandleCareerAdvice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	advice, err := h.service.CareerAdvice(ctx, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CareerAdviceResponse{Advice: advice})
}

var _ Service = (*assistService.Assistant)(nil)
