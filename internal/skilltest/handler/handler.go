package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"credverify/internal/skilltest/models"
	skilltestService "credverify/internal/skilltest/service"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
	"credverify/pkg/validation"
)

// Service defines the interface for skill-test operations.
type Service interface {
	StartTest(ctx context.Context, subject id.SubjectID, skill string) (*models.TestView, error)
	SubmitTest(ctx context.Context, testID id.TestID, subject id.SubjectID, answers []int) (*skilltestService.SubmitResult, error)
	ListTests(ctx context.Context, subject id.SubjectID) ([]*models.TestView, error)
	GetTest(ctx context.Context, testID id.TestID, subject id.SubjectID) (*models.TestView, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the read and submit routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tests/{id}/submit", h.HandleSubmit)
	r.Get("/tests", h.HandleList)
	r.Get("/tests/{id}", h.HandleGet)
}

// RegisterStart mounts test creation, which calls the question generator
// and sits behind the stricter rate class.
func (h *Handler) RegisterStart(r chi.Router) {
	r.Post("/tests", h.HandleStart)
}

type StartTestRequest struct {
	Skill string `json:"skill" validate:"notblank,max=100"`
}

func (r *StartTestRequest) Normalize() {
	r.Skill = strings.TrimSpace(r.Skill)
}

func (r *StartTestRequest) Validate() error {
	return validation.Validate(r)
}

type SubmitTestRequest struct {
	Answers []int `json:"answers" validate:"required,min=1,max=50,dive,min=0,max=3"`
}

func (r *SubmitTestRequest) Normalize() {}

func (r *SubmitTestRequest) Validate() error {
	return validation.Validate(r)
}

type SubmitTestResponse struct {
	Test        *models.TestView    `json:"test"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
}

type ListResponse struct {
	Tests []*models.TestView `json:"tests"`
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[StartTestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	test, err := h.service.StartTest(ctx, subject, req.Skill)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to start skill test",
			"request_id", requestID,
			"subject", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, test)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	testID, err := id.ParseTestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitTestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.SubmitTest(ctx, testID, subject, req.Answers)
	if err != nil {
		h.logger.WarnContext(ctx, "skill test submission rejected",
			"request_id", requestID,
			"subject", subject,
			"test_id", testID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SubmitTestResponse{Test: res.Test, Certificate: res.Certificate})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tests, err := h.service.ListTests(ctx, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if tests == nil {
		tests = []*models.TestView{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Tests: tests})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	testID, err := id.ParseTestID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	test, err := h.service.GetTest(ctx, testID, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, test)
}

var _ Service = (*skilltestService.Engine)(nil)
