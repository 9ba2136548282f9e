package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	credentialService "credverify/internal/credential/service"
	"credverify/internal/resume/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
	"credverify/pkg/validation"
)

// Service defines the interface for credential operations.
type Service interface {
	BindCredential(ctx context.Context, req credentialService.BindRequest) (*credentialService.BindResult, error)
	ListCredentials(ctx context.Context, subject id.SubjectID) ([]*models.Resume, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/resumes/{id}/credential", h.HandleBind)
	r.Get("/credentials", h.HandleList)
}

// BindRequest is the body of POST /resumes/{id}/credential.
type BindRequest struct {
	TokenID string `json:"tokenId" validate:"notblank,max=78"`
	TxHash  string `json:"txHash" validate:"max=128"`
}

func (r *BindRequest) Normalize() {
	r.TokenID = strings.TrimSpace(r.TokenID)
	r.TxHash = strings.TrimSpace(r.TxHash)
}

func (r *BindRequest) Validate() error {
	return validation.Validate(r)
}

type BindResponse struct {
	ResumeID       string `json:"resumeId"`
	VerificationID string `json:"verificationId"`
	TokenID        string `json:"tokenId"`
	Unchanged      bool   `json:"unchanged"`
}

// CredentialResponse summarizes one bound resume.
type CredentialResponse struct {
	TokenID            string        `json:"tokenId"`
	ResumeID           string        `json:"resumeId"`
	Name               string        `json:"name"`
	VerificationStatus models.Status `json:"verificationStatus"`
	VerificationScore  *int          `json:"verificationScore,omitempty"`
	IPFSHash           string        `json:"ipfsHash"`
}

type ListResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
}

func (h *Handler) HandleBind(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[BindRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.BindCredential(ctx, credentialService.BindRequest{
		ResumeID: resumeID,
		Subject:  subject,
		TokenID:  req.TokenID,
		TxRef:    req.TxHash,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "credential bind rejected",
			"request_id", requestID,
			"subject", subject,
			"resume_id", resumeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BindResponse{
		ResumeID:       res.ResumeID.String(),
		VerificationID: res.VerificationID.String(),
		TokenID:        res.TokenID,
		Unchanged:      res.Unchanged,
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resumes, err := h.service.ListCredentials(ctx, subject)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]CredentialResponse, 0, len(resumes))
	for _, res := range resumes {
		out = append(out, CredentialResponse{
			TokenID:            res.CredentialID,
			ResumeID:           res.ID.String(),
			Name:               res.Name,
			VerificationStatus: res.VerificationStatus,
			VerificationScore:  res.VerificationScore,
			IPFSHash:           res.IPFSHash,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Credentials: out})
}

var _ Service = (*credentialService.Binder)(nil)
