package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	certificateService "credverify/internal/certificate/service"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
)

// Service defines the interface for certificate lookups.
type Service interface {
	ResolveCertificate(ctx context.Context, code string) (*certificateService.Resolution, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the public lookup route. It needs no authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/certificates/{code}", h.HandleResolve)
}

type CertificateResponse struct {
	VerificationCode string    `json:"verificationCode"`
	WalletAddress    string    `json:"walletAddress"`
	Skill            string    `json:"skill"`
	Score            int       `json:"score"`
	IPFSHash         string    `json:"ipfsHash"`
	TokenID          string    `json:"tokenId,omitempty"`
	TxHash           string    `json:"txHash,omitempty"`
	IssuedAt         time.Time `json:"issuedAt"`
}

type TestSummary struct {
	ID             string     `json:"id"`
	TotalQuestions int        `json:"totalQuestions"`
	CorrectAnswers int        `json:"correctAnswers"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

type ResolveResponse struct {
	Valid       bool                `json:"valid"`
	Certificate CertificateResponse `json:"certificate"`
	Test        TestSummary         `json:"test"`
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	res, err := h.service.ResolveCertificate(ctx, code)
	if err != nil {
		h.logger.InfoContext(ctx, "certificate lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"code", certificateService.NormalizeCode(code),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	c := res.Certificate
	httputil.WriteJSON(w, http.StatusOK, ResolveResponse{
		Valid: true,
		Certificate: CertificateResponse{
			VerificationCode: c.VerificationCode,
			WalletAddress:    c.Subject.String(),
			Skill:            c.Skill,
			Score:            c.Score,
			IPFSHash:         c.IPFSHash,
			TokenID:          c.TokenID,
			TxHash:           c.TxRef,
			IssuedAt:         c.IssuedAt,
		},
		Test: TestSummary{
			ID:             c.TestID.String(),
			TotalQuestions: res.TotalQuestions,
			CorrectAnswers: res.CorrectAnswers,
			CompletedAt:    res.CompletedAt,
		},
	})
}

var _ Service = (*certificateService.Verifier)(nil)
