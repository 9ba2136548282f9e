// Package handler exposes the in-process ledger simulation over HTTP so a
// development client can mint and revoke tokens without a chain.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"credverify/internal/ledger"
	"credverify/internal/sentinel"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
	"credverify/pkg/validation"
)

// Handler serves the dev ledger endpoints.
type Handler struct {
	ledger ledger.Ledger
	logger *slog.Logger
}

func New(l ledger.Ledger, logger *slog.Logger) *Handler {
	return &Handler{ledger: l, logger: logger}
}

// RegisterPublic mounts read endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/ledger/{tokenId}", h.HandleGet)
}

// Register mounts the endpoints that act on behalf of the caller's wallet.
func (h *Handler) Register(r chi.Router) {
	r.Post("/ledger/mint", h.HandleMint)
	r.Post("/ledger/{tokenId}/revoke", h.HandleRevoke)
}

// MintRequest mints a token owned by the caller.
type MintRequest struct {
	MetadataHash string   `json:"metadataHash" validate:"notblank,max=128"`
	Score        int      `json:"score" validate:"min=0,max=100"`
	SkillTags    []string `json:"skillTags" validate:"max=50,dive,max=100"`
}

func (r *MintRequest) Normalize() {
	r.MetadataHash = strings.TrimSpace(r.MetadataHash)
}

func (r *MintRequest) Validate() error {
	return validation.Validate(r)
}

type MintResponse struct {
	TokenID string `json:"tokenId"`
}

func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[MintRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tokenID, err := h.ledger.Mint(ctx, ledger.MintRequest{
		Owner:        subject,
		MetadataHash: req.MetadataHash,
		Score:        req.Score,
		SkillTags:    req.SkillTags,
	})
	if err != nil {
		h.writeLedgerError(ctx, w, "failed to mint token", err)
		return
	}

	h.logger.InfoContext(ctx, "dev ledger token minted",
		"request_id", requestID,
		"subject", subject,
		"token_id", tokenID,
	)
	httputil.WriteJSON(w, http.StatusCreated, MintResponse{TokenID: tokenID})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := h.ledger.Get(ctx, chi.URLParam(r, "tokenId"))
	if err != nil {
		h.writeLedgerError(ctx, w, "failed to read token", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tokenID := chi.URLParam(r, "tokenId")

	rec, err := h.ledger.Get(ctx, tokenID)
	if err != nil {
		h.writeLedgerError(ctx, w, "failed to read token", err)
		return
	}
	if !rec.Owner.Owns(subject) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "token belongs to another wallet"))
		return
	}
	if err := h.ledger.Revoke(ctx, tokenID); err != nil {
		h.writeLedgerError(ctx, w, "failed to revoke token", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeLedgerError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "token not found"))
	case errors.Is(err, sentinel.ErrInvalidInput):
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "ledger unavailable"))
	}
}
