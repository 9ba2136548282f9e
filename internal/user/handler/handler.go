package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"credverify/internal/user/models"
	userService "credverify/internal/user/service"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
	"credverify/pkg/validation"
)

// Service defines the interface for profile operations.
type Service interface {
	Profile(ctx context.Context, subject id.SubjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, subject id.SubjectID, patch models.ProfilePatch) (*models.User, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/profile", h.HandleGetProfile)
	r.Put("/profile", h.HandleUpdateProfile)
}

// UpdateProfileRequest carries a partial profile; absent fields are left unchanged.
type UpdateProfileRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=200"`
	Email      *string `json:"email" validate:"omitempty,email,max=320"`
	Bio        *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL  *string `json:"avatarUrl" validate:"omitempty,url,max=2048"`
	IsEmployer *bool   `json:"isEmployer"`
}

func (r *UpdateProfileRequest) Normalize() {
	for _, f := range []*string{r.Name, r.Email, r.Bio, r.AvatarURL} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if r.Email != nil {
		*r.Email = strings.ToLower(*r.Email)
	}
}

func (r *UpdateProfileRequest) Validate() error {
	return validation.Validate(r)
}

func (r *UpdateProfileRequest) patch() models.ProfilePatch {
	return models.ProfilePatch{
		Name:       r.Name,
		Email:      r.Email,
		Bio:        r.Bio,
		AvatarURL:  r.AvatarURL,
		IsEmployer: r.IsEmployer,
	}
}

type ProfileResponse struct {
	WalletAddress string    `json:"walletAddress"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Bio           string    `json:"bio"`
	AvatarURL     string    `json:"avatarUrl"`
	IsEmployer    bool      `json:"isEmployer"`
	Credentials   []string  `json:"credentials"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
	UpdatedAt     time.Time `json:"updatedAt,omitzero"`
}

func toProfileResponse(u *models.User) ProfileResponse {
	creds := u.CredentialIDs
	if creds == nil {
		creds = []string{}
	}
	return ProfileResponse{
		WalletAddress: u.Subject.String(),
		Name:          u.Name,
		Email:         u.Email,
		Bio:           u.Bio,
		AvatarURL:     u.AvatarURL,
		IsEmployer:    u.IsEmployer,
		Credentials:   creds,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := h.service.Profile(ctx, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load profile",
			"request_id", requestcontext.RequestID(ctx),
			"subject", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(u))
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	subject, err := httputil.RequireSubject(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, err := h.service.UpdateProfile(ctx, subject, req.patch())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update profile",
			"request_id", requestID,
			"subject", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(u))
}

var _ Service = (*userService.Service)(nil)
