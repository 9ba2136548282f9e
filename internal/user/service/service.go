package service

import (
	"context"
	"errors"
	"log/slog"

	"credverify/internal/audit"
	"credverify/internal/sentinel"
	"credverify/internal/user/models"
	"credverify/internal/user/store"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

type Option func(*Service)

// Service manages wallet-keyed user profiles and their credential sets.
type Service struct {
	store   store.Store
	auditor *audit.Publisher
	logger  *slog.Logger
}

func New(st store.Store, opts ...Option) *Service {
	svc := &Service{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithAuditor(p *audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Profile returns the caller's user record, or an empty record for a wallet
// that has never written anything.
func (s *Service) Profile(ctx context.Context, subject id.SubjectID) (*models.User, error) {
	u, err := s.store.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &models.User{Subject: subject, CredentialIDs: []string{}}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, subject id.SubjectID, patch models.ProfilePatch) (*models.User, error) {
	u, err := s.store.UpdateProfile(ctx, subject, patch, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}
	s.emit(ctx, audit.Event{Subject: subject.String(), Action: audit.EventProfileUpdated.String()})
	return u, nil
}

// Ensure creates the user for subject if absent.
func (s *Service) Ensure(ctx context.Context, subject id.SubjectID) error {
	if err := s.store.Ensure(ctx, subject, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return nil
}

// AddCredential adds tokenID to the subject's credential set. Adding a token
// already in the set is a no-op.
func (s *Service) AddCredential(ctx context.Context, subject id.SubjectID, tokenID string) error {
	if err := s.store.AddCredential(ctx, subject, tokenID, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record user credential")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, ev audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", ev.Action,
			"error", err,
		)
	}
}

// CredentialRecorder is the narrow view other services use to maintain the
// user's credential set.
type CredentialRecorder interface {
	Ensure(ctx context.Context, subject id.SubjectID) error
	AddCredential(ctx context.Context, subject id.SubjectID, tokenID string) error
}

var _ CredentialRecorder = (*Service)(nil)
