package service

import (
	"context"
	"errors"
	"log/slog"

	"credverify/internal/audit"
	"credverify/internal/resume/models"
	"credverify/internal/resume/store"
	"credverify/internal/sentinel"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/strings"
	"credverify/pkg/requestcontext"
)

// UserEnsurer creates the wallet's user record on first submission.
type UserEnsurer interface {
	Ensure(ctx context.Context, subject id.SubjectID) error
}

type Option func(*Service)

// Service accepts resume submissions and serves them back to their owner.
type Service struct {
	store   store.Store
	users   UserEnsurer
	auditor *audit.Publisher
	logger  *slog.Logger
}

func New(st store.Store, users UserEnsurer, opts ...Option) *Service {
	svc := &Service{store: st, users: users, logger: slog.Default()}
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

// SubmitInput is a resume as entered by its owner.
type SubmitInput struct {
	Name     string
	Email    string
	Phone    string
	Location string
	Summary  string
	models.Details
}

// Submit stores a new pending resume for subject.
func (s *Service) Submit(ctx context.Context, subject id.SubjectID, in SubmitInput) (*models.Resume, error) {
	if subject.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing wallet context")
	}
	now := requestcontext.Now(ctx)

	details := in.Details
	details.Skills = strings.DedupeFold(details.Skills)
	for i := range details.Projects {
		details.Projects[i].Technologies = strings.DedupeFold(details.Projects[i].Technologies)
	}

	r := &models.Resume{
		ID:                 id.NewResumeID(),
		Subject:            subject,
		Name:               in.Name,
		Email:              in.Email,
		Phone:              in.Phone,
		Location:           in.Location,
		Summary:            in.Summary,
		Details:            details,
		VerificationStatus: models.StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if s.users != nil {
		if err := s.users.Ensure(ctx, subject); err != nil {
			return nil, err
		}
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to save resume")
	}

	s.logger.InfoContext(ctx, "resume submitted",
		"request_id", requestcontext.RequestID(ctx),
		"subject", subject,
		"resume_id", r.ID,
	)
	s.emit(ctx, audit.Event{
		Subject:    subject.String(),
		Action:     audit.EventResumeSubmitted.String(),
		ResourceID: r.ID.String(),
	})
	return r, nil
}

// List returns the subject's resumes, newest first.
func (s *Service) List(ctx context.Context, subject id.SubjectID) ([]*models.Resume, error) {
	out, err := s.store.ListBySubject(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to list resumes")
	}
	return out, nil
}

// Get returns a resume owned by subject.
func (s *Service) Get(ctx context.Context, resumeID id.ResumeID, subject id.SubjectID) (*models.Resume, error) {
	r, err := s.store.FindByID(ctx, resumeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "resume not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to load resume")
	}
	if !r.Subject.Owns(subject) {
		return nil, dErrors.New(dErrors.CodeForbidden, "resume belongs to another wallet")
	}
	return r, nil
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
