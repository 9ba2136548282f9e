// Package service binds minted credential tokens to verified resumes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"credverify/internal/audit"
	"credverify/internal/ledger"
	"credverify/internal/platform/metrics"
	"credverify/internal/resume/models"
	"credverify/internal/resume/store"
	"credverify/internal/sentinel"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
	"credverify/pkg/validation"
)

// LedgerReader looks up minted tokens.
type LedgerReader interface {
	Get(ctx context.Context, tokenID string) (*ledger.Record, error)
}

// UserCredentials maintains the wallet's credential set.
type UserCredentials interface {
	AddCredential(ctx context.Context, subject id.SubjectID, tokenID string) error
}

type Option func(*Binder)

var errNoVerification = errors.New("resume has no verification")

// Binder records that a ledger token certifies a verified resume.
type Binder struct {
	store   store.Store
	users   UserCredentials
	ledger  LedgerReader
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewBinder(st store.Store, users UserCredentials, opts ...Option) *Binder {
	b := &Binder{store: st, users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithLedger checks each token against the ledger before binding it.
func WithLedger(r LedgerReader) Option {
	return func(b *Binder) { b.ledger = r }
}

func WithAuditor(a *audit.Publisher) Option {
	return func(b *Binder) { b.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Binder) { b.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type BindRequest struct {
	ResumeID id.ResumeID
	Subject  id.SubjectID
	TokenID  string
	TxRef    string
}

type BindResult struct {
	ResumeID       id.ResumeID
	VerificationID id.VerificationID
	TokenID        string
	// Unchanged is set when the resume was already bound to this token.
	Unchanged bool
}

// BindCredential binds req.TokenID to the resume and its latest verification.
// Retrying a successful bind with the same token is a no-op.
func (b *Binder) BindCredential(ctx context.Context, req BindRequest) (*BindResult, error) {
	requestID := requestcontext.RequestID(ctx)
	tokenID := strings.TrimSpace(req.TokenID)
	if tokenID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "token id is required")
	}
	if err := validation.CheckStringLength("token id", tokenID, validation.MaxTokenIDLength); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "token id is too long")
	}

	r, err := b.store.FindByID(ctx, req.ResumeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "resume not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to load resume")
	}
	if !r.Subject.Owns(req.Subject) {
		return nil, dErrors.New(dErrors.CodeForbidden, "resume belongs to another wallet")
	}
	if r.VerificationStatus != models.StatusVerified {
		b.metrics.IncCredentialBound("not_verified")
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "resume must be verified before a credential can be bound")
	}
	if r.CredentialID != "" && r.CredentialID != tokenID {
		b.metrics.IncCredentialBound("already_bound")
		return nil, dErrors.New(dErrors.CodeAlreadyBound, "resume is already bound to another credential")
	}

	if err := b.checkLedger(ctx, tokenID, r.Subject); err != nil {
		return nil, err
	}

	unchanged := r.CredentialID == tokenID
	var v *models.Verification
	err = b.store.RunInTx(ctx, r.ID.String(), func(tx store.Store) error {
		// Latest is read under the resume key, serialized with verification runs.
		latest, err := tx.LatestVerification(ctx, r.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return errNoVerification
			}
			return err
		}
		v = latest
		if err := tx.SetCredential(ctx, r.ID, tokenID, requestcontext.Now(ctx)); err != nil {
			return err
		}
		return tx.SetVerificationToken(ctx, v.ID, tokenID, strings.TrimSpace(req.TxRef))
	})
	if err != nil {
		switch {
		case errors.Is(err, errNoVerification):
			return nil, dErrors.New(dErrors.CodePreconditionFailed, "resume has no verification to bind")
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			b.metrics.IncCredentialBound("already_bound")
			return nil, dErrors.New(dErrors.CodeAlreadyBound, "resume is already bound to another credential")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "resume not found")
		}
		b.logger.ErrorContext(ctx, "failed to bind credential",
			"request_id", requestID,
			"resume_id", r.ID,
			"token_id", tokenID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to bind credential")
	}

	// The user set is a derived view; AddCredential is idempotent so a retry
	// after a failure here converges.
	if b.users != nil {
		if err := b.users.AddCredential(ctx, r.Subject, tokenID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to record user credential")
		}
	}

	if unchanged {
		b.metrics.IncCredentialBound("unchanged")
	} else {
		b.metrics.IncCredentialBound("bound")
		b.logger.InfoContext(ctx, "credential bound",
			"request_id", requestID,
			"subject", r.Subject,
			"resume_id", r.ID,
			"token_id", tokenID,
		)
		b.emit(ctx, audit.Event{
			Subject:    r.Subject.String(),
			Action:     audit.EventCredentialBound.String(),
			ResourceID: r.ID.String(),
			Detail: map[string]string{
				"token_id":        tokenID,
				"verification_id": v.ID.String(),
			},
		})
	}

	return &BindResult{
		ResumeID:       r.ID,
		VerificationID: v.ID,
		TokenID:        tokenID,
		Unchanged:      unchanged,
	}, nil
}

func (b *Binder) checkLedger(ctx context.Context, tokenID string, owner id.SubjectID) error {
	if b.ledger == nil {
		return nil
	}
	rec, err := b.ledger.Get(ctx, tokenID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodePreconditionFailed, "token does not exist on the ledger")
		case errors.Is(err, sentinel.ErrInvalidInput):
			return dErrors.New(dErrors.CodeBadRequest, "token id is not a valid ledger token id")
		}
		b.logger.WarnContext(ctx, "ledger lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"token_id", tokenID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "ledger unavailable")
	}
	if !rec.Active {
		return dErrors.New(dErrors.CodePreconditionFailed, "token has been revoked")
	}
	if !rec.Owner.Owns(owner) {
		return dErrors.New(dErrors.CodePreconditionFailed, "token is owned by another wallet")
	}
	return nil
}

// ListCredentials returns the subject's resumes that carry a credential.
func (b *Binder) ListCredentials(ctx context.Context, subject id.SubjectID) ([]*models.Resume, error) {
	out, err := b.store.ListWithCredential(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to list credentials")
	}
	return out, nil
}

func (b *Binder) emit(ctx context.Context, ev audit.Event) {
	if b.auditor == nil {
		return
	}
	if err := b.auditor.Emit(ctx, ev); err != nil {
		b.logger.WarnContext(ctx, "failed to emit audit event",
			"action", ev.Action,
			"error", err,
		)
	}
}
