// Package service runs resume verification: score with the oracle, pin the
// report, then record the outcome against the resume in one transaction.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"credverify/internal/audit"
	"credverify/internal/oracle"
	"credverify/internal/platform/metrics"
	"credverify/internal/resume/models"
	"credverify/internal/resume/store"
	"credverify/internal/sentinel"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

// Assessor scores a resume's facts.
type Assessor interface {
	Assess(ctx context.Context, in oracle.AssessmentInput) (*oracle.Assessment, error)
}

// BlobStore pins the verification report.
type BlobStore interface {
	Put(ctx context.Context, v any) (string, error)
}

type Option func(*Pipeline)

// Pipeline is the verification pipeline.
type Pipeline struct {
	store        store.Store
	assessor     Assessor
	blobs        BlobStore
	versionCheck bool
	auditor      *audit.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewPipeline(st store.Store, assessor Assessor, blobs BlobStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    st,
		assessor: assessor,
		blobs:    blobs,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithVersionCheck makes the derived-field write conditional on the resume
// version read at the start of the run. A concurrent run that committed first
// makes the later one fail with CodeConflict instead of overwriting it.
func WithVersionCheck(enabled bool) Option {
	return func(p *Pipeline) { p.versionCheck = enabled }
}

func WithAuditor(a *audit.Publisher) Option {
	return func(p *Pipeline) { p.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// PinnedReport is the document stored in the blob store for a verification.
type PinnedReport struct {
	ResumeID           string             `json:"resumeId"`
	WalletAddress      string             `json:"walletAddress"`
	VerificationResult *oracle.Assessment `json:"verificationResult"`
	Timestamp          time.Time          `json:"timestamp"`
}

// RunVerification scores the resume and records the outcome. Nothing is
// written when scoring or pinning fails.
func (p *Pipeline) RunVerification(ctx context.Context, resumeID id.ResumeID, subject id.SubjectID) (*models.Verification, error) {
	requestID := requestcontext.RequestID(ctx)

	r, err := p.loadOwned(ctx, resumeID, subject)
	if err != nil {
		return nil, err
	}

	assessment, err := p.assessor.Assess(ctx, r.AssessmentInput())
	if err != nil {
		p.metrics.ObserveVerification("scoring_unavailable", 0)
		p.logger.WarnContext(ctx, "resume scoring failed",
			"request_id", requestID,
			"resume_id", resumeID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeScoringUnavailable, "scoring oracle unavailable")
	}
	if assessment.Score < 0 || assessment.Score > 100 {
		p.metrics.ObserveVerification("scoring_unavailable", 0)
		return nil, dErrors.New(dErrors.CodeScoringUnavailable, "scoring oracle returned an out-of-range score")
	}

	now := requestcontext.Now(ctx)
	hash, err := p.blobs.Put(ctx, PinnedReport{
		ResumeID:           r.ID.String(),
		WalletAddress:      r.Subject.String(),
		VerificationResult: assessment,
		Timestamp:          now,
	})
	if err != nil {
		p.metrics.ObserveVerification("storage_unavailable", assessment.Score)
		p.logger.WarnContext(ctx, "failed to pin verification report",
			"request_id", requestID,
			"resume_id", resumeID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to pin verification report")
	}

	report, err := json.Marshal(assessment)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode verification report")
	}

	v := &models.Verification{
		ID:        id.NewVerificationID(),
		ResumeID:  r.ID,
		Subject:   r.Subject,
		Score:     assessment.Score,
		Analysis:  models.AnalysisFrom(assessment),
		IPFSHash:  hash,
		CreatedAt: now,
	}
	status := models.StatusForScore(v.Score)
	expected := models.NoVersionCheck
	if p.versionCheck {
		expected = r.Version
	}

	var version int
	err = p.store.RunInTx(ctx, r.ID.String(), func(tx store.Store) error {
		if err := tx.InsertVerification(ctx, v); err != nil {
			return err
		}
		var txErr error
		version, txErr = tx.UpdateDerived(ctx, r.ID, models.DerivedUpdate{
			Status:          status,
			Score:           v.Score,
			Report:          string(report),
			IPFSHash:        hash,
			ExpectedVersion: expected,
			UpdatedAt:       now,
		})
		return txErr
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			p.metrics.ObserveVerification("conflict", v.Score)
			return nil, dErrors.New(dErrors.CodeConflict, "resume changed while verification was running")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "resume not found")
		}
		p.metrics.ObserveVerification("storage_unavailable", v.Score)
		p.logger.ErrorContext(ctx, "failed to record verification",
			"request_id", requestID,
			"resume_id", resumeID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to record verification")
	}

	p.metrics.ObserveVerification(string(status), v.Score)
	p.logger.InfoContext(ctx, "resume verified",
		"request_id", requestID,
		"subject", subject,
		"resume_id", resumeID,
		"score", v.Score,
		"status", status,
		"version", version,
	)
	p.emit(ctx, audit.Event{
		Subject:    r.Subject.String(),
		Action:     audit.EventVerificationCompleted.String(),
		ResourceID: r.ID.String(),
		Detail: map[string]string{
			"verification_id": v.ID.String(),
			"status":          string(status),
			"ipfs_hash":       hash,
		},
	})
	return v, nil
}

// LatestVerification returns the most recent verification of an owned resume.
func (p *Pipeline) LatestVerification(ctx context.Context, resumeID id.ResumeID, subject id.SubjectID) (*models.Verification, error) {
	if _, err := p.loadOwned(ctx, resumeID, subject); err != nil {
		return nil, err
	}
	v, err := p.store.LatestVerification(ctx, resumeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "resume has not been verified")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to load verification")
	}
	return v, nil
}

func (p *Pipeline) loadOwned(ctx context.Context, resumeID id.ResumeID, subject id.SubjectID) (*models.Resume, error) {
	r, err := p.store.FindByID(ctx, resumeID)
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

func (p *Pipeline) emit(ctx context.Context, ev audit.Event) {
	if p.auditor == nil {
		return
	}
	if err := p.auditor.Emit(ctx, ev); err != nil {
		p.logger.WarnContext(ctx, "failed to emit audit event",
			"action", ev.Action,
			"error", err,
		)
	}
}
