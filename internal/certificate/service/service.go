// Package service resolves public certificate verification codes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"credverify/internal/platform/metrics"
	"credverify/internal/sentinel"
	"credverify/internal/skilltest/models"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

// Store is the read side of the skill-test store.
type Store interface {
	FindCertificateByCode(ctx context.Context, code string) (*models.Certificate, error)
	FindByID(ctx context.Context, testID id.TestID) (*models.Test, error)
}

// Resolution is a certificate plus the context of the test that earned it.
type Resolution struct {
	Certificate    *models.Certificate
	TotalQuestions int
	CorrectAnswers int
	CompletedAt    *time.Time
}

type Option func(*Verifier)

// Verifier looks certificates up by code. It never writes.
type Verifier struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewVerifier(st Store, opts ...Option) *Verifier {
	v := &Verifier{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) { v.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NormalizeCode trims and upper-cases a verification code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ResolveCertificate returns the certificate for code. Codes are matched
// case-insensitively.
func (v *Verifier) ResolveCertificate(ctx context.Context, code string) (*Resolution, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "verification code is required")
	}

	cert, err := v.store.FindCertificateByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			v.metrics.IncCertificateLookup(false)
			return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to load certificate")
	}

	test, err := v.store.FindByID(ctx, cert.TestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			v.logger.ErrorContext(ctx, "certificate references missing test",
				"request_id", requestcontext.RequestID(ctx),
				"test_id", cert.TestID,
			)
			return nil, dErrors.New(dErrors.CodeInternal, "certificate test is missing")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to load certificate test")
	}

	v.metrics.IncCertificateLookup(true)
	return &Resolution{
		Certificate:    cert,
		TotalQuestions: len(test.Questions),
		CorrectAnswers: test.CorrectCount,
		CompletedAt:    test.CompletedAt,
	}, nil
}
