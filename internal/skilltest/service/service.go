// Package service runs skill tests: generate questions, grade submissions,
// and issue a certificate for each passed test.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"credverify/internal/audit"
	"credverify/internal/oracle"
	"credverify/internal/platform/metrics"
	"credverify/internal/sentinel"
	"credverify/internal/skilltest/models"
	"credverify/internal/skilltest/store"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
	"credverify/pkg/validation"
)

// QuestionGenerator produces the questions for a new test.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req oracle.QuestionRequest) ([]oracle.Question, error)
}

// BlobStore pins certificate payloads.
type BlobStore interface {
	Put(ctx context.Context, v any) (string, error)
}

// codeAttempts is how many verification codes SubmitTest tries before
// giving up on a collision.
const codeAttempts = 2

type Option func(*Engine)

// Engine is the skill-test engine.
type Engine struct {
	store     store.Store
	questions QuestionGenerator
	blobs     BlobStore
	newCode   func() (string, error)
	auditor   *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewEngine(st store.Store, questions QuestionGenerator, blobs BlobStore, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		questions: questions,
		blobs:     blobs,
		newCode:   NewVerificationCode,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCodeGenerator replaces the verification code source.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newCode = fn
		}
	}
}

func WithAuditor(a *audit.Publisher) Option {
	return func(e *Engine) { e.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewVerificationCode renders 8 random bytes as 16 upper-case hex digits.
func NewVerificationCode() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b[:])), nil
}

// StartTest creates a started test for skill and returns it without answers.
func (e *Engine) StartTest(ctx context.Context, subject id.SubjectID, skill string) (*models.TestView, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "skill is required")
	}
	if err := validation.CheckStringLength("skill", skill, validation.MaxSkillLength); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "skill is too long")
	}

	generated, err := e.questions.GenerateQuestions(ctx, oracle.QuestionRequest{Skill: skill, Count: models.QuestionCount})
	if err != nil {
		e.logger.WarnContext(ctx, "question generation failed",
			"request_id", requestcontext.RequestID(ctx),
			"skill", skill,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeScoringUnavailable, "question generator unavailable")
	}
	if err := oracle.ValidateQuestions(generated, models.QuestionCount); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeScoringUnavailable, "question generator returned malformed questions")
	}

	t := &models.Test{
		ID:        id.NewTestID(),
		Subject:   subject,
		Skill:     skill,
		Questions: make([]models.Question, len(generated)),
		Status:    models.StatusStarted,
		CreatedAt: requestcontext.Now(ctx),
	}
	for i, q := range generated {
		t.Questions[i] = models.Question{
			Question:      q.Question,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}
	if err := e.store.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to save test")
	}

	e.metrics.IncTestStarted()
	e.logger.InfoContext(ctx, "skill test started",
		"request_id", requestcontext.RequestID(ctx),
		"subject", subject,
		"test_id", t.ID,
		"skill", skill,
	)
	e.emit(ctx, audit.Event{
		Subject:    subject.String(),
		Action:     audit.EventTestStarted.String(),
		ResourceID: t.ID.String(),
		Detail:     map[string]string{"skill": skill},
	})
	return t.View(), nil
}

// CertificatePayload is the document pinned for an issued certificate.
type CertificatePayload struct {
	WalletAddress    string    `json:"walletAddress"`
	Skill            string    `json:"skill"`
	Score            int       `json:"score"`
	VerificationCode string    `json:"verificationCode"`
	Date             time.Time `json:"date"`
}

// SubmitResult is the graded outcome returned to the test taker.
type SubmitResult struct {
	Test        *models.TestView
	Certificate *models.Certificate
}

// SubmitTest grades answers and completes the test. A passing grade issues a
// certificate in the same transaction as the completion.
func (e *Engine) SubmitTest(ctx context.Context, testID id.TestID, subject id.SubjectID, answers []int) (*SubmitResult, error) {
	t, err := e.store.FindByID(ctx, testID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "test not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to load test")
	}
	if !t.Subject.Owns(subject) {
		return nil, dErrors.New(dErrors.CodeForbidden, "test belongs to another wallet")
	}
	if t.IsCompleted() {
		return nil, dErrors.New(dErrors.CodeAlreadyCompleted, "test already submitted")
	}
	if len(answers) != len(t.Questions) {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("expected %d answers, got %d", len(t.Questions), len(answers)))
	}

	grade := models.GradeAnswers(t.Questions, answers)
	now := requestcontext.Now(ctx)
	completion := models.Completion{
		Answers:     append([]int{}, answers...),
		Grade:       grade,
		CompletedAt: now,
	}

	var cert *models.Certificate
	if grade.Passed {
		cert, err = e.completeWithCertificate(ctx, t, completion)
	} else {
		err = e.translateCompletion(e.store.RunInTx(ctx, t.ID.String(), func(tx store.Store) error {
			return tx.Complete(ctx, t.ID, completion)
		}))
	}
	if err != nil {
		return nil, err
	}

	t.Answers = completion.Answers
	t.Score = grade.Score
	t.CorrectCount = grade.CorrectCount
	t.Passed = grade.Passed
	t.Status = models.StatusCompleted
	t.CompletedAt = &now
	if cert != nil {
		t.CertificateCode = cert.VerificationCode
	}

	e.metrics.ObserveTestCompleted(grade.Passed)
	e.logger.InfoContext(ctx, "skill test completed",
		"request_id", requestcontext.RequestID(ctx),
		"subject", subject,
		"test_id", t.ID,
		"score", grade.Score,
		"passed", grade.Passed,
	)
	e.emit(ctx, audit.Event{
		Subject:    t.Subject.String(),
		Action:     audit.EventTestCompleted.String(),
		ResourceID: t.ID.String(),
		Detail:     map[string]string{"skill": t.Skill, "passed": fmt.Sprintf("%t", grade.Passed)},
	})
	if cert != nil {
		e.emit(ctx, audit.Event{
			Subject:    t.Subject.String(),
			Action:     audit.EventCertificateIssued.String(),
			ResourceID: cert.ID.String(),
			Detail:     map[string]string{"verification_code": cert.VerificationCode, "test_id": t.ID.String()},
		})
	}
	return &SubmitResult{Test: t.View(), Certificate: cert}, nil
}

func (e *Engine) completeWithCertificate(ctx context.Context, t *models.Test, completion models.Completion) (*models.Certificate, error) {
	for attempt := 1; ; attempt++ {
		code, err := e.newCode()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
		}
		hash, err := e.blobs.Put(ctx, CertificatePayload{
			WalletAddress:    t.Subject.String(),
			Skill:            t.Skill,
			Score:            completion.Score,
			VerificationCode: code,
			Date:             completion.CompletedAt,
		})
		if err != nil {
			e.logger.WarnContext(ctx, "failed to pin certificate",
				"request_id", requestcontext.RequestID(ctx),
				"test_id", t.ID,
				"error", err,
			)
			return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to pin certificate")
		}

		cert := &models.Certificate{
			ID:               id.NewCertificateID(),
			Subject:          t.Subject,
			TestID:           t.ID,
			Skill:            t.Skill,
			Score:            completion.Score,
			VerificationCode: code,
			IPFSHash:         hash,
			IssuedAt:         completion.CompletedAt,
		}
		completion.CertificateCode = code
		err = e.store.RunInTx(ctx, t.ID.String(), func(tx store.Store) error {
			if err := tx.Complete(ctx, t.ID, completion); err != nil {
				return err
			}
			return tx.InsertCertificate(ctx, cert)
		})
		if err == nil {
			return cert, nil
		}
		if errors.Is(err, sentinel.ErrConflict) {
			if attempt < codeAttempts {
				e.logger.WarnContext(ctx, "verification code collision, regenerating",
					"request_id", requestcontext.RequestID(ctx),
					"test_id", t.ID,
				)
				continue
			}
			return nil, dErrors.New(dErrors.CodeConflict, "could not allocate a unique verification code")
		}
		return nil, e.translateCompletion(err)
	}
}

func (e *Engine) translateCompletion(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrInvalidState), errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeAlreadyCompleted, "test already submitted")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "test not found")
	}
	return dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to record test result")
}

// ListTests returns the subject's tests, newest first.
func (e *Engine) ListTests(ctx context.Context, subject id.SubjectID) ([]*models.TestView, error) {
	tests, err := e.store.ListBySubject(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to list tests")
	}
	out := make([]*models.TestView, 0, len(tests))
	for _, t := range tests {
		out = append(out, t.View())
	}
	return out, nil
}

// GetTest returns one of the subject's tests.
func (e *Engine) GetTest(ctx context.Context, testID id.TestID, subject id.SubjectID) (*models.TestView, error) {
	t, err := e.store.FindByID(ctx, testID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "test not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to load test")
	}
	if !t.Subject.Owns(subject) {
		return nil, dErrors.New(dErrors.CodeForbidden, "test belongs to another wallet")
	}
	return t.View(), nil
}

func (e *Engine) emit(ctx context.Context, ev audit.Event) {
	if e.auditor == nil {
		return
	}
	if err := e.auditor.Emit(ctx, ev); err != nil {
		e.logger.WarnContext(ctx, "failed to emit audit event",
			"action", ev.Action,
			"error", err,
		)
	}
}
