// Package service answers the AI assist requests about a subject's latest resume.
package service

import (
	"context"
	"log/slog"
	"strings"

	"credverify/internal/oracle"
	"credverify/internal/resume/models"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

// ResumeLister returns a subject's resumes, newest first.
type ResumeLister interface {
	ListBySubject(ctx context.Context, subject id.SubjectID) ([]*models.Resume, error)
}

// Advisor is the oracle surface used by the assist endpoints.
type Advisor interface {
	CareerAdvice(ctx context.Context, in oracle.AssessmentInput) (string, error)
	MatchSkills(ctx context.Context, req oracle.SkillMatchRequest) (*oracle.SkillMatch, error)
}

type Option func(*Assistant)

type Assistant struct {
	resumes ResumeLister
	advisor Advisor
	logger  *slog.Logger
}

func NewAssistant(resumes ResumeLister, advisor Advisor, opts ...Option) *Assistant {
	a := &Assistant{resumes: resumes, advisor: advisor, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// MatchSkills compares the skills on the subject's latest resume with a job description.
func (a *Assistant) MatchSkills(ctx context.Context, subject id.SubjectID, jobDescription string) (*oracle.SkillMatch, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "job description is required")
	}
	r, err := a.latest(ctx, subject)
	if err != nil {
		return nil, err
	}
	match, err := a.advisor.MatchSkills(ctx, oracle.SkillMatchRequest{Skills: r.Skills, JobDescription: jobDescription})
	if err != nil {
		a.logFailure(ctx, "skill match failed", subject, err)
		return nil, dErrors.Wrap(err, dErrors.CodeScoringUnavailable, "skill match unavailable")
	}
	return match, nil
}

// CareerAdvice returns free-text advice for the subject's latest resume.
func (a *Assistant) CareerAdvice(ctx context.Context, subject id.SubjectID) (string, error) {
	r, err := a.latest(ctx, subject)
	if err != nil {
		return "", err
	}
	advice, err := a.advisor.CareerAdvice(ctx, r.AssessmentInput())
	if err != nil {
		a.logFailure(ctx, "career advice failed", subject, err)
		return "", dErrors.Wrap(err, dErrors.CodeScoringUnavailable, "career advice unavailable")
	}
	return strings.TrimSpace(advice), nil
}

func (a *Assistant) latest(ctx context.Context, subject id.SubjectID) (*models.Resume, error) {
	resumes, err := a.resumes.ListBySubject(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageUnavailable, "failed to load resumes")
	}
	if len(resumes) == 0 {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "submit a resume first")
	}
	return resumes[0], nil
}

func (a *Assistant) logFailure(ctx context.Context, msg string, subject id.SubjectID, err error) {
	a.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"subject", subject,
		"error", err,
	)
}
