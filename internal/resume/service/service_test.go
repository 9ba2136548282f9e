package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"credverify/internal/audit"
	"credverify/internal/resume/models"
	"credverify/internal/resume/store"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

const (
	alice = id.SubjectID("0x52908400098527886e0f7030069857d2e4169ee7")
	bob   = id.SubjectID("0x8ba1f109551bd432803012645ac136ddd64dba72")
)

type ensurerFunc func(ctx context.Context, subject id.SubjectID) error

func (f ensurerFunc) Ensure(ctx context.Context, subject id.SubjectID) error { return f(ctx, subject) }

type ResumeServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	audit   *audit.InMemoryStore
	ensured []id.SubjectID
	svc     *Service
	ctx     context.Context
}

func TestResumeServiceSuite(t *testing.T) {
	suite.Run(t, new(ResumeServiceSuite))
}

func (s *ResumeServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.audit = audit.NewInMemoryStore()
	s.ensured = nil
	users := ensurerFunc(func(_ context.Context, subject id.SubjectID) error {
		s.ensured = append(s.ensured, subject)
		return nil
	})
	s.svc = New(s.store, users, WithAuditor(audit.NewPublisher(s.audit)))
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func (s *ResumeServiceSuite) TestSubmitNormalizesSkillsAndStartsPending() {
	res, err := s.svc.Submit(s.ctx, alice, SubmitInput{
		Name:    "Ada",
		Email:   "ada@example.com",
		Details: models.Details{Skills: []string{" Go ", "go", "", "SQL"}},
	})
	s.Require().NoError(err)

	s.Equal([]string{"Go", "SQL"}, res.Skills)
	s.Equal(models.StatusPending, res.VerificationStatus)
	s.Nil(res.VerificationScore)
	s.Equal(alice, res.Subject)
	s.Equal([]id.SubjectID{alice}, s.ensured, "user is created lazily")

	events, err := s.audit.ListBySubject(s.ctx, alice.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.EventResumeSubmitted.String(), events[0].Action)
	s.Equal(res.ID.String(), events[0].ResourceID)
}

func (s *ResumeServiceSuite) TestSubmitFailsWhenUserCannotBeCreated() {
	s.svc.users = ensurerFunc(func(context.Context, id.SubjectID) error {
		return dErrors.New(dErrors.CodeInternal, "db down")
	})
	_, err := s.svc.Submit(s.ctx, alice, SubmitInput{Name: "Ada"})
	s.Require().Error(err)

	list, err := s.svc.List(s.ctx, alice)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *ResumeServiceSuite) TestGetEnforcesOwnership() {
	res, err := s.svc.Submit(s.ctx, alice, SubmitInput{Name: "Ada"})
	s.Require().NoError(err)

	got, err := s.svc.Get(s.ctx, res.ID, id.SubjectID("0x52908400098527886E0F7030069857D2E4169EE7"))
	s.Require().NoError(err, "owner compare ignores case")
	s.Equal(res.ID, got.ID)

	_, err = s.svc.Get(s.ctx, res.ID, bob)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.svc.Get(s.ctx, id.NewResumeID(), alice)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ResumeServiceSuite) TestListNewestFirst() {
	first, err := s.svc.Submit(s.ctx, alice, SubmitInput{Name: "v1"})
	s.Require().NoError(err)
	later := requestcontext.WithTime(s.ctx, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	second, err := s.svc.Submit(later, alice, SubmitInput{Name: "v2"})
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, bob, SubmitInput{Name: "other"})
	s.Require().NoError(err)

	list, err := s.svc.List(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)
	s.Equal(first.ID, list[1].ID)
}

func (s *ResumeServiceSuite) TestSubmitRequiresSubject() {
	_, err := s.svc.Submit(s.ctx, "", SubmitInput{Name: "Ada"})
	var derr *dErrors.Error
	s.Require().True(errors.As(err, &derr))
	s.Equal(dErrors.CodeUnauthorized, derr.Code)
}
