package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"credverify/internal/audit"
	"credverify/internal/oracle"
	"credverify/internal/sentinel"
	"credverify/internal/skilltest/models"
	"credverify/internal/skilltest/service/mocks"
	"credverify/internal/skilltest/store"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

const (
	alice = id.SubjectID("0x52908400098527886e0f7030069857d2e4169ee7")
	bob   = id.SubjectID("0x8ba1f109551bd432803012645ac136ddd64dba72")
)

var startedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type EngineSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	questions *mocks.MockQuestionGenerator
	blobs     *mocks.MockBlobStore
	store     *store.InMemoryStore
	audit     *audit.InMemoryStore
	engine    *Engine
	ctx       context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.questions = mocks.NewMockQuestionGenerator(s.ctrl)
	s.blobs = mocks.NewMockBlobStore(s.ctrl)
	s.store = store.NewInMemoryStore()
	s.audit = audit.NewInMemoryStore()
	s.engine = s.newEngine()
	s.ctx = requestcontext.WithTime(context.Background(), startedAt)
}

func (s *EngineSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EngineSuite) newEngine(opts ...Option) *Engine {
	base := []Option{
		WithAuditor(audit.NewPublisher(s.audit)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewEngine(s.store, s.questions, s.blobs, append(base, opts...)...)
}

func generated(n int) []oracle.Question {
	qs := make([]oracle.Question, n)
	for i := range qs {
		qs[i] = oracle.Question{
			Question:      fmt.Sprintf("Go question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: i % 4,
			Explanation:   "see the language reference",
		}
	}
	return qs
}

// answers returns a submission with exactly correct right answers.
func answers(correct int) []int {
	out := make([]int, models.QuestionCount)
	for i := range out {
		out[i] = i % 4
		if i >= correct {
			out[i] = (i + 1) % 4
		}
	}
	return out
}

func (s *EngineSuite) start() *models.TestView {
	s.questions.EXPECT().
		GenerateQuestions(gomock.Any(), oracle.QuestionRequest{Skill: "Go", Count: models.QuestionCount}).
		Return(generated(models.QuestionCount), nil)
	v, err := s.engine.StartTest(s.ctx, alice, "  Go ")
	s.Require().NoError(err)
	return v
}

func (s *EngineSuite) TestStartHidesAnswers() {
	v := s.start()

	s.Equal("Go", v.Skill)
	s.Equal(models.StatusStarted, v.Status)
	s.Require().Len(v.Questions, models.QuestionCount)
	for _, q := range v.Questions {
		s.Nil(q.CorrectAnswer)
		s.Empty(q.Explanation)
		s.Len(q.Options, 4)
	}

	stored, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(3, stored.Questions[3].CorrectAnswer, "answers are kept server side")
}

func (s *EngineSuite) TestStartValidation() {
	_, err := s.engine.StartTest(s.ctx, alice, "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *EngineSuite) TestStartRejectsMalformedQuestions() {
	broken := generated(models.QuestionCount)
	broken[4].Options = []string{"A", "B", "C"}
	outOfRange := generated(models.QuestionCount)
	outOfRange[2].CorrectAnswer = 4
	blank := generated(models.QuestionCount)
	blank[0].Question = "  "

	cases := map[string][]oracle.Question{
		"too few questions":   generated(9),
		"three options":       broken,
		"answer out of range": outOfRange,
		"blank question":      blank,
	}
	for name, qs := range cases {
		s.Run(name, func() {
			s.questions.EXPECT().GenerateQuestions(gomock.Any(), gomock.Any()).Return(qs, nil)
			_, err := s.engine.StartTest(s.ctx, alice, "Go")
			s.True(dErrors.HasCode(err, dErrors.CodeScoringUnavailable))
		})
	}

	list, err := s.store.ListBySubject(s.ctx, alice)
	s.Require().NoError(err)
	s.Empty(list, "no test persisted for malformed generations")
}

func (s *EngineSuite) TestStartGeneratorFailure() {
	s.questions.EXPECT().GenerateQuestions(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)
	_, err := s.engine.StartTest(s.ctx, alice, "Go")
	s.True(dErrors.HasCode(err, dErrors.CodeScoringUnavailable))
}

func (s *EngineSuite) TestPassingSubmissionIssuesCertificate() {
	v := s.start()
	var pinned CertificatePayload
	s.blobs.EXPECT().
		Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, doc any) (string, error) {
			pinned = doc.(CertificatePayload)
			return "QmCert", nil
		})

	res, err := s.engine.SubmitTest(s.ctx, v.ID, alice, answers(8))
	s.Require().NoError(err)

	s.Equal(80, res.Test.Score)
	s.Equal(8, res.Test.CorrectCount)
	s.True(res.Test.Passed)
	s.Equal(models.StatusCompleted, res.Test.Status)
	s.Require().NotNil(res.Test.Questions[0].CorrectAnswer, "answers revealed after completion")

	s.Require().NotNil(res.Certificate)
	s.Regexp(regexp.MustCompile(`^[0-9A-F]{16}$`), res.Certificate.VerificationCode)
	s.Equal(res.Certificate.VerificationCode, res.Test.CertificateCode)
	s.Equal("QmCert", res.Certificate.IPFSHash)
	s.Equal(pinned.VerificationCode, res.Certificate.VerificationCode)
	s.Equal(alice.String(), pinned.WalletAddress)
	s.Equal(80, pinned.Score)

	cert, err := s.store.FindCertificateByCode(s.ctx, res.Certificate.VerificationCode)
	s.Require().NoError(err)
	s.Equal(v.ID, cert.TestID)

	events, err := s.audit.ListBySubject(s.ctx, alice.String())
	s.Require().NoError(err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Equal([]string{"test_started", "test_completed", "certificate_issued"}, actions)
}

func (s *EngineSuite) TestFailingSubmissionHasNoCertificate() {
	v := s.start()

	res, err := s.engine.SubmitTest(s.ctx, v.ID, alice, answers(5))
	s.Require().NoError(err)
	s.Equal(50, res.Test.Score)
	s.False(res.Test.Passed)
	s.Nil(res.Certificate)
	s.Empty(res.Test.CertificateCode)

	stored, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, stored.Status)
}

func (s *EngineSuite) TestSubmitPreconditions() {
	v := s.start()

	_, err := s.engine.SubmitTest(s.ctx, id.NewTestID(), alice, answers(10))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.engine.SubmitTest(s.ctx, v.ID, bob, answers(10))
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.engine.SubmitTest(s.ctx, v.ID, alice, []int{0, 1, 2})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.engine.SubmitTest(s.ctx, v.ID, alice, answers(2))
	s.Require().NoError(err)
	_, err = s.engine.SubmitTest(s.ctx, v.ID, alice, answers(10))
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyCompleted))

	stored, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(20, stored.Score, "first result is kept")
	s.Equal(2, stored.CorrectCount)
	s.Equal(answers(2), stored.Answers)
}

func (s *EngineSuite) TestAllWrongScoresZero() {
	v := s.start()

	res, err := s.engine.SubmitTest(s.ctx, v.ID, alice, answers(0))
	s.Require().NoError(err)
	s.Equal(0, res.Test.Score)
	s.Equal(0, res.Test.CorrectCount)
	s.False(res.Test.Passed)
	s.Nil(res.Certificate)
}

func (s *EngineSuite) TestPinFailureLeavesTestStarted() {
	v := s.start()
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("", sentinel.ErrUnavailable)

	_, err := s.engine.SubmitTest(s.ctx, v.ID, alice, answers(10))
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))

	stored, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusStarted, stored.Status, "submission can be retried")
}

// seedCertificate completes another test holding code so the next insert collides.
func (s *EngineSuite) seedCertificate(code string) {
	other := &models.Test{ID: id.NewTestID(), Subject: bob, Skill: "SQL", Status: models.StatusStarted, CreatedAt: startedAt}
	s.Require().NoError(s.store.Create(s.ctx, other))
	s.Require().NoError(s.store.InsertCertificate(s.ctx, &models.Certificate{
		ID: id.NewCertificateID(), Subject: bob, TestID: other.ID, Skill: "SQL", Score: 90, VerificationCode: code,
	}))
}

func (s *EngineSuite) TestCodeCollisionRegeneratesOnce() {
	s.seedCertificate("AAAAAAAAAAAAAAAA")
	codes := []string{"AAAAAAAAAAAAAAAA", "BBBBBBBBBBBBBBBB"}
	engine := s.newEngine(WithCodeGenerator(func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}))
	v := s.start()
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("QmA", nil)
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("QmB", nil)

	res, err := engine.SubmitTest(s.ctx, v.ID, alice, answers(10))
	s.Require().NoError(err)
	s.Equal("BBBBBBBBBBBBBBBB", res.Certificate.VerificationCode)
	s.Equal("QmB", res.Certificate.IPFSHash, "payload re-pinned with the new code")
}

func (s *EngineSuite) TestSecondCollisionIsConflict() {
	s.seedCertificate("AAAAAAAAAAAAAAAA")
	engine := s.newEngine(WithCodeGenerator(func() (string, error) { return "AAAAAAAAAAAAAAAA", nil }))
	v := s.start()
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("Qm", nil).Times(2)

	_, err := engine.SubmitTest(s.ctx, v.ID, alice, answers(10))
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	stored, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusStarted, stored.Status)
}

func (s *EngineSuite) TestConcurrentSubmitsIssueOneCertificate() {
	v := s.start()
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("Qm", nil).AnyTimes()

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		certs     []string
		completed int
	)
	for range racers {
		wg.Go(func() {
			res, err := s.engine.SubmitTest(s.ctx, v.ID, alice, answers(10))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				certs = append(certs, res.Certificate.VerificationCode)
			case dErrors.HasCode(err, dErrors.CodeAlreadyCompleted):
				completed++
			}
		})
	}
	wg.Wait()

	s.Require().Len(certs, 1)
	s.Equal(racers-1, completed)
	stored, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(certs[0], stored.CertificateCode)
}

func (s *EngineSuite) TestListAndGet() {
	first := s.start()
	later := requestcontext.WithTime(s.ctx, startedAt.Add(time.Hour))
	s.questions.EXPECT().GenerateQuestions(gomock.Any(), gomock.Any()).Return(generated(models.QuestionCount), nil)
	second, err := s.engine.StartTest(later, alice, "Rust")
	s.Require().NoError(err)

	list, err := s.engine.ListTests(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)
	s.Equal(first.ID, list[1].ID)
	s.Nil(list[0].Questions[0].CorrectAnswer)

	got, err := s.engine.GetTest(s.ctx, first.ID, alice)
	s.Require().NoError(err)
	s.Equal("Go", got.Skill)

	_, err = s.engine.GetTest(s.ctx, first.ID, bob)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *EngineSuite) TestNewVerificationCode() {
	format := regexp.MustCompile(`^[0-9A-F]{16}$`)
	seen := make(map[string]struct{})
	for range 10_000 {
		code, err := NewVerificationCode()
		s.Require().NoError(err)
		s.Require().True(format.MatchString(code), code)
		seen[code] = struct{}{}
	}
	s.Len(seen, 10_000)
}
