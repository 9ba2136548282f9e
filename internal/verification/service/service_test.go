package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"credverify/internal/audit"
	"credverify/internal/oracle"
	"credverify/internal/resume/models"
	"credverify/internal/resume/store"
	"credverify/internal/sentinel"
	"credverify/internal/verification/service/mocks"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

const (
	alice = id.SubjectID("0x52908400098527886e0f7030069857d2e4169ee7")
	bob   = id.SubjectID("0x8ba1f109551bd432803012645ac136ddd64dba72")
)

var runAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type PipelineSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	assessor *mocks.MockAssessor
	blobs    *mocks.MockBlobStore
	store    *store.InMemoryStore
	audit    *audit.InMemoryStore
	pipeline *Pipeline
	ctx      context.Context
	resume   *models.Resume
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.assessor = mocks.NewMockAssessor(s.ctrl)
	s.blobs = mocks.NewMockBlobStore(s.ctrl)
	s.store = store.NewInMemoryStore()
	s.audit = audit.NewInMemoryStore()
	s.pipeline = s.newPipeline()
	s.ctx = requestcontext.WithTime(context.Background(), runAt)

	s.resume = &models.Resume{
		ID:                 id.NewResumeID(),
		Subject:            alice,
		Name:               "Ada",
		Details:            models.Details{Skills: []string{"Go", "SQL"}},
		VerificationStatus: models.StatusPending,
		CreatedAt:          runAt.Add(-time.Hour),
		UpdatedAt:          runAt.Add(-time.Hour),
	}
	s.Require().NoError(s.store.Create(s.ctx, s.resume))
}

func (s *PipelineSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *PipelineSuite) newPipeline(opts ...Option) *Pipeline {
	base := []Option{
		WithAuditor(audit.NewPublisher(s.audit)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewPipeline(s.store, s.assessor, s.blobs, append(base, opts...)...)
}

func assessment(score int) *oracle.Assessment {
	return &oracle.Assessment{
		Score:             score,
		OverallAssessment: "consistent history",
		SkillsAnalysis:    []oracle.SkillAnalysis{{Skill: "Go", Verified: true, Confidence: 80}},
		Strengths:         []string{"depth"},
		Recommendations:   []string{"add links"},
	}
}

func (s *PipelineSuite) reload() *models.Resume {
	r, err := s.store.FindByID(s.ctx, s.resume.ID)
	s.Require().NoError(err)
	return r
}

func (s *PipelineSuite) TestPassingScoreVerifiesResume() {
	var pinned PinnedReport
	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in oracle.AssessmentInput) (*oracle.Assessment, error) {
			s.Equal([]string{"Go", "SQL"}, in.Skills)
			return assessment(72), nil
		})
	s.blobs.EXPECT().
		Put(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v any) (string, error) {
			pinned = v.(PinnedReport)
			return "QmReport", nil
		})

	v, err := s.pipeline.RunVerification(s.ctx, s.resume.ID, alice)
	s.Require().NoError(err)

	s.Equal(72, v.Score)
	s.Equal("QmReport", v.IPFSHash)
	s.Equal([]string{"add links"}, v.Recommendations)
	s.Equal(s.resume.ID.String(), pinned.ResumeID)
	s.Equal(alice.String(), pinned.WalletAddress)
	s.Equal(runAt, pinned.Timestamp)
	s.Equal(72, pinned.VerificationResult.Score)

	r := s.reload()
	s.Equal(models.StatusVerified, r.VerificationStatus)
	s.Require().NotNil(r.VerificationScore)
	s.Equal(72, *r.VerificationScore)
	s.Equal("QmReport", r.IPFSHash)
	s.Equal(1, r.Version)
	s.Contains(r.VerificationReport, `"score":72`)

	latest, err := s.pipeline.LatestVerification(s.ctx, s.resume.ID, alice)
	s.Require().NoError(err)
	s.Equal(v.ID, latest.ID)

	events, err := s.audit.ListBySubject(s.ctx, alice.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.EventVerificationCompleted.String(), events[0].Action)
	s.Equal("verified", events[0].Detail["status"])
}

func (s *PipelineSuite) TestFailingScoreRejectsResume() {
	s.assessor.EXPECT().Assess(gomock.Any(), gomock.Any()).Return(assessment(59), nil)
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("QmLow", nil)

	_, err := s.pipeline.RunVerification(s.ctx, s.resume.ID, alice)
	s.Require().NoError(err)

	r := s.reload()
	s.Equal(models.StatusRejected, r.VerificationStatus)
	s.Equal(59, *r.VerificationScore)
}

func (s *PipelineSuite) TestOwnerCompareIgnoresCase() {
	s.assessor.EXPECT().Assess(gomock.Any(), gomock.Any()).Return(assessment(80), nil)
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("Qm", nil)

	_, err := s.pipeline.RunVerification(s.ctx, s.resume.ID, id.SubjectID("0x52908400098527886E0F7030069857D2E4169EE7"))
	s.Require().NoError(err)
}

func (s *PipelineSuite) TestForeignWalletIsForbiddenWithoutSideEffects() {
	_, err := s.pipeline.RunVerification(s.ctx, s.resume.ID, bob)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	r := s.reload()
	s.Equal(models.StatusPending, r.VerificationStatus)
	s.Equal(0, r.Version)
}

func (s *PipelineSuite) TestUnknownResume() {
	_, err := s.pipeline.RunVerification(s.ctx, id.NewResumeID(), alice)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PipelineSuite) TestOracleFailureWritesNothing() {
	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any()).
		Return(nil, context.DeadlineExceeded)

	_, err := s.pipeline.RunVerification(s.ctx, s.resume.ID, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeScoringUnavailable))
	s.True(dErrors.IsRetryable(err))

	r := s.reload()
	s.Equal(models.StatusPending, r.VerificationStatus)
	s.Nil(r.VerificationScore)
	_, err = s.store.LatestVerification(s.ctx, s.resume.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PipelineSuite) TestOracleErrorCodeIsPreserved() {
	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeScoringUnavailable, "scoring oracle unavailable: assess"))

	_, err := s.pipeline.RunVerification(s.ctx, s.resume.ID, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeScoringUnavailable))
}

func (s *PipelineSuite) TestOutOfRangeScoreIsScoringFailure() {
	s.assessor.EXPECT().Assess(gomock.Any(), gomock.Any()).Return(assessment(140), nil)

	_, err := s.pipeline.RunVerification(s.ctx, s.resume.ID, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeScoringUnavailable))
}

func (s *PipelineSuite) TestPinFailureWritesNothing() {
	s.assessor.EXPECT().Assess(gomock.Any(), gomock.Any()).Return(assessment(90), nil)
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("", sentinel.ErrUnavailable)

	_, err := s.pipeline.RunVerification(s.ctx, s.resume.ID, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))

	r := s.reload()
	s.Equal(models.StatusPending, r.VerificationStatus)
	s.Equal(0, r.Version)
}

// concurrentWrite simulates another run committing while this one waits on the oracle.
func (s *PipelineSuite) concurrentWrite() {
	_, err := s.store.UpdateDerived(s.ctx, s.resume.ID, models.DerivedUpdate{
		Status:          models.StatusRejected,
		Score:           30,
		IPFSHash:        "QmOther",
		ExpectedVersion: models.NoVersionCheck,
		UpdatedAt:       runAt,
	})
	s.Require().NoError(err)
}

func (s *PipelineSuite) TestLastWriterWinsByDefault() {
	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, oracle.AssessmentInput) (*oracle.Assessment, error) {
			s.concurrentWrite()
			return assessment(75), nil
		})
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("QmMine", nil)

	_, err := s.pipeline.RunVerification(s.ctx, s.resume.ID, alice)
	s.Require().NoError(err)

	r := s.reload()
	s.Equal("QmMine", r.IPFSHash)
	s.Equal(models.StatusVerified, r.VerificationStatus)
	s.Equal(2, r.Version)
}

func (s *PipelineSuite) TestVersionCheckRejectsStaleRun() {
	pipeline := s.newPipeline(WithVersionCheck(true))
	s.assessor.EXPECT().
		Assess(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, oracle.AssessmentInput) (*oracle.Assessment, error) {
			s.concurrentWrite()
			return assessment(75), nil
		})
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("QmMine", nil)

	_, err := pipeline.RunVerification(s.ctx, s.resume.ID, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	r := s.reload()
	s.Equal("QmOther", r.IPFSHash, "earlier commit survives")
	s.Equal(1, r.Version)
	_, err = s.store.LatestVerification(s.ctx, s.resume.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "verification insert rolled back with the failed update")
}

func (s *PipelineSuite) TestLatestVerification() {
	_, err := s.pipeline.LatestVerification(s.ctx, s.resume.ID, alice)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.assessor.EXPECT().Assess(gomock.Any(), gomock.Any()).Return(assessment(61), nil)
	s.assessor.EXPECT().Assess(gomock.Any(), gomock.Any()).Return(assessment(88), nil)
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("Qm1", nil)
	s.blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("Qm2", nil)

	_, err = s.pipeline.RunVerification(s.ctx, s.resume.ID, alice)
	s.Require().NoError(err)
	later := requestcontext.WithTime(s.ctx, runAt.Add(time.Minute))
	second, err := s.pipeline.RunVerification(later, s.resume.ID, alice)
	s.Require().NoError(err)

	latest, err := s.pipeline.LatestVerification(s.ctx, s.resume.ID, alice)
	s.Require().NoError(err)
	s.Equal(second.ID, latest.ID)
	s.Equal(88, latest.Score)

	_, err = s.pipeline.LatestVerification(s.ctx, s.resume.ID, bob)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}
