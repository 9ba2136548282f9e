package store

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"credverify/internal/resume/models"
	"credverify/internal/sentinel"
	id "credverify/pkg/domain"
	"credverify/pkg/testutil"
)

const (
	alice = id.SubjectID("0x52908400098527886e0f7030069857d2e4169ee7")
	bob   = id.SubjectID("0x8ba1f109551bd432803012645ac136ddd64dba72")
)

// storeContractSuite runs the same behavioural checks against every Store.
type storeContractSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
	ctx      context.Context
	now      time.Time
}

func (s *storeContractSuite) SetupTest() {
	s.store = s.newStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *storeContractSuite) resume(subject id.SubjectID, createdAt time.Time) *models.Resume {
	r := &models.Resume{
		ID:                 id.NewResumeID(),
		Subject:            subject,
		Name:               "Ada Lovelace",
		Email:              "ada@example.com",
		VerificationStatus: models.StatusPending,
		Details: models.Details{
			Skills:     []string{"Go", "PostgreSQL"},
			Experience: []models.Experience{{Company: "Acme", Title: "Engineer", Description: "Built services"}},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	s.Require().NoError(s.store.Create(s.ctx, r))
	return r
}

func (s *storeContractSuite) verification(r *models.Resume, score int, at time.Time) *models.Verification {
	v := &models.Verification{
		ID:        id.NewVerificationID(),
		ResumeID:  r.ID,
		Subject:   r.Subject,
		Score:     score,
		Analysis:  models.Analysis{OverallAssessment: "ok", RedFlags: []string{}, Strengths: []string{"Go"}},
		IPFSHash:  "QmHash",
		CreatedAt: at,
	}
	s.Require().NoError(s.store.InsertVerification(s.ctx, v))
	return v
}

func (s *storeContractSuite) TestCreateAndFind() {
	r := s.resume(alice, s.now)

	got, err := s.store.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(alice, got.Subject)
	s.Equal(models.StatusPending, got.VerificationStatus)
	s.Nil(got.VerificationScore)
	s.Equal([]string{"Go", "PostgreSQL"}, got.Skills)
	s.Equal("Acme", got.Experience[0].Company)

	_, err = s.store.FindByID(s.ctx, id.NewResumeID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Create(s.ctx, r), sentinel.ErrConflict)
}

func (s *storeContractSuite) TestListBySubjectNewestFirst() {
	older := s.resume(alice, s.now)
	newer := s.resume(alice, s.now.Add(time.Hour))
	s.resume(bob, s.now)

	list, err := s.store.ListBySubject(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
}

func (s *storeContractSuite) TestUpdateDerived() {
	r := s.resume(alice, s.now)

	s.Run("last writer wins", func() {
		v, err := s.store.UpdateDerived(s.ctx, r.ID, models.DerivedUpdate{
			Status: models.StatusVerified, Score: 72, Report: `{"score":72}`, IPFSHash: "QmA",
			ExpectedVersion: models.NoVersionCheck, UpdatedAt: s.now,
		})
		s.Require().NoError(err)
		s.Equal(1, v)

		got, _ := s.store.FindByID(s.ctx, r.ID)
		s.Equal(models.StatusVerified, got.VerificationStatus)
		s.Equal(72, *got.VerificationScore)
		s.Equal("QmA", got.IPFSHash)
		s.Equal(1, got.Version)
	})

	s.Run("stale version conflicts", func() {
		_, err := s.store.UpdateDerived(s.ctx, r.ID, models.DerivedUpdate{
			Status: models.StatusRejected, Score: 40, ExpectedVersion: 0, UpdatedAt: s.now,
		})
		s.ErrorIs(err, sentinel.ErrConflict)

		got, _ := s.store.FindByID(s.ctx, r.ID)
		s.Equal(72, *got.VerificationScore)
	})

	s.Run("matching version applies", func() {
		v, err := s.store.UpdateDerived(s.ctx, r.ID, models.DerivedUpdate{
			Status: models.StatusRejected, Score: 40, ExpectedVersion: 1, UpdatedAt: s.now,
		})
		s.Require().NoError(err)
		s.Equal(2, v)
	})

	s.Run("unknown resume", func() {
		_, err := s.store.UpdateDerived(s.ctx, id.NewResumeID(), models.DerivedUpdate{
			Status: models.StatusRejected, ExpectedVersion: models.NoVersionCheck, UpdatedAt: s.now,
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *storeContractSuite) TestLatestVerification() {
	r := s.resume(alice, s.now)
	_, err := s.store.LatestVerification(s.ctx, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.verification(r, 40, s.now)
	latest := s.verification(r, 75, s.now.Add(time.Minute))

	got, err := s.store.LatestVerification(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(latest.ID, got.ID)
	s.Equal(75, got.Score)
	s.Equal([]string{"Go"}, got.Strengths)
}

func (s *storeContractSuite) TestSetCredentialAtMostOnce() {
	r := s.resume(alice, s.now)

	s.Require().NoError(s.store.SetCredential(s.ctx, r.ID, "17", s.now))
	s.Require().NoError(s.store.SetCredential(s.ctx, r.ID, "17", s.now), "same token is a no-op")
	s.ErrorIs(s.store.SetCredential(s.ctx, r.ID, "18", s.now), sentinel.ErrAlreadyUsed)
	s.ErrorIs(s.store.SetCredential(s.ctx, id.NewResumeID(), "1", s.now), sentinel.ErrNotFound)

	got, _ := s.store.FindByID(s.ctx, r.ID)
	s.Equal("17", got.CredentialID)
	s.Equal(1, got.Version, "no-op rebind does not bump the version")

	bound, err := s.store.ListWithCredential(s.ctx, alice)
	s.Require().NoError(err)
	s.Len(bound, 1)
}

func (s *storeContractSuite) TestSetVerificationTokenAtMostOnce() {
	r := s.resume(alice, s.now)
	v := s.verification(r, 80, s.now)

	s.Require().NoError(s.store.SetVerificationToken(s.ctx, v.ID, "17", "0xtx"))
	s.Require().NoError(s.store.SetVerificationToken(s.ctx, v.ID, "17", "0xother"))
	s.ErrorIs(s.store.SetVerificationToken(s.ctx, v.ID, "18", "0xtx"), sentinel.ErrAlreadyUsed)
	s.ErrorIs(s.store.SetVerificationToken(s.ctx, id.NewVerificationID(), "1", ""), sentinel.ErrNotFound)

	got, _ := s.store.LatestVerification(s.ctx, r.ID)
	s.Equal("17", got.TokenID)
	s.Equal("0xtx", got.TxRef)
}

func (s *storeContractSuite) TestTransactionIsAllOrNothing() {
	r := s.resume(alice, s.now)

	err := s.store.RunInTx(s.ctx, r.ID.String(), func(tx Store) error {
		s.Require().NoError(tx.InsertVerification(s.ctx, &models.Verification{
			ID: id.NewVerificationID(), ResumeID: r.ID, Subject: alice, Score: 90,
			Analysis: models.Analysis{OverallAssessment: "x"}, IPFSHash: "Qm", CreatedAt: s.now,
		}))
		_, err := tx.UpdateDerived(s.ctx, r.ID, models.DerivedUpdate{
			Status: models.StatusVerified, Score: 90, ExpectedVersion: 5, UpdatedAt: s.now,
		})
		return err
	})
	s.ErrorIs(err, sentinel.ErrConflict)

	_, err = s.store.LatestVerification(s.ctx, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "verification insert rolled back")
	got, _ := s.store.FindByID(s.ctx, r.ID)
	s.Equal(models.StatusPending, got.VerificationStatus)
}

func (s *storeContractSuite) TestConcurrentBindsOneWinner() {
	r := s.resume(alice, s.now)

	res := testutil.RunConcurrent(8, func(idx int) error {
		token := string(rune('1' + idx))
		return s.store.RunInTx(s.ctx, r.ID.String(), func(tx Store) error {
			return tx.SetCredential(s.ctx, r.ID, token, s.now)
		})
	})

	s.Equal(int32(1), res.Successes)
	s.Equal(int32(7), res.Conflicts)
}
