package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"credverify/internal/sentinel"
	"credverify/internal/skilltest/models"
	id "credverify/pkg/domain"
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

func (s *storeContractSuite) startTest(subject id.SubjectID, createdAt time.Time) *models.Test {
	qs := make([]models.Question, models.QuestionCount)
	for i := range qs {
		qs[i] = models.Question{
			Question:      fmt.Sprintf("Go question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: i % models.OptionCount,
			Explanation:   "because",
		}
	}
	t := &models.Test{
		ID:        id.NewTestID(),
		Subject:   subject,
		Skill:     "Go",
		Questions: qs,
		Status:    models.StatusStarted,
		CreatedAt: createdAt,
	}
	s.Require().NoError(s.store.Create(s.ctx, t))
	return t
}

func (s *storeContractSuite) completion(code string) models.Completion {
	return models.Completion{
		Answers:         []int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1},
		Grade:           models.Grade{CorrectCount: 10, Score: 100, Passed: true},
		CompletedAt:     s.now.Add(10 * time.Minute),
		CertificateCode: code,
	}
}

func (s *storeContractSuite) certificate(t *models.Test, code string) *models.Certificate {
	return &models.Certificate{
		ID:               id.NewCertificateID(),
		Subject:          t.Subject,
		TestID:           t.ID,
		Skill:            t.Skill,
		Score:            100,
		VerificationCode: code,
		IPFSHash:         "QmCert",
		IssuedAt:         s.now.Add(10 * time.Minute),
	}
}

func (s *storeContractSuite) TestCreateAndFind() {
	t := s.startTest(alice, s.now)

	got, err := s.store.FindByID(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusStarted, got.Status)
	s.Len(got.Questions, models.QuestionCount)
	s.Equal([]string{"A", "B", "C", "D"}, got.Questions[3].Options)
	s.Equal(3, got.Questions[3].CorrectAnswer)
	s.Nil(got.Answers)
	s.Nil(got.CompletedAt)

	_, err = s.store.FindByID(s.ctx, id.NewTestID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestListNewestFirst() {
	older := s.startTest(alice, s.now)
	newer := s.startTest(alice, s.now.Add(time.Hour))
	s.startTest(bob, s.now)

	list, err := s.store.ListBySubject(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
}

func (s *storeContractSuite) TestCompleteOnlyOnce() {
	t := s.startTest(alice, s.now)

	s.Require().NoError(s.store.Complete(s.ctx, t.ID, s.completion("")))
	got, err := s.store.FindByID(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, got.Status)
	s.Equal(100, got.Score)
	s.Equal(10, got.CorrectCount)
	s.Len(got.Answers, 10)
	s.Require().NotNil(got.CompletedAt)

	err = s.store.Complete(s.ctx, t.ID, s.completion(""))
	s.ErrorIs(err, sentinel.ErrInvalidState)

	err = s.store.Complete(s.ctx, id.NewTestID(), s.completion(""))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestCertificateUniqueness() {
	first := s.startTest(alice, s.now)
	second := s.startTest(alice, s.now)

	s.Require().NoError(s.store.Complete(s.ctx, first.ID, s.completion("0123456789ABCDEF")))
	s.Require().NoError(s.store.InsertCertificate(s.ctx, s.certificate(first, "0123456789ABCDEF")))

	got, err := s.store.FindCertificateByCode(s.ctx, "0123456789ABCDEF")
	s.Require().NoError(err)
	s.Equal(first.ID, got.TestID)
	s.Equal(alice, got.Subject)

	s.Require().NoError(s.store.Complete(s.ctx, second.ID, s.completion("0123456789ABCDEF")))
	err = s.store.InsertCertificate(s.ctx, s.certificate(second, "0123456789ABCDEF"))
	s.ErrorIs(err, sentinel.ErrConflict, "code collision")

	err = s.store.InsertCertificate(s.ctx, s.certificate(first, "FEDCBA9876543210"))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed, "one certificate per test")

	_, err = s.store.FindCertificateByCode(s.ctx, "FFFFFFFFFFFFFFFF")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *storeContractSuite) TestTransactionIsAllOrNothing() {
	claimed := s.startTest(alice, s.now)
	s.Require().NoError(s.store.Complete(s.ctx, claimed.ID, s.completion("AAAAAAAAAAAAAAAA")))
	s.Require().NoError(s.store.InsertCertificate(s.ctx, s.certificate(claimed, "AAAAAAAAAAAAAAAA")))

	t := s.startTest(alice, s.now)
	err := s.store.RunInTx(s.ctx, t.ID.String(), func(tx Store) error {
		if err := tx.Complete(s.ctx, t.ID, s.completion("AAAAAAAAAAAAAAAA")); err != nil {
			return err
		}
		return tx.InsertCertificate(s.ctx, s.certificate(t, "AAAAAAAAAAAAAAAA"))
	})
	s.ErrorIs(err, sentinel.ErrConflict)

	got, err := s.store.FindByID(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusStarted, got.Status, "completion rolled back with the failed insert")
}

func (s *storeContractSuite) TestConcurrentSubmitsHaveOneWinner() {
	t := s.startTest(alice, s.now)

	const racers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for i := range racers {
		code := fmt.Sprintf("%016X", i+1)
		wg.Go(func() {
			err := s.store.RunInTx(s.ctx, t.ID.String(), func(tx Store) error {
				if err := tx.Complete(s.ctx, t.ID, s.completion(code)); err != nil {
					return err
				}
				return tx.InsertCertificate(s.ctx, s.certificate(t, code))
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, sentinel.ErrInvalidState):
				rejected++
			}
		})
	}
	wg.Wait()

	s.Equal(1, wins)
	s.Equal(racers-1, rejected)
}
