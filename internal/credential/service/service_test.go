package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"credverify/internal/audit"
	"credverify/internal/credential/service/mocks"
	"credverify/internal/ledger"
	"credverify/internal/resume/models"
	"credverify/internal/resume/store"
	"credverify/internal/sentinel"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

const (
	alice = id.SubjectID("0x52908400098527886e0f7030069857d2e4169ee7")
	bob   = id.SubjectID("0x8ba1f109551bd432803012645ac136ddd64dba72")
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type BinderSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	users        *mocks.MockUserCredentials
	ledger       *mocks.MockLedgerReader
	store        *store.InMemoryStore
	audit        *audit.InMemoryStore
	binder       *Binder
	ctx          context.Context
	resumeID     id.ResumeID
	verification id.VerificationID
}

func TestBinderSuite(t *testing.T) {
	suite.Run(t, new(BinderSuite))
}

func (s *BinderSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserCredentials(s.ctrl)
	s.ledger = mocks.NewMockLedgerReader(s.ctrl)
	s.store = store.NewInMemoryStore()
	s.audit = audit.NewInMemoryStore()
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.binder = s.newBinder()
	s.resumeID, s.verification = s.seed(alice, 80)
}

func (s *BinderSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BinderSuite) newBinder(opts ...Option) *Binder {
	base := []Option{
		WithAuditor(audit.NewPublisher(s.audit)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewBinder(s.store, s.users, append(base, opts...)...)
}

// seed stores a resume with one verification at the given score.
func (s *BinderSuite) seed(subject id.SubjectID, score int) (id.ResumeID, id.VerificationID) {
	r := &models.Resume{
		ID:                 id.NewResumeID(),
		Subject:            subject,
		Name:               "Ada",
		VerificationStatus: models.StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.Require().NoError(s.store.Create(s.ctx, r))
	v := &models.Verification{ID: id.NewVerificationID(), ResumeID: r.ID, Subject: subject, Score: score, IPFSHash: "Qm", CreatedAt: now}
	s.Require().NoError(s.store.InsertVerification(s.ctx, v))
	_, err := s.store.UpdateDerived(s.ctx, r.ID, models.DerivedUpdate{
		Status:          models.StatusForScore(score),
		Score:           score,
		IPFSHash:        "Qm",
		ExpectedVersion: models.NoVersionCheck,
		UpdatedAt:       now,
	})
	s.Require().NoError(err)
	return r.ID, v.ID
}

func (s *BinderSuite) bind(token string) (*BindResult, error) {
	return s.binder.BindCredential(s.ctx, BindRequest{ResumeID: s.resumeID, Subject: alice, TokenID: token, TxRef: "0xabc"})
}

func (s *BinderSuite) TestBindSetsResumeVerificationAndUser() {
	s.users.EXPECT().AddCredential(gomock.Any(), alice, "17").Return(nil)

	res, err := s.bind(" 17 ")
	s.Require().NoError(err)
	s.Equal("17", res.TokenID)
	s.Equal(s.verification, res.VerificationID)
	s.False(res.Unchanged)

	r, err := s.store.FindByID(s.ctx, s.resumeID)
	s.Require().NoError(err)
	s.Equal("17", r.CredentialID)
	v, err := s.store.LatestVerification(s.ctx, s.resumeID)
	s.Require().NoError(err)
	s.Equal("17", v.TokenID)
	s.Equal("0xabc", v.TxRef)

	events, err := s.audit.ListBySubject(s.ctx, alice.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.EventCredentialBound.String(), events[0].Action)
}

func (s *BinderSuite) TestRebindSameTokenIsNoop() {
	s.users.EXPECT().AddCredential(gomock.Any(), alice, "17").Return(nil).Times(2)

	_, err := s.bind("17")
	s.Require().NoError(err)
	before, err := s.store.FindByID(s.ctx, s.resumeID)
	s.Require().NoError(err)

	res, err := s.bind("17")
	s.Require().NoError(err)
	s.True(res.Unchanged)

	after, err := s.store.FindByID(s.ctx, s.resumeID)
	s.Require().NoError(err)
	s.Equal(before.Version, after.Version)
	events, err := s.audit.ListBySubject(s.ctx, alice.String())
	s.Require().NoError(err)
	s.Len(events, 1, "no second audit event for an unchanged bind")
}

func (s *BinderSuite) TestDifferentTokenIsAlreadyBound() {
	s.users.EXPECT().AddCredential(gomock.Any(), alice, "17").Return(nil)
	_, err := s.bind("17")
	s.Require().NoError(err)

	_, err = s.bind("18")
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyBound))

	r, err := s.store.FindByID(s.ctx, s.resumeID)
	s.Require().NoError(err)
	s.Equal("17", r.CredentialID)
}

// rerunStore commits a fresh verification just before each transaction starts,
// as a verification run finishing between the binder's reads and its write would.
type rerunStore struct {
	*store.InMemoryStore
	next *models.Verification
}

func (r *rerunStore) RunInTx(ctx context.Context, key string, fn func(tx store.Store) error) error {
	if r.next != nil {
		if err := r.InMemoryStore.InsertVerification(ctx, r.next); err != nil {
			return err
		}
		r.next = nil
	}
	return r.InMemoryStore.RunInTx(ctx, key, fn)
}

func (s *BinderSuite) TestBindTargetsVerificationCurrentAtWrite() {
	newer := &models.Verification{
		ID: id.NewVerificationID(), ResumeID: s.resumeID, Subject: alice,
		Score: 85, IPFSHash: "QmNewer", CreatedAt: now.Add(time.Minute),
	}
	st := &rerunStore{InMemoryStore: s.store, next: newer}
	binder := NewBinder(st, s.users, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.users.EXPECT().AddCredential(gomock.Any(), alice, "17").Return(nil)

	res, err := binder.BindCredential(s.ctx, BindRequest{ResumeID: s.resumeID, Subject: alice, TokenID: "17", TxRef: "0xabc"})
	s.Require().NoError(err)
	s.Equal(newer.ID, res.VerificationID)

	latest, err := s.store.LatestVerification(s.ctx, s.resumeID)
	s.Require().NoError(err)
	s.Equal(newer.ID, latest.ID)
	s.Equal("17", latest.TokenID)
	s.Equal("0xabc", latest.TxRef)
}

func (s *BinderSuite) TestPreconditions() {
	s.Run("blank token", func() {
		_, err := s.bind("   ")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
	s.Run("unknown resume", func() {
		_, err := s.binder.BindCredential(s.ctx, BindRequest{ResumeID: id.NewResumeID(), Subject: alice, TokenID: "1"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("foreign wallet", func() {
		_, err := s.binder.BindCredential(s.ctx, BindRequest{ResumeID: s.resumeID, Subject: bob, TokenID: "1"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("rejected resume", func() {
		rejected, _ := s.seed(alice, 40)
		_, err := s.binder.BindCredential(s.ctx, BindRequest{ResumeID: rejected, Subject: alice, TokenID: "1"})
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})
}

func (s *BinderSuite) TestUserStoreFailureIsRetryable() {
	s.users.EXPECT().AddCredential(gomock.Any(), alice, "17").Return(errors.New("db down"))
	_, err := s.bind("17")
	s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
	s.True(dErrors.IsRetryable(err))

	s.users.EXPECT().AddCredential(gomock.Any(), alice, "17").Return(nil)
	res, err := s.bind("17")
	s.Require().NoError(err, "retry converges")
	s.True(res.Unchanged)
}

func (s *BinderSuite) TestLedgerCheck() {
	binder := s.newBinder(WithLedger(s.ledger))
	req := BindRequest{ResumeID: s.resumeID, Subject: alice, TokenID: "17"}

	s.Run("missing token", func() {
		s.ledger.EXPECT().Get(gomock.Any(), "17").Return(nil, fmt.Errorf("token 17: %w", sentinel.ErrNotFound))
		_, err := binder.BindCredential(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})
	s.Run("revoked token", func() {
		s.ledger.EXPECT().Get(gomock.Any(), "17").Return(&ledger.Record{TokenID: "17", Owner: alice, Active: false}, nil)
		_, err := binder.BindCredential(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})
	s.Run("token owned elsewhere", func() {
		s.ledger.EXPECT().Get(gomock.Any(), "17").Return(&ledger.Record{TokenID: "17", Owner: bob, Active: true}, nil)
		_, err := binder.BindCredential(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodePreconditionFailed))
	})
	s.Run("ledger down", func() {
		s.ledger.EXPECT().Get(gomock.Any(), "17").Return(nil, fmt.Errorf("rpc: %w", sentinel.ErrUnavailable))
		_, err := binder.BindCredential(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeStorageUnavailable))
	})
	s.Run("valid token", func() {
		s.ledger.EXPECT().Get(gomock.Any(), "17").Return(&ledger.Record{TokenID: "17", Owner: alice, Active: true}, nil)
		s.users.EXPECT().AddCredential(gomock.Any(), alice, "17").Return(nil)
		_, err := binder.BindCredential(s.ctx, req)
		s.Require().NoError(err)
	})

	r, err := s.store.FindByID(s.ctx, s.resumeID)
	s.Require().NoError(err)
	s.Equal("17", r.CredentialID)
}

func (s *BinderSuite) TestConcurrentBindsHaveOneWinner() {
	s.users.EXPECT().AddCredential(gomock.Any(), alice, gomock.Any()).Return(nil).AnyTimes()

	const racers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		bound   int
	)
	for i := range racers {
		token := fmt.Sprintf("%d", 100+i)
		wg.Go(func() {
			_, err := s.bind(token)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, token)
			case dErrors.HasCode(err, dErrors.CodeAlreadyBound):
				bound++
			}
		})
	}
	wg.Wait()

	s.Require().Len(winners, 1)
	s.Equal(racers-1, bound)
	r, err := s.store.FindByID(s.ctx, s.resumeID)
	s.Require().NoError(err)
	s.Equal(winners[0], r.CredentialID)
	v, err := s.store.LatestVerification(s.ctx, s.resumeID)
	s.Require().NoError(err)
	s.Equal(winners[0], v.TokenID)
}

func (s *BinderSuite) TestListCredentials() {
	s.users.EXPECT().AddCredential(gomock.Any(), alice, "17").Return(nil)
	_, err := s.bind("17")
	s.Require().NoError(err)
	s.seed(alice, 90)

	list, err := s.binder.ListCredentials(s.ctx, alice)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(s.resumeID, list[0].ID)
}
