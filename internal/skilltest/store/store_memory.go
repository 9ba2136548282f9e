package store

import (
	"context"
	"fmt"
	"sort"

	"credverify/internal/sentinel"
	"credverify/internal/skilltest/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/memtx"
)

type state struct {
	tests        map[id.TestID]*models.Test
	certificates map[string]*models.Certificate
	certByTest   map[id.TestID]string
}

type op = memtx.Op[state]

// InMemoryStore keeps tests and certificates in process.
type InMemoryStore struct {
	db *memtx.DB[state]
	tx *memtx.Tx[state]
}

func NewInMemoryStore(opts ...memtx.Option) *InMemoryStore {
	return &InMemoryStore{db: memtx.New(state{
		tests:        make(map[id.TestID]*models.Test),
		certificates: make(map[string]*models.Certificate),
		certByTest:   make(map[id.TestID]string),
	}, opts...)}
}

func (s *InMemoryStore) view(fn func(*state) error) error {
	if s.tx != nil {
		return s.tx.View(fn)
	}
	return s.db.View(fn)
}

func (s *InMemoryStore) write(o op) error {
	if s.tx != nil {
		return s.tx.Stage(o)
	}
	return s.db.Update(o)
}

func (s *InMemoryStore) RunInTx(ctx context.Context, key string, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	return s.db.RunInTx(ctx, key, func(tx *memtx.Tx[state]) error {
		return fn(&InMemoryStore{db: s.db, tx: tx})
	})
}

func (s *InMemoryStore) Create(_ context.Context, t *models.Test) error {
	if t == nil {
		return fmt.Errorf("%w: test is required", sentinel.ErrInvalidInput)
	}
	cp := t.Clone()
	return s.write(op{
		Check: func(st *state) error {
			if _, exists := st.tests[cp.ID]; exists {
				return fmt.Errorf("test %s: %w", cp.ID, sentinel.ErrConflict)
			}
			return nil
		},
		Apply: func(st *state) { st.tests[cp.ID] = cp },
	})
}

func (s *InMemoryStore) FindByID(_ context.Context, testID id.TestID) (*models.Test, error) {
	var out *models.Test
	err := s.view(func(st *state) error {
		t, ok := st.tests[testID]
		if !ok {
			return fmt.Errorf("test %s: %w", testID, sentinel.ErrNotFound)
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subject id.SubjectID) ([]*models.Test, error) {
	var out []*models.Test
	err := s.view(func(st *state) error {
		for _, t := range st.tests {
			if t.Subject.Owns(subject) {
				out = append(out, t.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (s *InMemoryStore) Complete(_ context.Context, testID id.TestID, c models.Completion) error {
	answers := append([]int{}, c.Answers...)
	return s.write(op{
		Check: func(st *state) error {
			t, ok := st.tests[testID]
			if !ok {
				return fmt.Errorf("test %s: %w", testID, sentinel.ErrNotFound)
			}
			if t.Status != models.StatusStarted {
				return fmt.Errorf("test %s is %s: %w", testID, t.Status, sentinel.ErrInvalidState)
			}
			return nil
		},
		Apply: func(st *state) {
			t := st.tests[testID]
			at := c.CompletedAt
			t.Answers = answers
			t.Score = c.Score
			t.CorrectCount = c.CorrectCount
			t.Passed = c.Passed
			t.Status = models.StatusCompleted
			t.CompletedAt = &at
			t.CertificateCode = c.CertificateCode
		},
	})
}

func (s *InMemoryStore) InsertCertificate(_ context.Context, c *models.Certificate) error {
	if c == nil {
		return fmt.Errorf("%w: certificate is required", sentinel.ErrInvalidInput)
	}
	cp := c.Clone()
	return s.write(op{
		Check: func(st *state) error {
			if _, taken := st.certificates[cp.VerificationCode]; taken {
				return fmt.Errorf("verification code in use: %w", sentinel.ErrConflict)
			}
			if _, issued := st.certByTest[cp.TestID]; issued {
				return fmt.Errorf("test %s already certified: %w", cp.TestID, sentinel.ErrAlreadyUsed)
			}
			return nil
		},
		Apply: func(st *state) {
			st.certificates[cp.VerificationCode] = cp
			st.certByTest[cp.TestID] = cp.VerificationCode
		},
	})
}

func (s *InMemoryStore) FindCertificateByCode(_ context.Context, code string) (*models.Certificate, error) {
	var out *models.Certificate
	err := s.view(func(st *state) error {
		c, ok := st.certificates[code]
		if !ok {
			return fmt.Errorf("certificate %q: %w", code, sentinel.ErrNotFound)
		}
		out = c.Clone()
		return nil
	})
	return out, err
}

var _ Store = (*InMemoryStore)(nil)
