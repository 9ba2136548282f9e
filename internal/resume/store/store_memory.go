package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"credverify/internal/resume/models"
	"credverify/internal/sentinel"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/memtx"
)

type state struct {
	resumes       map[id.ResumeID]*models.Resume
	verifications []*models.Verification
}

type op = memtx.Op[state]

// InMemoryStore keeps resumes and verifications in process.
type InMemoryStore struct {
	db *memtx.DB[state]
	tx *memtx.Tx[state]
}

func NewInMemoryStore(opts ...memtx.Option) *InMemoryStore {
	return &InMemoryStore{db: memtx.New(state{resumes: make(map[id.ResumeID]*models.Resume)}, opts...)}
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

func (s *InMemoryStore) Create(_ context.Context, r *models.Resume) error {
	if r == nil {
		return fmt.Errorf("%w: resume is required", sentinel.ErrInvalidInput)
	}
	cp := r.Clone()
	return s.write(op{
		Check: func(st *state) error {
			if _, exists := st.resumes[cp.ID]; exists {
				return fmt.Errorf("resume %s: %w", cp.ID, sentinel.ErrConflict)
			}
			return nil
		},
		Apply: func(st *state) { st.resumes[cp.ID] = cp },
	})
}

func (s *InMemoryStore) FindByID(_ context.Context, resumeID id.ResumeID) (*models.Resume, error) {
	var out *models.Resume
	err := s.view(func(st *state) error {
		r, ok := st.resumes[resumeID]
		if !ok {
			return fmt.Errorf("resume %s: %w", resumeID, sentinel.ErrNotFound)
		}
		out = r.Clone()
		return nil
	})
	return out, err
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subject id.SubjectID) ([]*models.Resume, error) {
	return s.list(subject, func(*models.Resume) bool { return true })
}

func (s *InMemoryStore) ListWithCredential(_ context.Context, subject id.SubjectID) ([]*models.Resume, error) {
	return s.list(subject, func(r *models.Resume) bool { return r.CredentialID != "" })
}

func (s *InMemoryStore) list(subject id.SubjectID, keep func(*models.Resume) bool) ([]*models.Resume, error) {
	var out []*models.Resume
	_ = s.view(func(st *state) error {
		for _, r := range st.resumes {
			if r.Subject == subject && keep(r) {
				out = append(out, r.Clone())
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) UpdateDerived(_ context.Context, resumeID id.ResumeID, u models.DerivedUpdate) (int, error) {
	var version int
	err := s.write(op{
		Check: func(st *state) error {
			r, ok := st.resumes[resumeID]
			if !ok {
				return fmt.Errorf("resume %s: %w", resumeID, sentinel.ErrNotFound)
			}
			if u.ExpectedVersion >= 0 && r.Version != u.ExpectedVersion {
				return fmt.Errorf("resume %s at version %d, expected %d: %w", resumeID, r.Version, u.ExpectedVersion, sentinel.ErrConflict)
			}
			version = r.Version + 1
			return nil
		},
		Apply: func(st *state) {
			r := st.resumes[resumeID]
			score := u.Score
			r.VerificationStatus = u.Status
			r.VerificationScore = &score
			r.VerificationReport = u.Report
			r.IPFSHash = u.IPFSHash
			r.Version++
			r.UpdatedAt = u.UpdatedAt
			version = r.Version
		},
	})
	return version, err
}

func (s *InMemoryStore) SetCredential(_ context.Context, resumeID id.ResumeID, tokenID string, at time.Time) error {
	changed := false
	return s.write(op{
		Check: func(st *state) error {
			r, ok := st.resumes[resumeID]
			if !ok {
				return fmt.Errorf("resume %s: %w", resumeID, sentinel.ErrNotFound)
			}
			switch r.CredentialID {
			case "":
				changed = true
			case tokenID:
				changed = false
			default:
				return fmt.Errorf("resume %s bound to token %s: %w", resumeID, r.CredentialID, sentinel.ErrAlreadyUsed)
			}
			return nil
		},
		Apply: func(st *state) {
			if !changed {
				return
			}
			r := st.resumes[resumeID]
			r.CredentialID = tokenID
			r.Version++
			r.UpdatedAt = at
		},
	})
}

func (s *InMemoryStore) InsertVerification(_ context.Context, v *models.Verification) error {
	if v == nil {
		return fmt.Errorf("%w: verification is required", sentinel.ErrInvalidInput)
	}
	cp := v.Clone()
	return s.write(op{
		Check: func(st *state) error {
			if _, ok := st.resumes[cp.ResumeID]; !ok {
				return fmt.Errorf("resume %s: %w", cp.ResumeID, sentinel.ErrNotFound)
			}
			return nil
		},
		Apply: func(st *state) { st.verifications = append(st.verifications, cp) },
	})
}

func (s *InMemoryStore) LatestVerification(_ context.Context, resumeID id.ResumeID) (*models.Verification, error) {
	var out *models.Verification
	err := s.view(func(st *state) error {
		var latest *models.Verification
		for _, v := range st.verifications {
			if v.ResumeID == resumeID && (latest == nil || !v.CreatedAt.Before(latest.CreatedAt)) {
				latest = v
			}
		}
		if latest == nil {
			return fmt.Errorf("verification for resume %s: %w", resumeID, sentinel.ErrNotFound)
		}
		out = latest.Clone()
		return nil
	})
	return out, err
}

func (s *InMemoryStore) SetVerificationToken(_ context.Context, verificationID id.VerificationID, tokenID, txRef string) error {
	var target *models.Verification
	return s.write(op{
		Check: func(st *state) error {
			target = nil
			for _, v := range st.verifications {
				if v.ID == verificationID {
					target = v
					break
				}
			}
			if target == nil {
				return fmt.Errorf("verification %s: %w", verificationID, sentinel.ErrNotFound)
			}
			if target.TokenID != "" && target.TokenID != tokenID {
				return fmt.Errorf("verification %s bound to token %s: %w", verificationID, target.TokenID, sentinel.ErrAlreadyUsed)
			}
			return nil
		},
		Apply: func(*state) {
			if target.TokenID == "" {
				target.TokenID = tokenID
				target.TxRef = txRef
			}
		},
	})
}

var _ Store = (*InMemoryStore)(nil)
