package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"credverify/internal/sentinel"
	"credverify/internal/user/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/strings"
)

// InMemoryStore keeps users in a map guarded by a RWMutex.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[id.SubjectID]*models.User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[id.SubjectID]*models.User)}
}

func (s *InMemoryStore) FindBySubject(_ context.Context, subject id.SubjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[subject]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", subject, sentinel.ErrNotFound)
	}
	return u.Clone(), nil
}

// ensureLocked returns the user for subject, creating it. Callers hold s.mu.
func (s *InMemoryStore) ensureLocked(subject id.SubjectID, at time.Time) *models.User {
	u, ok := s.users[subject]
	if !ok {
		u = &models.User{Subject: subject, CredentialIDs: []string{}, CreatedAt: at, UpdatedAt: at}
		s.users[subject] = u
	}
	return u
}

func (s *InMemoryStore) Ensure(_ context.Context, subject id.SubjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked(subject, at)
	return nil
}

func (s *InMemoryStore) UpdateProfile(_ context.Context, subject id.SubjectID, patch models.ProfilePatch, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(subject, at)
	u.Profile = patch.Apply(u.Profile)
	u.UpdatedAt = at
	return u.Clone(), nil
}

func (s *InMemoryStore) AddCredential(_ context.Context, subject id.SubjectID, tokenID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(subject, at)
	before := len(u.CredentialIDs)
	u.CredentialIDs = strings.Union(u.CredentialIDs, tokenID)
	if len(u.CredentialIDs) != before {
		u.UpdatedAt = at
	}
	return nil
}

var _ Store = (*InMemoryStore)(nil)
