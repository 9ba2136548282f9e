// Package store persists user profiles and their credential sets.
package store

import (
	"context"
	"time"

	"credverify/internal/user/models"
	id "credverify/pkg/domain"
)

// Store is implemented by InMemoryStore and PostgresStore.
// FindBySubject wraps sentinel.ErrNotFound for unknown subjects; the write
// methods create the user when absent.
type Store interface {
	FindBySubject(ctx context.Context, subject id.SubjectID) (*models.User, error)
	Ensure(ctx context.Context, subject id.SubjectID, at time.Time) error
	UpdateProfile(ctx context.Context, subject id.SubjectID, patch models.ProfilePatch, at time.Time) (*models.User, error)
	AddCredential(ctx context.Context, subject id.SubjectID, tokenID string, at time.Time) error
}
