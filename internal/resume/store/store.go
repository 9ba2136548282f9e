// Package store persists resumes and their verifications.
//
// Error contract:
//   - lookups of unknown ids wrap sentinel.ErrNotFound
//   - UpdateDerived with a stale ExpectedVersion wraps sentinel.ErrConflict
//   - SetCredential and SetVerificationToken on a record bound to a different
//     token wrap sentinel.ErrAlreadyUsed; the same token is a no-op
//   - anything else is an infrastructure failure
package store

import (
	"context"
	"time"

	"credverify/internal/resume/models"
	id "credverify/pkg/domain"
)

// Store is implemented by InMemoryStore and PostgresStore.
type Store interface {
	Create(ctx context.Context, r *models.Resume) error
	FindByID(ctx context.Context, resumeID id.ResumeID) (*models.Resume, error)
	ListBySubject(ctx context.Context, subject id.SubjectID) ([]*models.Resume, error)
	ListWithCredential(ctx context.Context, subject id.SubjectID) ([]*models.Resume, error)
	UpdateDerived(ctx context.Context, resumeID id.ResumeID, u models.DerivedUpdate) (version int, err error)
	SetCredential(ctx context.Context, resumeID id.ResumeID, tokenID string, at time.Time) error

	InsertVerification(ctx context.Context, v *models.Verification) error
	LatestVerification(ctx context.Context, resumeID id.ResumeID) (*models.Verification, error)
	SetVerificationToken(ctx context.Context, verificationID id.VerificationID, tokenID, txRef string) error

	// RunInTx runs fn against a transaction-bound Store. key names the record
	// the transaction is about; in-memory writers on the same key serialize.
	RunInTx(ctx context.Context, key string, fn func(tx Store) error) error
}
