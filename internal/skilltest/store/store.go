// Package store persists skill tests and the certificates they earn.
//
// Error contract:
//   - lookups of unknown ids or codes wrap sentinel.ErrNotFound
//   - Complete on a test that is not started wraps sentinel.ErrInvalidState
//   - InsertCertificate with a verification code already in use wraps
//     sentinel.ErrConflict; a second certificate for a test wraps
//     sentinel.ErrAlreadyUsed
//   - anything else is an infrastructure failure
package store

import (
	"context"

	"credverify/internal/skilltest/models"
	id "credverify/pkg/domain"
)

// Store is implemented by InMemoryStore and PostgresStore.
type Store interface {
	Create(ctx context.Context, t *models.Test) error
	FindByID(ctx context.Context, testID id.TestID) (*models.Test, error)
	ListBySubject(ctx context.Context, subject id.SubjectID) ([]*models.Test, error)
	Complete(ctx context.Context, testID id.TestID, c models.Completion) error

	InsertCertificate(ctx context.Context, c *models.Certificate) error
	FindCertificateByCode(ctx context.Context, code string) (*models.Certificate, error)

	// RunInTx runs fn against a transaction-bound Store. In memory, writers
	// with the same key serialize.
	RunInTx(ctx context.Context, key string, fn func(tx Store) error) error
}
