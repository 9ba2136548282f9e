package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"credverify/internal/sentinel"
	"credverify/internal/user/models"
	id "credverify/pkg/domain"
)

// PostgresStore persists users in PostgreSQL. credential_ids is a TEXT[]
// maintained with array_append guarded by ANY(), so adds are idempotent.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `subject, name, email, bio, avatar_url, is_employer, array_to_json(credential_ids)::text, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u       models.User
		subject string
		creds   string
	)
	if err := row.Scan(&subject, &u.Name, &u.Email, &u.Bio, &u.AvatarURL, &u.IsEmployer, &creds, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Subject = id.SubjectID(subject)
	ids, err := decodeTextArray(creds)
	if err != nil {
		return nil, err
	}
	u.CredentialIDs = ids
	return &u, nil
}

func (s *PostgresStore) FindBySubject(ctx context.Context, subject id.SubjectID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE subject = $1`, subject.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", subject, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) Ensure(ctx context.Context, subject id.SubjectID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (subject, created_at, updated_at) VALUES ($1, $2, $2)
		ON CONFLICT (subject) DO NOTHING
	`, subject.String(), at)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, subject id.SubjectID, patch models.ProfilePatch, at time.Time) (*models.User, error) {
	query := `
		INSERT INTO users (subject, name, email, bio, avatar_url, is_employer, created_at, updated_at)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''), COALESCE($6, FALSE), $7, $7)
		ON CONFLICT (subject) DO UPDATE SET
			name        = COALESCE($2, users.name),
			email       = COALESCE($3, users.email),
			bio         = COALESCE($4, users.bio),
			avatar_url  = COALESCE($5, users.avatar_url),
			is_employer = COALESCE($6, users.is_employer),
			updated_at  = $7
		RETURNING ` + userColumns
	u, err := scanUser(s.db.QueryRowContext(ctx, query,
		subject.String(), patch.Name, patch.Email, patch.Bio, patch.AvatarURL, patch.IsEmployer, at,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) AddCredential(ctx context.Context, subject id.SubjectID, tokenID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (subject, credential_ids, created_at, updated_at)
		VALUES ($1, ARRAY[$2::text], $3, $3)
		ON CONFLICT (subject) DO UPDATE SET
			credential_ids = CASE WHEN $2::text = ANY(users.credential_ids)
				THEN users.credential_ids
				ELSE array_append(users.credential_ids, $2::text) END,
			updated_at = CASE WHEN $2::text = ANY(users.credential_ids) THEN users.updated_at ELSE $3 END
	`, subject.String(), tokenID, at)
	if err != nil {
		return fmt.Errorf("add user credential: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
