package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"credverify/internal/resume/models"
	"credverify/internal/sentinel"
	id "credverify/pkg/domain"
)

// DefaultTxTimeout bounds a PostgreSQL transaction when the caller set no deadline.
const DefaultTxTimeout = 5 * time.Second

// PostgresStore persists resumes and verifications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx binds a store to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *PostgresStore) RunInTx(ctx context.Context, _ string, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTxTimeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resume tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	if err := fn(NewPostgresTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resume tx: %w", err)
	}
	return nil
}

const resumeColumns = `id, subject, name, email, phone, location, summary, payload,
	verification_status, verification_score, verification_report, ipfs_hash, credential_id,
	version, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, r *models.Resume) error {
	if r == nil {
		return fmt.Errorf("%w: resume is required", sentinel.ErrInvalidInput)
	}
	payload, err := json.Marshal(r.Details)
	if err != nil {
		return fmt.Errorf("encode resume payload: %w", err)
	}
	status := r.VerificationStatus
	if status == "" {
		status = models.StatusPending
	}
	query := `
		INSERT INTO resumes (` + resumeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.execer().ExecContext(ctx, query,
		uuid.UUID(r.ID), r.Subject.String(), r.Name, r.Email, r.Phone, r.Location, r.Summary, payload,
		string(status), r.VerificationScore, r.VerificationReport, r.IPFSHash, r.CredentialID,
		r.Version, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resume: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resume %s: %w", r.ID, sentinel.ErrConflict)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (*models.Resume, error) {
	var (
		r       models.Resume
		rid     uuid.UUID
		subject string
		status  string
		score   sql.NullInt32
		payload []byte
	)
	if err := row.Scan(&rid, &subject, &r.Name, &r.Email, &r.Phone, &r.Location, &r.Summary, &payload,
		&status, &score, &r.VerificationReport, &r.IPFSHash, &r.CredentialID,
		&r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &r.Details); err != nil {
		return nil, fmt.Errorf("decode resume payload: %w", err)
	}
	r.ID = id.ResumeID(rid)
	r.Subject = id.SubjectID(subject)
	r.VerificationStatus = models.Status(status)
	if score.Valid {
		v := int(score.Int32)
		r.VerificationScore = &v
	}
	return &r, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, resumeID id.ResumeID) (*models.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	r, err := scanResume(s.execer().QueryRowContext(ctx, query, uuid.UUID(resumeID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resume %s: %w", resumeID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find resume: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subject id.SubjectID) ([]*models.Resume, error) {
	return s.listResumes(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE subject = $1 ORDER BY created_at DESC`, subject)
}

func (s *PostgresStore) ListWithCredential(ctx context.Context, subject id.SubjectID) ([]*models.Resume, error) {
	return s.listResumes(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE subject = $1 AND credential_id <> '' ORDER BY created_at DESC`, subject)
}

func (s *PostgresStore) listResumes(ctx context.Context, query string, subject id.SubjectID) ([]*models.Resume, error) {
	rows, err := s.execer().QueryContext(ctx, query, subject.String())
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	var out []*models.Resume
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resume: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resumes: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateDerived(ctx context.Context, resumeID id.ResumeID, u models.DerivedUpdate) (int, error) {
	query := `
		UPDATE resumes
		SET verification_status = $2, verification_score = $3, verification_report = $4,
		    ipfs_hash = $5, version = version + 1, updated_at = $6
		WHERE id = $1 AND ($7::int < 0 OR version = $7)
		RETURNING version
	`
	var version int
	err := s.execer().QueryRowContext(ctx, query,
		uuid.UUID(resumeID), string(u.Status), u.Score, u.Report, u.IPFSHash, u.UpdatedAt, u.ExpectedVersion,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, findErr := s.FindByID(ctx, resumeID); findErr != nil {
			return 0, findErr
		}
		return 0, fmt.Errorf("resume %s changed since read: %w", resumeID, sentinel.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("update resume derived fields: %w", err)
	}
	return version, nil
}

func (s *PostgresStore) SetCredential(ctx context.Context, resumeID id.ResumeID, tokenID string, at time.Time) error {
	query := `
		UPDATE resumes
		SET credential_id = $2, version = version + 1, updated_at = $3
		WHERE id = $1 AND credential_id = ''
	`
	res, err := s.execer().ExecContext(ctx, query, uuid.UUID(resumeID), tokenID, at)
	if err != nil {
		return fmt.Errorf("set resume credential: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	current, err := s.FindByID(ctx, resumeID)
	if err != nil {
		return err
	}
	if current.CredentialID == tokenID {
		return nil
	}
	return fmt.Errorf("resume %s bound to token %s: %w", resumeID, current.CredentialID, sentinel.ErrAlreadyUsed)
}

func (s *PostgresStore) InsertVerification(ctx context.Context, v *models.Verification) error {
	if v == nil {
		return fmt.Errorf("%w: verification is required", sentinel.ErrInvalidInput)
	}
	analysis, err := json.Marshal(v.Analysis)
	if err != nil {
		return fmt.Errorf("encode verification analysis: %w", err)
	}
	query := `
		INSERT INTO verifications (id, resume_id, subject, score, analysis, ipfs_hash, token_id, tx_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.execer().ExecContext(ctx, query,
		uuid.UUID(v.ID), uuid.UUID(v.ResumeID), v.Subject.String(), v.Score, analysis,
		v.IPFSHash, v.TokenID, v.TxRef, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

const verificationColumns = `id, resume_id, subject, score, analysis, ipfs_hash, token_id, tx_ref, created_at`

func scanVerification(row rowScanner) (*models.Verification, error) {
	var (
		v        models.Verification
		vid, rid uuid.UUID
		subject  string
		analysis []byte
	)
	if err := row.Scan(&vid, &rid, &subject, &v.Score, &analysis, &v.IPFSHash, &v.TokenID, &v.TxRef, &v.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(analysis, &v.Analysis); err != nil {
		return nil, fmt.Errorf("decode verification analysis: %w", err)
	}
	v.ID = id.VerificationID(vid)
	v.ResumeID = id.ResumeID(rid)
	v.Subject = id.SubjectID(subject)
	return &v, nil
}

func (s *PostgresStore) LatestVerification(ctx context.Context, resumeID id.ResumeID) (*models.Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM verifications WHERE resume_id = $1 ORDER BY created_at DESC LIMIT 1`
	v, err := scanVerification(s.execer().QueryRowContext(ctx, query, uuid.UUID(resumeID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification for resume %s: %w", resumeID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find latest verification: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) SetVerificationToken(ctx context.Context, verificationID id.VerificationID, tokenID, txRef string) error {
	query := `
		UPDATE verifications SET token_id = $2, tx_ref = $3
		WHERE id = $1 AND token_id = ''
	`
	res, err := s.execer().ExecContext(ctx, query, uuid.UUID(verificationID), tokenID, txRef)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var current string
	err = s.execer().QueryRowContext(ctx, `SELECT token_id FROM verifications WHERE id = $1`, uuid.UUID(verificationID)).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("verification %s: %w", verificationID, sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read verification token: %w", err)
	}
	if current == tokenID {
		return nil
	}
	return fmt.Errorf("verification %s bound to token %s: %w", verificationID, current, sentinel.ErrAlreadyUsed)
}

var _ Store = (*PostgresStore)(nil)
