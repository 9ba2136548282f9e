package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"credverify/internal/sentinel"
	"credverify/internal/skilltest/models"
	id "credverify/pkg/domain"
)

// DefaultTxTimeout bounds a PostgreSQL transaction when the caller set no deadline.
const DefaultTxTimeout = 5 * time.Second

// PostgresStore persists tests and certificates in PostgreSQL.
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
		return fmt.Errorf("begin skill test tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	if err := fn(NewPostgresTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit skill test tx: %w", err)
	}
	return nil
}

const testColumns = `id, subject, skill, questions, answers, score, correct_count, passed,
	status, completed_at, certificate_code, created_at`

func (s *PostgresStore) Create(ctx context.Context, t *models.Test) error {
	if t == nil {
		return fmt.Errorf("%w: test is required", sentinel.ErrInvalidInput)
	}
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	status := t.Status
	if status == "" {
		status = models.StatusStarted
	}
	res, err := s.execer().ExecContext(ctx, `
		INSERT INTO skill_tests (id, subject, skill, questions, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, uuid.UUID(t.ID), t.Subject.String(), t.Skill, questions, string(status), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert skill test: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("test %s: %w", t.ID, sentinel.ErrConflict)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTest(row rowScanner) (*models.Test, error) {
	var (
		t           models.Test
		tid         uuid.UUID
		subject     string
		status      string
		questions   []byte
		answers     []byte
		completedAt sql.NullTime
	)
	if err := row.Scan(&tid, &subject, &t.Skill, &questions, &answers, &t.Score, &t.CorrectCount, &t.Passed,
		&status, &completedAt, &t.CertificateCode, &t.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &t.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	t.ID = id.TestID(tid)
	t.Subject = id.SubjectID(subject)
	t.Status = models.Status(status)
	if completedAt.Valid {
		at := completedAt.Time
		t.CompletedAt = &at
	}
	return &t, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, testID id.TestID) (*models.Test, error) {
	t, err := scanTest(s.execer().QueryRowContext(ctx, `SELECT `+testColumns+` FROM skill_tests WHERE id = $1`, uuid.UUID(testID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("test %s: %w", testID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find skill test: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subject id.SubjectID) ([]*models.Test, error) {
	rows, err := s.execer().QueryContext(ctx,
		`SELECT `+testColumns+` FROM skill_tests WHERE subject = $1 ORDER BY created_at DESC`, subject.String())
	if err != nil {
		return nil, fmt.Errorf("list skill tests: %w", err)
	}
	defer rows.Close()

	var out []*models.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan skill test: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skill tests: %w", err)
	}
	return out, nil
}

// Complete transitions started -> completed. The status predicate makes
// concurrent submissions race on the row lock; losers affect zero rows.
func (s *PostgresStore) Complete(ctx context.Context, testID id.TestID, c models.Completion) error {
	answers, err := json.Marshal(c.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	res, err := s.execer().ExecContext(ctx, `
		UPDATE skill_tests
		SET answers = $2, score = $3, correct_count = $4, passed = $5,
		    status = 'completed', completed_at = $6, certificate_code = $7
		WHERE id = $1 AND status = 'started'
	`, uuid.UUID(testID), answers, c.Score, c.CorrectCount, c.Passed, c.CompletedAt, c.CertificateCode)
	if err != nil {
		return fmt.Errorf("complete skill test: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		t, err := s.FindByID(ctx, testID)
		if err != nil {
			return err
		}
		return fmt.Errorf("test %s is %s: %w", testID, t.Status, sentinel.ErrInvalidState)
	}
	return nil
}

const certificateColumns = `id, subject, test_id, skill, score, verification_code, ipfs_hash, token_id, tx_ref, issued_at`

func (s *PostgresStore) InsertCertificate(ctx context.Context, c *models.Certificate) error {
	if c == nil {
		return fmt.Errorf("%w: certificate is required", sentinel.ErrInvalidInput)
	}
	res, err := s.execer().ExecContext(ctx, `
		INSERT INTO certificates (`+certificateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT DO NOTHING
	`, uuid.UUID(c.ID), c.Subject.String(), uuid.UUID(c.TestID), c.Skill, c.Score, c.VerificationCode,
		c.IPFSHash, c.TokenID, c.TxRef, c.IssuedAt)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists bool
	if err := s.execer().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM certificates WHERE test_id = $1)`, uuid.UUID(c.TestID),
	).Scan(&exists); err != nil {
		return fmt.Errorf("check certificate: %w", err)
	}
	if exists {
		return fmt.Errorf("test %s already certified: %w", c.TestID, sentinel.ErrAlreadyUsed)
	}
	return fmt.Errorf("verification code in use: %w", sentinel.ErrConflict)
}

func (s *PostgresStore) FindCertificateByCode(ctx context.Context, code string) (*models.Certificate, error) {
	var (
		c       models.Certificate
		cid     uuid.UUID
		tid     uuid.UUID
		subject string
	)
	err := s.execer().QueryRowContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE verification_code = $1`, code,
	).Scan(&cid, &subject, &tid, &c.Skill, &c.Score, &c.VerificationCode, &c.IPFSHash, &c.TokenID, &c.TxRef, &c.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("certificate %q: %w", code, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	c.ID = id.CertificateID(cid)
	c.TestID = id.TestID(tid)
	c.Subject = id.SubjectID(subject)
	return &c, nil
}

var _ Store = (*PostgresStore)(nil)
