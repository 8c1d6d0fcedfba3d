package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresRepository stores credential records in the subjects table.
type PostgresRepository struct {
	db     *sql.DB
	hasher PasswordChecker
}

// NewPostgresRepository returns a credential repository over the subjects table.
func NewPostgresRepository(db *sql.DB, hasher PasswordChecker) *PostgresRepository {
	return &PostgresRepository{db: db, hasher: hasher}
}

// Verify looks up email and compares secret. Unknown emails spend the same bcrypt work.
func (r *PostgresRepository) Verify(ctx context.Context, email, secret string) (*domain.Principal, error) {
	email = domain.NormalizeEmail(email)
	var (
		p    domain.Principal
		role string
		hash string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, role, email, password_hash FROM subjects WHERE email = $1`, email,
	).Scan(&p.SubjectID, &role, &p.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		_ = r.hasher.CompareMissing([]byte(secret))
		return nil, ErrRejected
	}
	if err != nil {
		return nil, err
	}
	if err := r.hasher.Compare(hash, []byte(secret)); err != nil {
		return nil, ErrRejected
	}
	p.Role = domain.Role(role)
	return &p, nil
}

// Exists reports whether key is already taken.
func (r *PostgresRepository) Exists(ctx context.Context, key domain.UniqueKey) (bool, error) {
	var q string
	switch key.Field {
	case domain.FieldEmail:
		q = `SELECT EXISTS (SELECT 1 FROM subjects WHERE email = $1)`
	case domain.FieldCURP:
		q = `SELECT EXISTS (SELECT 1 FROM subjects WHERE curp = $1)`
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownField, key.Field)
	}
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, key.Value).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Create inserts rec. A unique violation on email or curp returns ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, rec *domain.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	curp := sql.NullString{String: rec.CURP, Valid: rec.CURP != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subjects (id, role, first_name, last_name, email, curp, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, string(rec.Role), rec.FirstName, rec.LastName, rec.Email, curp, rec.PasswordHash, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		}
		return "", err
	}
	return rec.ID, nil
}
