package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a security event repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the event. The event must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.SecurityEvent) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("audit: encode metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO security_events (id, event_type, subject_id, origin_ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, string(e.Type), nullString(e.SubjectID), e.OriginIP, meta, e.Timestamp)
	return err
}

// List returns events newest first, filtered by f.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*domain.SecurityEvent, error) {
	var (
		where []string
		args  []any
	)
	if f.SubjectID != "" {
		args = append(args, f.SubjectID)
		where = append(where, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		where = append(where, fmt.Sprintf("event_type = $%d", len(args)))
	}
	q := `SELECT id, event_type, subject_id, origin_ip, metadata, created_at FROM security_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, clampLimit(f.Limit), max(f.Offset, 0))
	q += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.SecurityEvent
	for rows.Next() {
		var (
			e       domain.SecurityEvent
			typ     string
			subject sql.NullString
			meta    []byte
		)
		if err := rows.Scan(&e.ID, &typ, &subject, &e.OriginIP, &meta, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Type = domain.EventType(typ)
		e.SubjectID = subject.String
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("audit: decode metadata for %s: %w", e.ID, err)
			}
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
