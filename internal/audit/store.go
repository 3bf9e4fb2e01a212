package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists audit entries in the audit_events table and serves the
// review endpoint. It doubles as the emitter's postgres sink.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store backed by the provided pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Write implements Sink.
func (s *Store) Write(ctx context.Context, e Entry) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("audit: store not initialised")
	}
	meta, err := json.Marshal(map[string]string{
		"requirement": e.Requirement,
		"required":    e.Required,
	})
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO audit_events (occurred_at, role, principal_id, endpoint, outcome, code, meta)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.At, e.Role, e.PrincipalID, e.Endpoint, e.Outcome, e.Code, meta)
	return err
}

// Recent returns the newest entries, capped at limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.pool.Query(ctx,
		`SELECT occurred_at, role, principal_id, endpoint, outcome, code, meta
		 FROM audit_events ORDER BY occurred_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var meta []byte
		if err := rows.Scan(&e.At, &e.Role, &e.PrincipalID, &e.Endpoint, &e.Outcome, &e.Code, &meta); err != nil {
			return nil, err
		}
		var fields map[string]string
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &fields); err == nil {
				e.Requirement = fields["requirement"]
				e.Required = fields["required"]
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Purge deletes entries older than the retention window, returning the
// number removed. Used by the background retention job.
func (s *Store) Purge(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("audit: retention days must be positive")
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM audit_events WHERE occurred_at < NOW() - make_interval(days => $1)`,
		retentionDays)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
