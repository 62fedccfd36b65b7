// Package postgres provides a durable hybrid.Store backed by PostgreSQL.
// Each session is stored as a single JSONB row; Update runs inside a
// transaction with a row lock so mutating operations on the same session are
// serialized across processes.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sensoryx/medagent/core"
	"github.com/sensoryx/medagent/hybrid"
)

const schema = `
CREATE TABLE IF NOT EXISTS hybrid_sessions (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// Store implements hybrid.Store on database/sql with the pq driver.
type Store struct {
	db *sql.DB
}

var _ hybrid.Store = (*Store)(nil)

// New prepares the session table and returns the store.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensure sessions table: %w", err)
	}
	return &Store{db: db}, nil
}

// Create inserts the session, replacing any existing row with the same id.
func (s *Store) Create(ctx context.Context, sess *core.HybridSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO hybrid_sessions (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = $4`,
		sess.ID, data, sess.CreatedAt, sess.UpdatedAt)
	return err
}

// Get loads a session snapshot.
func (s *Store) Get(ctx context.Context, id string) (*core.HybridSession, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM hybrid_sessions WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return unmarshalSession(data)
}

// Update applies fn to the session while holding its row lock. When fn
// returns an error the transaction is rolled back and the session is left
// unchanged.
func (s *Store) Update(ctx context.Context, id string, fn func(sess *core.HybridSession) error) (*core.HybridSession, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	var data []byte
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM hybrid_sessions WHERE id = $1 FOR UPDATE`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	sess, err := unmarshalSession(data)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now()

	updated, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE hybrid_sessions SET data = $2, updated_at = $3 WHERE id = $1`,
		id, updated, sess.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Expire deletes sessions not updated since olderThan.
func (s *Store) Expire(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM hybrid_sessions WHERE updated_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func unmarshalSession(data []byte) (*core.HybridSession, error) {
	var sess core.HybridSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}
