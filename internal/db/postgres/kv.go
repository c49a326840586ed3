package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/snapstyle/snapstyle/internal/db"
)

// KV operations back session persistence with a small upsert table.
// Expiry is enforced on read; a periodic sweep is left to the database
// (pg_cron or equivalent).

// Get retrieves a non-expired value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.sqldb.QueryRowContext(ctx,
		`SELECT value FROM kv_store WHERE key = $1 AND expires_at > now()`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return value, nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.sqldb.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, expires_at)
		VALUES ($1, $2, now() + $3 * interval '1 second')
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, int64(ttl.Seconds()),
	)
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	if _, err := s.sqldb.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}
