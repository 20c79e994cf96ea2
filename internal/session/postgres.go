// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresBackend stores sessions in the "session" table. Expiry is kept
// in UTC and compared against the database clock.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend creates a backend over db. The table is created by
// the database migrations.
func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// Save inserts or replaces the session payload and resets its expiry.
func (b *PostgresBackend) Save(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO "session" (sid, sess, expire)
		VALUES ($1, $2, (NOW() AT TIME ZONE 'UTC') + $3 * INTERVAL '1 second')
		ON CONFLICT (sid) DO UPDATE SET sess = EXCLUDED.sess, expire = EXCLUDED.expire
	`, id, string(payload), int64(ttl.Seconds()))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the payload of an unexpired session or ErrNoSession.
func (b *PostgresBackend) Load(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx, `
		SELECT sess FROM "session"
		WHERE sid = $1 AND expire > (NOW() AT TIME ZONE 'UTC')
	`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return payload, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (b *PostgresBackend) Delete(ctx context.Context, id string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM "session" WHERE sid = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Prune deletes every expired session and returns how many were removed.
func (b *PostgresBackend) Prune(ctx context.Context) (int64, error) {
	res, err := b.db.ExecContext(ctx, `DELETE FROM "session" WHERE expire <= (NOW() AT TIME ZONE 'UTC')`)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return res.RowsAffected()
}
