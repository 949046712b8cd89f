package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Get returns the blob stored under key. Transient SQLite errors are retried.
func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := retryOp(ctx, defaultRetryConfig, func() error {
		return db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the blob stored under key. Transient SQLite errors are retried.
func (db *DB) Set(ctx context.Context, key string, blob []byte) error {
	query := `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	err := retryOp(ctx, defaultRetryConfig, func() error {
		_, err := db.ExecContext(ctx, query, key, blob, time.Now().Unix())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written.
func (db *DB) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	var unix int64
	err := retryOp(ctx, defaultRetryConfig, func() error {
		return db.QueryRowContext(ctx, `SELECT updated_at FROM blobs WHERE key = ?`, key).Scan(&unix)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return time.Unix(unix, 0), true, nil
}
