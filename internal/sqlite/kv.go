package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/proofescrow/internal/repository"
)

// KV implements repository.KV over the ledger_entries table
type KV struct {
	q querier
}

// NewKV creates a KV bound to a database handle or an open transaction
func NewKV(q querier) *KV {
	return &KV{q: q}
}

var _ repository.KV = (*KV)(nil)

// Get returns the value stored at key
func (kv *KV) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	var value []byte
	err := kv.q.QueryRowContext(ctx, `SELECT value FROM ledger_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get entry: %w", err)
	}
	return value, true, nil
}

// Set inserts or overwrites the value stored at key
func (kv *KV) Set(ctx context.Context, key, value []byte) error {
	query := `
		INSERT INTO ledger_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := kv.q.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set entry: %w", err)
	}
	return nil
}

// Has reports whether key is present
func (kv *KV) Has(ctx context.Context, key []byte) (bool, error) {
	var exists bool
	err := kv.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE key = ?)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check entry: %w", err)
	}
	return exists, nil
}
