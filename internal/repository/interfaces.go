package repository

import "context"

// KV is the durable key-value substrate the keyed store writes through.
// Implementations apply every Set immediately within the surrounding call.
type KV interface {
	Get(ctx context.Context, key []byte) (value []byte, ok bool, err error)
	Set(ctx context.Context, key, value []byte) error
	Has(ctx context.Context, key []byte) (bool, error)
}
