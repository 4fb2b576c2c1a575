// Package kv stores small opaque values under string keys in the local
// SQLite database. The session store keeps the sealed token and user
// snapshot here.
package kv

import (
	"context"
)

// Repository is a key/value table. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
