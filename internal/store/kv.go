package store

import "context"

// KV is a single-table string key/value store. Get reports found=false for
// a missing key rather than an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
	Close() error
}
