package registry

import "context"

// Store is the key-value contract the gateway assumes of the underlying
// persistence layer: serialized User records keyed by identifier.
// Implementations return common.ErrorNotFound from Get for absent keys.
type Store interface {
	// Init creates any missing storage structures with safe empty
	// defaults. Idempotent; safe to call on every startup.
	Init(ctx context.Context) error

	Get(ctx context.Context, identifier string) ([]byte, error)
	Put(ctx context.Context, identifier string, record []byte) error
	Exists(ctx context.Context, identifier string) (bool, error)
}
