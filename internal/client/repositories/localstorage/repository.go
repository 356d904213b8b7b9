// Package localstorage is the client's key/value store, the terminal
// counterpart of browser local storage. The session record is its main
// tenant.
package localstorage

import "context"

// Repository stores opaque values under string keys.
type Repository interface {
	// GetItem returns nil, nil when key is absent.
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	// RemoveItem is a no-op for an absent key.
	RemoveItem(ctx context.Context, key string) error
}
