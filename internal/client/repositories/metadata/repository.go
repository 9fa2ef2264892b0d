// Package metadata is the local key/value repository of the client. It keeps
// the credential pair and the session snapshot between runs.
package metadata

import "context"

// Change is one entry of an atomic batch. A nil Value deletes the key.
type Change struct {
	Key   string
	Value []byte
}

// Repository is a durable string -> bytes map.
//
// Get returns (nil, nil) for an absent key. Delete of an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Apply writes all changes in one transaction.
	Apply(ctx context.Context, changes ...Change) error
}
