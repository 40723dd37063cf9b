// Package repository defines the persistence collaborator: an opaque
// key-value store holding one serialized blob per logical collection.
//
// WHY BLOBS AND NOT ROWS?
// Every store in this app rewrites its whole collection on each mutation
// (read-modify-write). There are no partial updates, no transactions and no
// secondary indices, so the storage contract is deliberately tiny:
// load a key, save a key, remove a key. Any KV engine can serve it.
//
// Implementations live in subpackages (sqlite, bolt, redis, memory) and
// are selected in the composition root.
package repository

import "context"

// Keys of the three logical collections.
const (
	KeyCurrentUser = "skillswap_user"
	KeyUsers       = "skillswap_users"
	KeyRequests    = "skillswap_requests"
)

// Store is the key-value persistence collaborator.
//
// Load returns ok=false (and a nil error) when the key has never been
// written; that is "first run", not a failure. Save fully overwrites the
// previous value. Remove is a no-op for a missing key.
type Store interface {
	Load(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Save(ctx context.Context, key string, blob []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}
