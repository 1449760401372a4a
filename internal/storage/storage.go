package storage

import "context"

// Persister stores the serialized application state as one opaque snapshot.
// Load returns an empty payload when nothing has been saved yet.
type Persister interface {
	Save(ctx context.Context, data []byte) error
	Load(ctx context.Context) ([]byte, error)
	Close()
}
