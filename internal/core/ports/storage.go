package ports

import "context"

// KeyValueStore is the durable string key-value storage a session survives
// restarts in. Multi-key writes and deletes are all-or-nothing.
type KeyValueStore interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}
