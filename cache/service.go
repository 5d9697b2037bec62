package cache

import "context"

// Store is a key-value cache over values of type T. A miss is reported as
// (zero, false, nil); a non-nil error means the backend itself failed.
type Store[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Set(ctx context.Context, key string, value T) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by stores backed by a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}
