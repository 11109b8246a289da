package usecase

import (
	"context"
)

// KeyValueStore is the persistent mirror behind the Store. Values are
// opaque JSON documents stored under fixed keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// PutMany writes all entries or none.
	PutMany(ctx context.Context, entries map[string][]byte) error
	Ping(ctx context.Context) error
	Close() error
}

type EventPublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// IDGenerator returns a new unique identifier on every call.
type IDGenerator func() string
