package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned for unknown entity ids.
var ErrNotFound = errors.New("store: entity not found")

// Source supplies stored values during hydration.
type Source interface {
	PrimaryBody() string
	Field(key string) (string, bool)
}

// Sink receives extracted values. Values are native scalars (string, int64,
// float64, bool); stores keep whatever representation they need.
type Sink interface {
	SetPrimaryBody(markup string)
	SetField(key string, value any)
}

// Entity is the per-entity view of a store. Writes are not transactional;
// concurrent editors race with last-write-wins semantics.
type Entity interface {
	Source
	Sink
}

// Store hands out entities keyed by id.
type Store interface {
	Create(ctx context.Context) (string, error)
	Entity(ctx context.Context, id string) (Entity, error)
}
