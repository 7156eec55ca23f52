package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository defines the contract for the storage of one catalog resource
type Repository[T any] interface {
	Create(ctx context.Context, payload Payload) (T, error)
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, payload Payload) (T, error)
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) int
}

// Entity is satisfied by pointers to catalog records. It lets a generic store
// assign identifiers and apply validated fields without knowing the record type.
type Entity[T any] interface {
	*T
	GetID() string
	SetID(id string)
	Apply(fields Fields)
}
