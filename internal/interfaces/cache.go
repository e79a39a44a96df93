package interfaces

import "context"

// PetTypeCache caches resolved pet-type identifiers per store so the
// resolver does not re-list a store's types on every purchase.
type PetTypeCache interface {
	GetPetTypeID(ctx context.Context, store int, typeName string) (string, error)
	SetPetTypeID(ctx context.Context, store int, typeName, id string) error
	Close() error
}
