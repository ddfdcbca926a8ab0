package store

import "context"

// StoreRepository defines store data storage.
// Lookups return recordstore.ErrNotFound when nothing matches.
type StoreRepository interface {
	Create(ctx context.Context, s *Store) error
	GetByID(ctx context.Context, id string) (*Store, error)
	GetByName(ctx context.Context, name string) (*Store, error)
	List(ctx context.Context) ([]*Store, error)
}

// ItemRepository defines item data storage.
type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	ListByStore(ctx context.Context, storeID string) ([]*Item, error)
	Delete(ctx context.Context, id string) error
}
