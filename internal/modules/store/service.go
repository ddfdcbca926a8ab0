package store

import (
	"context"
	"errors"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/recordstore"
	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
	"github.com/georgemunganga/storefront-api/internal/shared/validation"
)

// Service defines the store catalog: stores and the items they hold.
// Expected failures are *apperr.Error values.
type Service interface {
	// Store operations
	CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error)
	GetStore(ctx context.Context, id string) (*Store, error)
	ListStores(ctx context.Context) ([]*Store, error)

	// Item operations
	ListItems(ctx context.Context, storeID string) ([]*Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	CreateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id string) error
}

// CreateStoreRequest holds data for creating a store.
type CreateStoreRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type service struct {
	storeRepo StoreRepository
	itemRepo  ItemRepository
	validate  *validation.Validator
}

// NewService creates a new store catalog service.
func NewService(storeRepo StoreRepository, itemRepo ItemRepository, validate *validation.Validator) Service {
	return &service{
		storeRepo: storeRepo,
		itemRepo:  itemRepo,
		validate:  validate,
	}
}

func (s *service) CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.storeRepo.GetByName(ctx, req.Name)
	switch {
	case err == nil && existing != nil:
		return nil, conflictingName(req.Name)
	case err != nil && !errors.Is(err, recordstore.ErrNotFound):
		return nil, apperr.Persistence("failed to look up store", err)
	}

	store := &Store{Name: req.Name}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		// A concurrent create with the same name lost the race to the unique index.
		if errors.Is(err, recordstore.ErrUniqueViolation) {
			return nil, conflictingName(req.Name)
		}
		return nil, apperr.Persistence("failed to create store", err)
	}
	return store, nil
}

func (s *service) GetStore(ctx context.Context, id string) (*Store, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, apperr.NotFound("Store with ID %s not found", id)
		}
		return nil, apperr.Persistence("failed to get store", err)
	}
	return store, nil
}

func (s *service) ListStores(ctx context.Context) ([]*Store, error) {
	stores, err := s.storeRepo.List(ctx)
	if err != nil {
		return nil, apperr.Persistence("failed to list stores", err)
	}
	return stores, nil
}

func (s *service) ListItems(ctx context.Context, storeID string) ([]*Item, error) {
	if _, err := s.GetStore(ctx, storeID); err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, apperr.Persistence("failed to list items", err)
	}
	return items, nil
}

func (s *service) GetItem(ctx context.Context, id string) (*Item, error) {
	it, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, apperr.NotFound("Item with ID %s not found", id)
		}
		return nil, apperr.Persistence("failed to get item", err)
	}
	return it, nil
}

func (s *service) CreateItem(ctx context.Context, it *Item) error {
	if err := s.itemRepo.Create(ctx, it); err != nil {
		if errors.Is(err, recordstore.ErrUniqueViolation) {
			return apperr.DuplicateRequest(it.RequestID)
		}
		return apperr.Persistence("failed to create item", err)
	}
	return nil
}

func (s *service) DeleteItem(ctx context.Context, id string) error {
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return apperr.NotFound("Item with ID %s not found", id)
		}
		return apperr.Persistence("failed to delete item", err)
	}
	return nil
}

func conflictingName(name string) error {
	return apperr.Conflict("Store with name '%s' already exists", name)
}
