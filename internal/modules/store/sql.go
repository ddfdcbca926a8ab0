package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/recordstore"
)

// ---- Store ----

var storeColumns = []string{"id", "name", "created_at"}

type storeSQL struct{ table *recordstore.Table[Store] }

// NewStoreSQLRepository stores stores in the stores table.
func NewStoreSQLRepository(db *recordstore.DB) StoreRepository {
	return &storeSQL{table: recordstore.NewTable(db, "stores", storeColumns, scanStore).OrderBy("created_at")}
}

func scanStore(scan func(dest ...any) error) (*Store, error) {
	s := &Store{}
	if err := scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *storeSQL) Create(ctx context.Context, s *Store) error {
	s.CreatedAt = now()
	id, err := r.table.Insert(ctx, []string{"name", "created_at"}, s.Name, s.CreatedAt)
	if err != nil {
		return err
	}
	s.ID, err = uuid.Parse(id)
	return err
}

func (r *storeSQL) GetByID(ctx context.Context, id string) (*Store, error) {
	return r.table.Get(ctx, id)
}

func (r *storeSQL) GetByName(ctx context.Context, name string) (*Store, error) {
	return r.table.First(ctx, recordstore.Eq("name", name))
}

func (r *storeSQL) List(ctx context.Context) ([]*Store, error) {
	return r.table.Scan(ctx)
}

// ---- Item ----

var itemColumns = []string{
	"id", "store_id", "request_id", "item", "size", "description",
	"tags", "on_offer", "price", "discount", "created_at",
}

type itemSQL struct{ table *recordstore.Table[Item] }

// NewItemSQLRepository stores items in the items table.
func NewItemSQLRepository(db *recordstore.DB) ItemRepository {
	return &itemSQL{table: recordstore.NewTable(db, "items", itemColumns, scanItem).OrderBy("created_at")}
}

func scanItem(scan func(dest ...any) error) (*Item, error) {
	it := &Item{}
	var description, tags sql.NullString
	if err := scan(&it.ID, &it.StoreID, &it.RequestID, &it.Item, &it.Size, &description,
		&tags, &it.OnOffer, &it.Price, &it.Discount, &it.CreatedAt); err != nil {
		return nil, err
	}
	it.Description = description.String
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &it.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of item %s: %w", it.ID, err)
		}
	}
	if it.Tags == nil {
		it.Tags = []Tag{}
	}
	return it, nil
}

func (r *itemSQL) Create(ctx context.Context, it *Item) error {
	tags, err := encodeTags(it.Tags)
	if err != nil {
		return err
	}
	it.CreatedAt = now()
	id, err := r.table.Insert(ctx,
		[]string{"store_id", "request_id", "item", "size", "description", "tags", "on_offer", "price", "discount", "created_at"},
		it.StoreID, it.RequestID, it.Item, it.Size, nilIfEmpty(it.Description), tags,
		it.OnOffer, it.Price, it.Discount, it.CreatedAt)
	if err != nil {
		return err
	}
	it.ID, err = uuid.Parse(id)
	return err
}

func (r *itemSQL) GetByID(ctx context.Context, id string) (*Item, error) {
	return r.table.Get(ctx, id)
}

func (r *itemSQL) ListByStore(ctx context.Context, storeID string) ([]*Item, error) {
	sid, err := uuid.Parse(storeID)
	if err != nil {
		return []*Item{}, nil
	}
	return r.table.Scan(ctx, recordstore.Eq("store_id", sid.String()))
}

func (r *itemSQL) Delete(ctx context.Context, id string) error {
	return r.table.Delete(ctx, id)
}

// encodeTags returns the JSON text stored in the tags column, or nil for none.
// JSON is passed as text so lib/pq does not send it as bytea.
func encodeTags(tags []Tag) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
