package store

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is a named collection of items. Names are unique.
type Store struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a sellable product belonging to exactly one store.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"store_id"`
	RequestID   string          `json:"request_id"` // originating client request
	Item        string          `json:"item"`
	Size        string          `json:"size"`
	Description string          `json:"description,omitempty"`
	Tags        []Tag           `json:"tags"`
	OnOffer     bool            `json:"onOffer"`
	Price       decimal.Decimal `json:"Price"`
	Discount    float64         `json:"discount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Tag is a single item tag: a JSON string or a JSON number. Anything else
// decodes without error but reports !Valid().
type Tag struct {
	value any // string or json.Number
}

// StringTag returns a textual tag.
func StringTag(s string) Tag { return Tag{value: s} }

// NumberTag returns a numeric tag.
func NumberTag(n json.Number) Tag { return Tag{value: n} }

// Valid reports whether the tag is a string or a number.
func (t Tag) Valid() bool {
	switch t.value.(type) {
	case string, json.Number:
		return true
	}
	return false
}

// String returns the tag text, or the number's literal.
func (t Tag) String() string {
	switch v := t.value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// IsNumber reports whether the tag was supplied as a number.
func (t Tag) IsNumber() bool {
	_, ok := t.value.(json.Number)
	return ok
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v.(type) {
	case string, json.Number:
		t.value = v
	default:
		t.value = invalidTag{}
	}
	return nil
}

func (t Tag) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

type invalidTag struct{}
