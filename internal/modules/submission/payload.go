package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/storefront-api/internal/modules/store"
	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
)

// PostItemRequest is the body of POST /{storeID}/postitem.
type PostItemRequest struct {
	RequestID   string      `json:"requestId" validate:"required"`
	Item        string      `json:"item" validate:"required"`
	Size        string      `json:"size" validate:"required"`
	Description *string     `json:"description"`
	Tags        []store.Tag `json:"tags"`
	OnOffer     *bool       `json:"onOffer" validate:"required"`
	Price       Amount      `json:"Price" validate:"required,gt=0"`
	Discount    *float64    `json:"discount" validate:"required,gte=0"`
}

// PostItemResponse is returned for a created item.
type PostItemResponse struct {
	RequestID   string `json:"requestId"`
	ItemCode    string `json:"itemCode"`
	Description string `json:"Description"`
}

// Submission is a decoded post-item body together with its raw snapshot.
type Submission struct {
	Payload PostItemRequest
	Raw     json.RawMessage

	// typeErr is the first field whose JSON type did not match. It is reported
	// by the validation step so the duplicate and store checks run first.
	typeErr *json.UnmarshalTypeError
}

// ParsePostItem decodes a post-item body. Malformed JSON fails immediately.
func ParsePostItem(body []byte) (*Submission, error) {
	sub := &Submission{Raw: json.RawMessage(bytes.TrimSpace(body))}
	if err := json.Unmarshal(body, &sub.Payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil, apperr.Validation("", "Invalid JSON payload: "+err.Error())
		}
		sub.typeErr = typeErr
	}
	return sub, nil
}

// Amount is a price given as a JSON number or a numeric string. Decoding never
// fails; a non-numeric value is reported by the validation step.
type Amount struct {
	value   decimal.Decimal
	set     bool
	invalid bool
}

// NewAmount returns a set amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d, set: true}
}

// Decimal returns the parsed amount.
func (a Amount) Decimal() decimal.Decimal { return a.value }

func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	var (
		d   decimal.Decimal
		err error
	)
	switch v := v.(type) {
	case nil:
		return nil
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(v))
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}

	a.set = true
	if err != nil {
		a.invalid = true
		return nil
	}
	a.value = d
	return nil
}

// amountValue exposes an Amount to the validator: nil when absent, the
// value as *float64 otherwise.
func amountValue(field reflect.Value) any {
	a, ok := field.Interface().(Amount)
	if !ok || !a.set || a.invalid {
		return nil
	}
	f := a.value.InexactFloat64()
	return &f
}

func typeName(k reflect.Kind) string {
	switch k {
	case reflect.Bool:
		return "a boolean"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Struct, reflect.Map:
		return "an object"
	default:
		return "of type " + k.String()
	}
}
