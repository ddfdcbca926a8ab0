package validation

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
)

type amount struct {
	value float64
	set   bool
}

type payload struct {
	Name     string  `json:"name" validate:"required,max=5"`
	OnOffer  *bool   `json:"onOffer" validate:"required"`
	Price    amount  `json:"Price" validate:"required,gt=0"`
	Discount float64 `json:"discount" validate:"gte=0"`
}

func newValidator() *Validator {
	v := New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		a := field.Interface().(amount)
		if !a.set {
			return nil
		}
		v := a.value
		return &v
	}, amount{})
	return v
}

func TestValidator_Struct(t *testing.T) {
	yes := true
	valid := payload{Name: "Acme", OnOffer: &yes, Price: amount{value: 9.99, set: true}}

	tests := []struct {
		name    string
		mutate  func(p *payload)
		field   string
		message string
	}{
		{"valid", func(*payload) {}, "", ""},
		{"missing name", func(p *payload) { p.Name = "" }, "name", "Missing required field 'name'"},
		{"long name counts characters", func(p *payload) { p.Name = "ÄÖÜäöü" }, "name", "Field 'name' must be at most 5 characters"},
		{"missing onOffer", func(p *payload) { p.OnOffer = nil }, "onOffer", "Missing required field 'onOffer'"},
		{"missing price", func(p *payload) { p.Price = amount{} }, "Price", "Missing required field 'Price'"},
		{"zero price", func(p *payload) { p.Price = amount{set: true} }, "Price", "Field 'Price' must be a positive number"},
		{"negative discount", func(p *payload) { p.Discount = -1 }, "discount", "Field 'discount' must be greater than or equal to 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)

			err := newValidator().Struct(p)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestValidator_FirstErrorInFieldOrder(t *testing.T) {
	err := newValidator().Struct(payload{})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "name", appErr.Field)
}
