// Package validation wraps validator/v10 so failures name the JSON field and
// surface as apperr validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
)

// Validator validates request payloads.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator reporting JSON tag names as field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// RegisterCustomTypeFunc lets payload wrapper types expose the value to validate.
// Returning a pointer keeps "required" satisfied by a present zero value; nil
// means the field was absent.
func (v *Validator) RegisterCustomTypeFunc(fn validator.CustomTypeFunc, types ...any) {
	v.v.RegisterCustomTypeFunc(fn, types...)
}

// Struct validates s and returns the first failure, in field order, as an
// *apperr.Error of kind VALIDATION_FAILED.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperr.Validation(fe.Field(), Message(fe))
	}
	return apperr.Validation("", err.Error())
}

// Message renders a field error for clients.
func Message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Missing required field '%s'", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Field '%s' must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("Field '%s' must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Field '%s' must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("Field '%s' must be at most %s", field, fe.Param())
	case "gt":
		if fe.Param() == "0" {
			return fmt.Sprintf("Field '%s' must be a positive number", field)
		}
		return fmt.Sprintf("Field '%s' must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("Field '%s' must be greater than or equal to %s", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("Field '%s' must not be blank", field)
	default:
		return fmt.Sprintf("Field '%s' is invalid", field)
	}
}
